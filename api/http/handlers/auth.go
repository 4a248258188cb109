package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/tasktracker/api/http/presenter"
	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/security/jwt"
)

type AuthHandler struct {
	useCase auth.AuthUseCase
	log     *slog.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, log *slog.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  auth.PublicUser `json:"user"`
}

type userResponse struct {
	User auth.PublicUser `json:"user"`
}

// Register handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body registerRequest true "registration payload"
// @Success 201 {object} authResponse
// @Failure 400 {object} presenter.ValidationResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	var errs fieldErrors
	if strings.TrimSpace(req.Name) == "" {
		errs.add("name", "Name is required")
	}
	if !validEmail(req.Email) {
		errs.add("email", "Valid email is required")
	}
	if len(req.Password) < auth.MinPasswordLength {
		errs.add("password", "Password must be at least 6 characters")
	}
	if !auth.Role(req.Role).Valid() {
		errs.add("role", "Role must be admin or employee")
	}
	if !errs.empty() {
		return presenter.Validation(c, errs)
	}

	result, err := h.useCase.Register(c.UserContext(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(req.Role),
	})
	if err != nil {
		return fail(c, h.log, err, "register failed")
	}
	return presenter.JSON(c, http.StatusCreated, authResponse{Token: result.Token, User: result.User.Public()})
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} authResponse
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	var errs fieldErrors
	if !validEmail(req.Email) {
		errs.add("email", "Valid email is required")
	}
	if req.Password == "" {
		errs.add("password", "Password is required")
	}
	if !errs.empty() {
		return presenter.Validation(c, errs)
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, h.log, err, "login failed")
	}
	return presenter.JSON(c, http.StatusOK, authResponse{Token: result.Token, User: result.User.Public()})
}

// Me returns the profile behind the bearer token.
// @Summary Current user
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, ok := jwt.IdentityFrom(c)
	if !ok {
		return presenter.Error(c, http.StatusUnauthorized, "Access token required")
	}
	user, err := h.useCase.GetCurrentUser(c.UserContext(), id.ID)
	if err != nil {
		return fail(c, h.log, err, "get current user failed")
	}
	return presenter.JSON(c, http.StatusOK, userResponse{User: user.Public()})
}
