package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/tasktracker/api/http/presenter"
	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/task"
)

// fail maps use-case errors to responses. Unknown errors are logged and
// reported with the generic message.
func fail(c *fiber.Ctx, log *slog.Logger, err error, generic string) error {
	var taskVal task.ErrValidation
	var authVal auth.ErrValidation
	switch {
	case errors.As(err, &taskVal), errors.As(err, &authVal):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUserAlreadyExists):
		return presenter.Error(c, http.StatusBadRequest, "User already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return presenter.Error(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		return presenter.Error(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserNotFound):
		return presenter.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, task.ErrInvalidID):
		return presenter.Error(c, http.StatusBadRequest, "Invalid task ID")
	case errors.Is(err, task.ErrAssignedUserNotFound):
		return presenter.Error(c, http.StatusBadRequest, "Assigned user not found")
	case errors.Is(err, task.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, task.ErrAccessDenied):
		return presenter.Error(c, http.StatusForbidden, "Access denied")
	}
	if log != nil {
		log.Error(generic,
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return presenter.Error(c, http.StatusInternalServerError, "Server error")
}
