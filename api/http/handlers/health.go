package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/tasktracker/api/http/presenter"
	"github.com/artem13815/tasktracker/pkg/health"
)

// readyTimeout covers all store pings of one request.
const readyTimeout = 2 * time.Second

type HealthHandler struct{ svc health.ReadinessUseCase }

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler { return &HealthHandler{svc: svc} }

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type readyResponse struct {
	Status   string   `json:"status"`
	Failures []string `json:"failures,omitempty"`
}

// Health answers as long as the process serves requests.
// @Summary Liveness check
// @Tags    health
// @Produce json
// @Success 200 {object} healthResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, healthResponse{Status: "OK", Message: "Task Tracker API is running"})
}

// Ready pings every configured store.
// @Summary Readiness check
// @Tags    health
// @Produce json
// @Success 200 {object} readyResponse
// @Failure 503 {object} readyResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()
	if failures := h.svc.Report(ctx); len(failures) > 0 {
		resp := readyResponse{Status: "not_ready", Failures: make([]string, 0, len(failures))}
		for _, f := range failures {
			resp.Failures = append(resp.Failures, f.Error())
		}
		return presenter.JSON(c, http.StatusServiceUnavailable, resp)
	}
	return presenter.JSON(c, http.StatusOK, readyResponse{Status: "ready"})
}
