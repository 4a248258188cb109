package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/tasktracker/pkg/health"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                  { return s.name }
func (s stubChecker) Check(context.Context) error { return s.err }

func TestReadyReportsFailures(t *testing.T) {
	h := NewHealthHandler(health.NewService(
		stubChecker{name: "postgres", err: errors.New("refused")},
		stubChecker{name: "mongo", err: errors.New("no primary")},
	))
	app := fiber.New()
	app.Get("/ready", h.Ready)

	resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body readyResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, []string{"postgres: refused", "mongo: no primary"}, body.Failures)
}

func TestReadyOK(t *testing.T) {
	app := fiber.New()
	app.Get("/ready", NewHealthHandler(health.NewService(stubChecker{name: "mongo"})).Ready)

	resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ready"}`, string(raw))
}

func TestReadyKeepsMultilineErrorsWhole(t *testing.T) {
	app := fiber.New()
	app.Get("/ready", NewHealthHandler(health.NewService(
		stubChecker{name: "mongo", err: errors.New("server selection error\ncurrent topology: Unknown")},
	)).Ready)

	resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body readyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"mongo: server selection error\ncurrent topology: Unknown"}, body.Failures)
}
