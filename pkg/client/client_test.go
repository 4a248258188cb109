package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/artem13815/tasktracker/api/http"
	"github.com/artem13815/tasktracker/api/http/handlers"
	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/client"
	"github.com/artem13815/tasktracker/pkg/health"
	"github.com/artem13815/tasktracker/pkg/repository/memory"
	"github.com/artem13815/tasktracker/pkg/security/jwt"
	"github.com/artem13815/tasktracker/pkg/task"
)

func startServer(t *testing.T) string {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewUserRepository()
	authUC := auth.NewAuthService(users, jwt.NewGenerator("secret", "task-tracker", time.Hour), auth.WithHashCost(bcrypt.MinCost))
	taskUC := task.NewService(memory.NewTaskRepository(), users, 100)

	app := apihttp.NewApp(log, "*")
	apihttp.Register(app,
		handlers.NewAuthHandler(authUC, log),
		handlers.NewHealthHandler(health.NewService()),
		handlers.NewTaskHandler(taskUC, log),
		jwt.NewAuthMiddleware(authUC),
	)
	apihttp.NotFound(app)

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func TestClientAgainstServer(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	admin, err := client.New(base, "").Register(ctx, "Admin", "admin@example.com", "admin123", auth.RoleAdmin)
	require.NoError(t, err)
	ac := client.New(base, admin.Token)

	emp, err := client.New(base, "").Register(ctx, "John", "john@example.com", "emp123", auth.RoleEmployee)
	require.NoError(t, err)

	me, err := ac.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", me.Email)

	employees, err := ac.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, emp.User.ID, employees[0].ID)

	created, err := ac.CreateTask(ctx, client.NewTask{
		Title: "Write docs", Description: "API docs", AssignedTo: emp.User.ID.String(), DueDate: "2024-02-10",
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, created.Status)

	login, err := client.New(base, "").Login(ctx, "john@example.com", "emp123")
	require.NoError(t, err)
	ec := client.New(base, login.Token)

	list, err := ec.ListTasks(ctx, client.ListParams{Status: "Pending", Page: 1, Limit: 5})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "John", list.Tasks[0].AssignedTo.Name)
	assert.Equal(t, 5, list.Pagination.Limit)

	updated, err := ec.UpdateStatus(ctx, created.ID, task.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)

	stats, err := ec.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, client.Stats{InProgress: 1, Total: 1}, stats)

	err = ec.DeleteTask(ctx, created.ID)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	require.NoError(t, ac.DeleteTask(ctx, created.ID))
	_, err = ac.GetTask(ctx, created.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound))
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)

	_, err := client.New(base, "").Login(ctx, "ghost@example.com", "whatever")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	_, err = client.New(base, "").Register(ctx, "", "nope", "1", "boss")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "Name is required")
	assert.Contains(t, apiErr.Message, "Valid email is required")

	_, err = client.New(base, "").ListTasks(ctx, client.ListParams{})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
}

func TestClientSendsQueryAndToken(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"tasks":[],"pagination":{"page":2,"limit":3,"total":0,"pages":0}}`)
	}))
	defer srv.Close()

	list, err := client.New(srv.URL+"/", "tok").ListTasks(context.Background(), client.ListParams{
		Status: "In Progress", AssignedTo: "abc", Page: 2, Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "assignedTo=abc&limit=3&page=2&status=In+Progress", gotQuery)
	assert.Equal(t, 2, list.Pagination.Page)
}

func TestClientStatusTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, "").Stats(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
