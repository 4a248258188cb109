package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/tasktracker/api/http/handlers"
	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/security/jwt"
)

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, authH *handlers.AuthHandler, health *handlers.HealthHandler, tasks *handlers.TaskHandler, authMW fiber.Handler) {
	api := app.Group("/api")

	// Health and readiness endpoints for monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	a := api.Group("/auth")
	a.Post("/register", authH.Register)
	a.Post("/login", authH.Login)
	a.Get("/me", authMW, authH.Me)

	adminOnly := jwt.RequireRole(auth.RoleAdmin)

	// Every /api/tasks route requires a token, including unknown ones.
	t := api.Group("/tasks", authMW)
	t.Post("/", adminOnly, tasks.Create)
	t.Get("/", tasks.List)
	// static segments before /:id
	t.Get("/users", adminOnly, tasks.Employees)
	t.Get("/stats", tasks.Stats)
	t.Get("/:id", tasks.Get)
	t.Put("/:id", tasks.Update)
	t.Delete("/:id", adminOnly, tasks.Delete)
}
