package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/artem13815/tasktracker/api/http/middleware"
	"github.com/artem13815/tasktracker/api/http/presenter"
)

// NewApp builds the Fiber app with the shared middleware stack. Routes are
// added by Register; NotFound must be installed last.
func NewApp(log *slog.Logger, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "task-tracker",
		ErrorHandler: errorHandler(log),
	})
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	return app
}

// NotFound answers every route nobody registered.
func NotFound(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		return presenter.Error(c, fiber.StatusNotFound, "Route not found")
	})
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return presenter.Error(c, fe.Code, fe.Message)
		}
		if log != nil {
			log.Error("unhandled error",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
		}
		return presenter.Error(c, fiber.StatusInternalServerError, "Something went wrong!")
	}
}
