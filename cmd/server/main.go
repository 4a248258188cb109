// @title         Task Tracker API
// @version       1.0
// @description   Admins create and assign tasks, employees track the ones assigned to them.
// @BasePath      /api
// @schemes       http
// @host          localhost:5000
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token: "Bearer <JWT>".
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	swagger "github.com/gofiber/swagger"

	_ "github.com/artem13815/tasktracker/docs"

	// internal imports
	"github.com/artem13815/tasktracker/api/http"
	"github.com/artem13815/tasktracker/api/http/handlers"
	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/config"
	"github.com/artem13815/tasktracker/pkg/health"
	"github.com/artem13815/tasktracker/pkg/logger"
	"github.com/artem13815/tasktracker/pkg/security/jwt"
	"github.com/artem13815/tasktracker/pkg/storage/backend"
	"github.com/artem13815/tasktracker/pkg/task"
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()
	log := logger.NewDefault(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := backend.Open(connectCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("open storage", slog.String("driver", cfg.StorageDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("close storage", slog.String("error", err.Error()))
		}
	}()

	// Wire dependencies
	jwtGen := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authUC := auth.NewAuthService(store.Users, jwtGen)
	taskUC := task.NewService(store.Tasks, store.Users, cfg.MaxPageLimit)

	authHandler := handlers.NewAuthHandler(authUC, log)
	taskHandler := handlers.NewTaskHandler(taskUC, log)
	healthHandler := handlers.NewHealthHandler(health.NewService(store.Checkers...))

	// JWT auth middleware for protected routes
	authMW := jwt.NewAuthMiddleware(authUC)

	app := http.NewApp(log, cfg.CORSOrigins)
	http.Register(app, authHandler, healthHandler, taskHandler, authMW)

	if cfg.SwaggerEnabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}
	http.NotFound(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("shutdown", slog.String("error", err.Error()))
		}
	}()

	log.Info("HTTP server listening", slog.String("port", cfg.Port), slog.String("storage", store.Driver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
