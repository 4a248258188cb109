// Command seed fills the configured store with demo accounts and tasks.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/config"
	"github.com/artem13815/tasktracker/pkg/logger"
	"github.com/artem13815/tasktracker/pkg/storage/backend"
	"github.com/artem13815/tasktracker/pkg/task"
)

type demoUser struct {
	name, email, password string
	role                  auth.Role
}

var demoUsers = []demoUser{
	{"Admin User", "admin@example.com", "admin123", auth.RoleAdmin},
	{"John Doe", "john@example.com", "emp123", auth.RoleEmployee},
	{"Jane Smith", "jane@example.com", "emp123", auth.RoleEmployee},
}

type demoTask struct {
	title, description, assignee string
	dueInDays                    int
	status                       task.Status
}

var demoTasks = []demoTask{
	{"Complete project documentation", "Write comprehensive documentation for the new feature", "john@example.com", 7, task.StatusPending},
	{"Review code changes", "Review and approve pending pull requests", "jane@example.com", 3, task.StatusInProgress},
	{"Fix login bug", "Investigate and fix the login issue reported by users", "john@example.com", 1, task.StatusCompleted},
	{"Update dependencies", "Update all project dependencies to latest versions", "jane@example.com", 10, task.StatusPending},
}

func main() {
	reset := pflag.Bool("reset", false, "delete all users and tasks first")
	pflag.Parse()

	cfg := config.Load()
	log := logger.NewDefault(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Error("open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := seed(ctx, store, *reset, time.Now(), log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("seed complete", slog.String("driver", store.Driver))
}

func seed(ctx context.Context, store *backend.Backend, reset bool, now time.Time, log *slog.Logger) error {
	if reset {
		if err := store.Tasks.Reset(ctx); err != nil {
			return fmt.Errorf("reset tasks: %w", err)
		}
		if err := store.Users.Reset(ctx); err != nil {
			return fmt.Errorf("reset users: %w", err)
		}
		log.Info("existing data removed")
	}

	// seeding hands out no tokens
	authUC := auth.NewAuthService(store.Users, noTokens{})
	ids := make(map[string]uuid.UUID, len(demoUsers))
	created := 0
	for _, u := range demoUsers {
		res, err := authUC.Register(ctx, auth.RegisterInput{Name: u.name, Email: u.email, Password: u.password, Role: u.role})
		switch {
		case errors.Is(err, auth.ErrUserAlreadyExists):
			existing, err := store.Users.GetByEmail(ctx, u.email)
			if err != nil {
				return fmt.Errorf("load %s: %w", u.email, err)
			}
			ids[u.email] = existing.ID
			log.Info("user exists, skipped", slog.String("email", u.email))
			continue
		case err != nil:
			return fmt.Errorf("create %s: %w", u.email, err)
		}
		ids[u.email] = res.User.ID
		created++
		log.Info("user created", slog.String("email", u.email), slog.String("role", string(u.role)))
	}
	// demo tasks belong to a fresh set of demo users; rerun with --reset to recreate them
	if created == 0 {
		log.Info("demo users already present, tasks skipped")
		return nil
	}

	today := task.TruncateDate(now)
	for i, d := range demoTasks {
		stamp := now.Add(time.Duration(i) * time.Millisecond).UTC()
		t := task.Task{
			ID:          uuid.New(),
			Title:       d.title,
			Description: d.description,
			AssignedTo:  ids[d.assignee],
			DueDate:     today.AddDate(0, 0, d.dueInDays),
			Status:      d.status,
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
		}
		if err := store.Tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("create task %q: %w", d.title, err)
		}
	}
	log.Info("tasks created", slog.Int("count", len(demoTasks)))
	return nil
}

type noTokens struct{}

func (noTokens) Generate(context.Context, auth.User) (string, error) { return "", nil }

func (noTokens) Verify(context.Context, string) (auth.Identity, error) {
	return auth.Identity{}, auth.ErrInvalidToken
}
