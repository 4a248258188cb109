package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/config"
	"github.com/artem13815/tasktracker/pkg/storage/backend"
	"github.com/artem13815/tasktracker/pkg/task"
)

func TestSeedMemory(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := backend.Open(ctx, config.Config{StorageDriver: config.DriverMemory}, log)
	require.NoError(t, err)

	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, seed(ctx, store, false, now, log))

	employees, err := store.Users.ListByRole(ctx, auth.RoleEmployee)
	require.NoError(t, err)
	assert.Len(t, employees, 2)
	admin, err := store.Users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)

	tasks, total, err := store.Tasks.List(ctx, task.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	// newest first
	assert.Equal(t, "Update dependencies", tasks[0].Title)
	assert.Equal(t, time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC), tasks[0].DueDate)

	// reset recreates everything
	require.NoError(t, seed(ctx, store, true, now, log))
	_, total, err = store.Tasks.List(ctx, task.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	// without reset, existing accounts are kept and tasks are not duplicated
	require.NoError(t, seed(ctx, store, false, now, log))
	employees, err = store.Users.ListByRole(ctx, auth.RoleEmployee)
	require.NoError(t, err)
	assert.Len(t, employees, 2)
	_, total, err = store.Tasks.List(ctx, task.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}
