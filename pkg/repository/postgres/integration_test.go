package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/tasktracker/pkg/auth"
	store "github.com/artem13815/tasktracker/pkg/storage/postgres"
	"github.com/artem13815/tasktracker/pkg/task"
)

// openTestPool connects to TEST_DATABASE_URL, migrates and empties both
// tables. The test is skipped when the variable is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := store.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, store.Migrate(ctx, pool))
	require.NoError(t, NewTaskRepository(pool).Reset(ctx))
	require.NoError(t, NewUserRepository(pool).Reset(ctx))
	return pool
}

func TestUserRepositoryIntegration(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	r := NewUserRepository(pool)
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	ann := auth.User{ID: uuid.New(), Name: "Ann", Email: "Ann@Example.com", PasswordHash: "h1", Role: auth.RoleAdmin, CreatedAt: created}
	bob := auth.User{ID: uuid.New(), Name: "Bob", Email: "bob@example.com", PasswordHash: "h2", Role: auth.RoleEmployee, CreatedAt: created.Add(time.Minute)}
	require.NoError(t, r.Create(ctx, ann))
	require.NoError(t, r.Create(ctx, bob))

	// 23505 on the email index
	err := r.Create(ctx, auth.User{ID: uuid.New(), Name: "Dup", Email: "ann@example.com", PasswordHash: "h3", Role: auth.RoleEmployee, CreatedAt: created})
	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)

	got, err := r.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, auth.RoleAdmin, got.Role)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = r.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrNotFound)

	found, err := r.GetByIDs(ctx, []uuid.UUID{bob.ID, uuid.New(), ann.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	employees, err := r.ListByRole(ctx, auth.RoleEmployee)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, bob.ID, employees[0].ID)
}

func TestTaskRepositoryIntegration(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	r := NewTaskRepository(pool)
	owner, other := uuid.New(), uuid.New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		tk := task.Task{
			ID: uuid.New(), Title: "task", Description: "desc", AssignedTo: owner, DueDate: due,
			Status: task.StatusPending, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		tk.UpdatedAt = tk.CreatedAt
		if i == 3 {
			tk.AssignedTo = other
			tk.Status = task.StatusCompleted
		}
		require.NoError(t, r.Create(ctx, tk))
		ids = append(ids, tk.ID)
	}

	page, total, err := r.List(ctx, task.Filter{AssignedTo: owner}, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	// newest first
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.True(t, due.Equal(page[0].DueDate))

	rest, _, err := r.List(ctx, task.Filter{AssignedTo: owner}, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)

	counts, err := r.CountByStatus(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, map[task.Status]int64{task.StatusPending: 3, task.StatusCompleted: 1}, counts)

	// only status is sent; COALESCE keeps the other columns
	inProgress := task.StatusInProgress
	later := base.Add(time.Hour)
	updated, err := r.Update(ctx, ids[0], task.Patch{Status: &inProgress}, later)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)
	assert.Equal(t, "task", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.True(t, due.Equal(updated.DueDate))
	assert.True(t, later.Equal(updated.UpdatedAt))
	assert.True(t, base.Equal(updated.CreatedAt))

	title := "renamed"
	_, err = r.Update(ctx, ids[0], task.Patch{Title: &title}, later)
	require.NoError(t, err)
	stored, err := r.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Title)
	assert.Equal(t, task.StatusInProgress, stored.Status)

	_, err = r.Update(ctx, uuid.New(), task.Patch{Title: &title}, later)
	assert.ErrorIs(t, err, task.ErrNotFound)

	require.NoError(t, r.Delete(ctx, ids[3]))
	assert.ErrorIs(t, r.Delete(ctx, ids[3]), task.ErrNotFound)
	_, err = r.GetByID(ctx, ids[3])
	assert.ErrorIs(t, err, task.ErrNotFound)
}
