package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/artem13815/tasktracker/pkg/auth"
	store "github.com/artem13815/tasktracker/pkg/storage/mongodb"
	"github.com/artem13815/tasktracker/pkg/task"
)

// openTestDB connects to TEST_MONGODB_URI and returns a freshly dropped
// database with indexes in place. The test is skipped when the variable is
// unset.
func openTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := store.Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("task_tracker_test")
	require.NoError(t, db.Drop(ctx))
	require.NoError(t, store.EnsureIndexes(ctx, db))
	return db
}

func TestUserRepositoryIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewUserRepository(db)
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	ann := auth.User{ID: uuid.New(), Name: "Ann", Email: "Ann@Example.com", PasswordHash: "h1", Role: auth.RoleAdmin, CreatedAt: created}
	bob := auth.User{ID: uuid.New(), Name: "Bob", Email: "bob@example.com", PasswordHash: "h2", Role: auth.RoleEmployee, CreatedAt: created.Add(time.Minute)}
	require.NoError(t, r.Create(ctx, ann))
	require.NoError(t, r.Create(ctx, bob))

	// E11000 on the uniq_email index
	dup := auth.User{ID: uuid.New(), Name: "Dup", Email: "ann@example.com", PasswordHash: "h3", Role: auth.RoleEmployee, CreatedAt: created}
	assert.ErrorIs(t, r.Create(ctx, dup), auth.ErrUserAlreadyExists)

	// the raw driver error is what Create maps
	_, err := db.Collection(store.UsersCollection).InsertOne(ctx, toUserDoc(dup))
	assert.True(t, mongo.IsDuplicateKeyError(err))

	got, err := r.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, got.ID)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = r.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrNotFound)

	found, err := r.GetByIDs(ctx, []uuid.UUID{bob.ID, uuid.New(), ann.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)
	// sorted by creation
	assert.Equal(t, ann.ID, found[0].ID)
	assert.Equal(t, bob.ID, found[1].ID)

	employees, err := r.ListByRole(ctx, auth.RoleEmployee)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, bob.ID, employees[0].ID)
}

func TestTaskRepositoryIntegration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewTaskRepository(db)
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
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	counts, err := r.CountByStatus(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, map[task.Status]int64{task.StatusPending: 3, task.StatusCompleted: 1}, counts)

	counts, err = r.CountByStatus(ctx, task.Filter{AssignedTo: other})
	require.NoError(t, err)
	assert.Equal(t, map[task.Status]int64{task.StatusCompleted: 1}, counts)

	// FindOneAndUpdate hands back the document after the $set
	inProgress := task.StatusInProgress
	later := base.Add(time.Hour)
	updated, err := r.Update(ctx, ids[0], task.Patch{Status: &inProgress}, later)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, updated.Status)
	assert.Equal(t, "task", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.True(t, due.Equal(updated.DueDate))
	assert.True(t, later.Equal(updated.UpdatedAt))

	stored, err := r.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	title := "renamed"
	_, err = r.Update(ctx, uuid.New(), task.Patch{Title: &title}, later)
	assert.ErrorIs(t, err, task.ErrNotFound)

	require.NoError(t, r.Delete(ctx, ids[3]))
	assert.ErrorIs(t, r.Delete(ctx, ids[3]), task.ErrNotFound)
}
