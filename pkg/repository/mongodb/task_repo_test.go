package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/artem13815/tasktracker/pkg/task"
)

func TestFilterDoc(t *testing.T) {
	assert.Empty(t, filterDoc(task.Filter{}))

	who := uuid.New()
	got := filterDoc(task.Filter{Status: task.StatusInProgress, AssignedTo: who})
	assert.Equal(t, bson.D{
		{Key: "status", Value: "In Progress"},
		{Key: "assignedTo", Value: who.String()},
	}, got)
}

func TestSetDocOnlyPresentFields(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	st := task.StatusCompleted

	got := setDoc(task.Patch{Status: &st}, now)

	assert.Equal(t, bson.D{
		{Key: "status", Value: "Completed"},
		{Key: "updatedAt", Value: now},
	}, got)
}

func TestDocRoundTrip(t *testing.T) {
	in := task.Task{
		ID:          uuid.New(),
		Title:       "Fix bug",
		Description: "desc",
		AssignedTo:  uuid.New(),
		DueDate:     time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Status:      task.StatusPending,
		CreatedAt:   time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	raw, err := bson.Marshal(toTaskDoc(in))
	require.NoError(t, err)

	var doc taskDoc
	require.NoError(t, bson.Unmarshal(raw, &doc))
	out, err := doc.task()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
