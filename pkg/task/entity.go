package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/tasktracker/pkg/auth"
)

// Status is the free-form progress marker of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// Task is the stored record. AssignedTo is a non-owning reference to a user.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	AssignedTo  uuid.UUID
	DueDate     time.Time
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignee is the resolved view of Task.AssignedTo. Name and Email are empty
// when the referenced user no longer exists.
type Assignee struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// View is a task with its assignee resolved, as returned by read operations.
type View struct {
	Task
	Assignee Assignee
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *Status
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Status == nil
}

// Apply returns t with the present fields of p copied over.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// Filter constrains a list query. Zero values mean "any".
type Filter struct {
	Status     Status
	AssignedTo uuid.UUID
}

// Pagination is the envelope returned alongside list results.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Common errors used by repository/use cases
var (
	ErrNotFound             = errors.New("task not found")
	ErrInvalidID            = errors.New("invalid task id")
	ErrAccessDenied         = errors.New("access denied")
	ErrAssignedUserNotFound = errors.New("assigned user not found")
)

// ErrValidation простая ошибка валидации.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

// Repository: порт для работы с задачами.
// Update and Delete report ErrNotFound when no record matches.
type Repository interface {
	Create(ctx context.Context, t Task) error
	GetByID(ctx context.Context, id uuid.UUID) (Task, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]Task, int64, error)
	CountByStatus(ctx context.Context, f Filter) (map[Status]int64, error)
	Update(ctx context.Context, id uuid.UUID, p Patch, updatedAt time.Time) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserDirectory is the part of the credential store the task service reads.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (auth.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]auth.User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]auth.User, error)
}
