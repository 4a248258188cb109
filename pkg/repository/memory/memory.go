// Package memory keeps users and tasks in process memory. It backs
// STORAGE_DRIVER=memory and the package tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/task"
)

// UserRepository implements auth.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]auth.User
	byEmail map[string]uuid.UUID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]auth.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return auth.ErrUserAlreadyExists
	}
	user.Email = email
	r.byID[user.ID] = user
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]auth.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role auth.Role) ([]auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []auth.User
	for _, u := range r.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Reset drops every user.
func (r *UserRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[uuid.UUID]auth.User)
	r.byEmail = make(map[string]uuid.UUID)
	return nil
}

// TaskRepository implements task.Repository.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]task.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[uuid.UUID]task.Task)}
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, f task.Filter, limit, offset int) ([]task.Task, int64, error) {
	r.mu.RLock()
	matched := r.match(f)
	r.mu.RUnlock()

	// newest first; id breaks ties so paging is stable
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})
	total := int64(len(matched))
	if offset < 0 || offset >= len(matched) {
		return []task.Task{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, f task.Filter) (map[task.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[task.Status]int64)
	for _, t := range r.match(f) {
		out[t.Status]++
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, p task.Patch, updatedAt time.Time) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	t = p.Apply(t)
	t.UpdatedAt = updatedAt
	r.tasks[id] = t
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

// Reset drops every task.
func (r *TaskRepository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = make(map[uuid.UUID]task.Task)
	return nil
}

// match must be called with r.mu held.
func (r *TaskRepository) match(f task.Filter) []task.Task {
	out := make([]task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.AssignedTo != uuid.Nil && t.AssignedTo != f.AssignedTo {
			continue
		}
		out = append(out, t)
	}
	return out
}
