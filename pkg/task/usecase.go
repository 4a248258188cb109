package task

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/tasktracker/pkg/auth"
)

// UseCase инкапсулирует правила доступа к задачам.
type UseCase interface {
	Create(ctx context.Context, caller auth.Identity, in CreateInput) (View, error)
	Get(ctx context.Context, caller auth.Identity, id string) (View, error)
	List(ctx context.Context, caller auth.Identity, q ListQuery) (ListResult, error)
	Update(ctx context.Context, caller auth.Identity, id string, p Patch) (View, error)
	Delete(ctx context.Context, caller auth.Identity, id string) error
	Stats(ctx context.Context, caller auth.Identity) (map[Status]int64, error)
	ListEmployees(ctx context.Context) ([]auth.User, error)
}

type CreateInput struct {
	Title       string
	Description string
	AssignedTo  uuid.UUID
	DueDate     time.Time
}

type ListQuery struct {
	Filter
	Page  int
	Limit int
}

type ListResult struct {
	Tasks      []View
	Pagination Pagination
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type service struct {
	repo     Repository
	users    UserDirectory
	maxLimit int
	now      func() time.Time
}

// Option tweaks the service, mostly for tests.
type Option func(*service)

// WithClock replaces time.Now for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService wires the task rules over a store and the user directory.
// maxLimit caps the page size; zero or less disables the cap.
func NewService(repo Repository, users UserDirectory, maxLimit int, opts ...Option) UseCase {
	s := &service{repo: repo, users: users, maxLimit: maxLimit, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, caller auth.Identity, in CreateInput) (View, error) {
	if !caller.IsAdmin() {
		return View{}, ErrAccessDenied
	}
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	switch {
	case title == "":
		return View{}, ErrValidation("title is required")
	case desc == "":
		return View{}, ErrValidation("description is required")
	case in.AssignedTo == uuid.Nil:
		return View{}, ErrValidation("assignedTo is required")
	case in.DueDate.IsZero():
		return View{}, ErrValidation("dueDate is required")
	}

	assignee, err := s.users.GetByID(ctx, in.AssignedTo)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return View{}, ErrAssignedUserNotFound
		}
		return View{}, fmt.Errorf("lookup assignee: %w", err)
	}

	now := s.now().UTC()
	t := Task{
		ID:          uuid.New(),
		Title:       title,
		Description: desc,
		AssignedTo:  assignee.ID,
		DueDate:     TruncateDate(in.DueDate),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return View{}, fmt.Errorf("create task: %w", err)
	}
	return View{Task: t, Assignee: assigneeOf(assignee)}, nil
}

func (s *service) Get(ctx context.Context, caller auth.Identity, rawID string) (View, error) {
	t, err := s.load(ctx, rawID)
	if err != nil {
		return View{}, err
	}
	if !canTouch(caller, t) {
		return View{}, ErrAccessDenied
	}
	views, err := s.populate(ctx, []Task{t})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

func (s *service) List(ctx context.Context, caller auth.Identity, q ListQuery) (ListResult, error) {
	if q.Status != "" && !q.Status.Valid() {
		return ListResult{}, ErrValidation("status must be one of Pending, In Progress, Completed")
	}
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}

	f := scope(caller, q.Filter)
	if page-1 > math.MaxInt/limit {
		// the offset would overflow; no store holds that many rows
		return s.emptyPage(ctx, f, page, limit)
	}
	tasks, total, err := s.repo.List(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list tasks: %w", err)
	}
	views, err := s.populate(ctx, tasks)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Tasks: views,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: PageCount(total, limit),
		},
	}, nil
}

func (s *service) emptyPage(ctx context.Context, f Filter, page, limit int) (ListResult, error) {
	counts, err := s.repo.CountByStatus(ctx, f)
	if err != nil {
		return ListResult{}, fmt.Errorf("count tasks: %w", err)
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return ListResult{
		Tasks:      []View{},
		Pagination: Pagination{Page: page, Limit: limit, Total: total, Pages: PageCount(total, limit)},
	}, nil
}

func (s *service) Update(ctx context.Context, caller auth.Identity, rawID string, p Patch) (View, error) {
	t, err := s.load(ctx, rawID)
	if err != nil {
		return View{}, err
	}
	if !canTouch(caller, t) {
		return View{}, ErrAccessDenied
	}
	p, err = normalizePatch(p)
	if err != nil {
		return View{}, err
	}
	if !p.Empty() {
		t, err = s.repo.Update(ctx, t.ID, p, s.now().UTC())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return View{}, ErrNotFound
			}
			return View{}, fmt.Errorf("update task: %w", err)
		}
	}
	views, err := s.populate(ctx, []Task{t})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, rawID string) error {
	t, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return ErrAccessDenied
	}
	if err := s.repo.Delete(ctx, t.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *service) Stats(ctx context.Context, caller auth.Identity) (map[Status]int64, error) {
	counts, err := s.repo.CountByStatus(ctx, scope(caller, Filter{}))
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	out := make(map[Status]int64, len(Statuses))
	for _, st := range Statuses {
		out[st] = counts[st]
	}
	return out, nil
}

func (s *service) ListEmployees(ctx context.Context) ([]auth.User, error) {
	users, err := s.users.ListByRole(ctx, auth.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *service) load(ctx context.Context, rawID string) (Task, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return Task{}, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// populate resolves assignees with one batched lookup per call.
func (s *service) populate(ctx context.Context, tasks []Task) ([]View, error) {
	views := make([]View, len(tasks))
	if len(tasks) == 0 {
		return views, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(tasks))
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.AssignedTo]; !ok {
			seen[t.AssignedTo] = struct{}{}
			ids = append(ids, t.AssignedTo)
		}
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve assignees: %w", err)
	}
	byID := make(map[uuid.UUID]auth.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i, t := range tasks {
		a := Assignee{ID: t.AssignedTo}
		if u, ok := byID[t.AssignedTo]; ok {
			a = assigneeOf(u)
		}
		views[i] = View{Task: t, Assignee: a}
	}
	return views, nil
}

func normalizePatch(p Patch) (Patch, error) {
	if p.Title != nil {
		v := strings.TrimSpace(*p.Title)
		if v == "" {
			return Patch{}, ErrValidation("title cannot be empty")
		}
		p.Title = &v
	}
	if p.Description != nil {
		v := strings.TrimSpace(*p.Description)
		if v == "" {
			return Patch{}, ErrValidation("description cannot be empty")
		}
		p.Description = &v
	}
	if p.DueDate != nil {
		v := TruncateDate(*p.DueDate)
		p.DueDate = &v
	}
	if p.Status != nil && !p.Status.Valid() {
		return Patch{}, ErrValidation("status must be one of Pending, In Progress, Completed")
	}
	return p, nil
}

// scope forces employees onto their own tasks; only admins may pick an assignee.
func scope(caller auth.Identity, f Filter) Filter {
	if !caller.IsAdmin() {
		f.AssignedTo = caller.ID
	}
	return f
}

func canTouch(caller auth.Identity, t Task) bool {
	return caller.IsAdmin() || t.AssignedTo == caller.ID
}

func assigneeOf(u auth.User) Assignee {
	return Assignee{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ParseID validates a task identifier.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// PageCount is ceil(total/limit).
func PageCount(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// TruncateDate drops the time of day, keeping the UTC calendar date.
func TruncateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrValidation("dueDate must be an ISO-8601 date")
	}
	return TruncateDate(ts), nil
}
