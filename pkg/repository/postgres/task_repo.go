package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/tasktracker/pkg/task"
)

// TaskRepository хранит задачи.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, assigned_to, due_date, status, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t task.Task) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO tasks (id, title, description, assigned_to, due_date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, t.ID, t.Title, t.Description, t.AssignedTo, t.DueDate, string(t.Status), t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (task.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	return t, err
}

func (r *TaskRepository) List(ctx context.Context, f task.Filter, limit, offset int) ([]task.Task, int64, error) {
	where, args := whereClause(f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
SELECT %s FROM tasks%s
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d
`, taskColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	res := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, t)
	}
	return res, total, rows.Err()
}

func (r *TaskRepository) CountByStatus(ctx context.Context, f task.Filter) (map[task.Status]int64, error) {
	where, args := whereClause(f)
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks`+where+` GROUP BY status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[task.Status]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[task.Status(status)] = n
	}
	return out, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, p task.Patch, updatedAt time.Time) (task.Task, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	// NULL parameters keep the stored value
	row := r.pool.QueryRow(ctx, `
UPDATE tasks SET
	title = COALESCE($2, title),
	description = COALESCE($3, description),
	due_date = COALESCE($4, due_date),
	status = COALESCE($5, status),
	updated_at = $6
WHERE id = $1
RETURNING `+taskColumns, id, p.Title, p.Description, p.DueDate, status, updatedAt)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	return t, err
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// Reset removes every task; used by the seed command.
func (r *TaskRepository) Reset(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tasks`)
	return err
}

func whereClause(f task.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.AssignedTo != uuid.Nil {
		args = append(args, f.AssignedTo)
		conds = append(conds, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	var status string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &t.DueDate, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.DueDate = task.TruncateDate(t.DueDate)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
