package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrDuplicate indicates the user already has a task with this title.
	ErrDuplicate = errors.New("duplicate task title")
)

const uniqueViolation = "23505"

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	Create(ctx context.Context, userID, title string, description *string) (*Task, error)
	FindByID(ctx context.Context, id int64) (*Task, error)
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	Replace(ctx context.Context, id int64, title string, description *string, complete bool) (*Task, error)
	Apply(ctx context.Context, id int64, patch Patch) (*Task, error)
	Delete(ctx context.Context, id int64) error
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = "id, user_id, title, description, complete, created_at, updated_at"

// Create inserts a new task for the user.
func (r *Repository) Create(ctx context.Context, userID, title string, description *string) (*Task, error) {
	const query = `
		INSERT INTO tasks (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING ` + taskColumns
	task, err := r.scanRow(r.pool.QueryRow(ctx, query, userID, title, description))
	if err != nil {
		return nil, mapPgError(err)
	}
	return task, nil
}

// FindByID fetches a single task by primary key.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := r.scanRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListByUser returns all tasks owned by the user, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Complete, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Replace overwrites every mutable field of the task.
func (r *Repository) Replace(ctx context.Context, id int64, title string, description *string, complete bool) (*Task, error) {
	const query = `
		UPDATE tasks
		SET title = $2, description = $3, complete = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + taskColumns
	task, err := r.scanRow(r.pool.QueryRow(ctx, query, id, title, description, complete))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return task, nil
}

// Apply updates only the fields present in the patch.
func (r *Repository) Apply(ctx context.Context, id int64, patch Patch) (*Task, error) {
	const query = `
		UPDATE tasks
		SET title       = COALESCE($2, title),
		    description = CASE WHEN $5 THEN $3 ELSE description END,
		    complete    = COALESCE($4, complete),
		    updated_at  = now()
		WHERE id = $1
		RETURNING ` + taskColumns
	task, err := r.scanRow(r.pool.QueryRow(ctx, query, id, patch.Title, patch.Description, patch.Complete, patch.Description != nil))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapPgError(err)
	}
	return task, nil
}

// Delete removes the task.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompletedBefore removes completed tasks not updated since the cutoff
// and reports how many rows were purged.
func (r *Repository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE complete AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) scanRow(row pgx.Row) (*Task, error) {
	var t Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Complete, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
