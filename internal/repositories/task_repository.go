package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskdeck/internal/models"
)

type TodoRepository interface {
	Store(ctx context.Context, todo *models.Todo) error
	FindByID(ctx context.Context, userID int64, id string) (*models.Todo, error)
	FindAll(ctx context.Context, userID int64) ([]models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, userID int64, id string) error

	Statistics(ctx context.Context, userID int64) (models.Statistics, error)
	ListDueForReminder(ctx context.Context, until time.Time, limit int) ([]models.Todo, error)
	SetReminderFired(ctx context.Context, id string) error
}

type todoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) TodoRepository {
	return &todoRepository{db: db}
}

const todoColumns = `id, user_id, title, description, priority, deadline, is_completed, created_at, updated_at, reminded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (models.Todo, error) {
	var (
		t        models.Todo
		reminded sql.NullTime
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Deadline,
		&t.IsCompleted, &t.CreatedAt, &t.UpdatedAt, &reminded)
	if err != nil {
		return t, err
	}
	if reminded.Valid {
		rt := reminded.Time
		t.RemindedAt = &rt
	}
	t.Deadline = t.Deadline.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *todoRepository) Store(ctx context.Context, todo *models.Todo) error {
	const q = `
		INSERT INTO todos (id, user_id, title, description, priority, deadline, is_completed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.ExecContext(ctx, q,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Priority, todo.Deadline,
		todo.IsCompleted, todo.CreatedAt, todo.UpdatedAt,
	)
	return err
}

func (r *todoRepository) FindByID(ctx context.Context, userID int64, id string) (*models.Todo, error) {
	q := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	t, err := scanTodo(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *todoRepository) FindAll(ctx context.Context, userID int64) ([]models.Todo, error) {
	q := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Update writes the mutable fields. A changed deadline re-arms the reminder.
func (r *todoRepository) Update(ctx context.Context, todo *models.Todo) error {
	const q = `
		UPDATE todos SET
			title=$1, description=$2, priority=$3, deadline=$4, is_completed=$5, updated_at=$6,
			reminded_at = CASE WHEN deadline <> $4 THEN NULL ELSE reminded_at END
		WHERE id=$7 AND user_id=$8`
	res, err := r.db.ExecContext(ctx, q,
		todo.Title, todo.Description, todo.Priority, todo.Deadline, todo.IsCompleted, todo.UpdatedAt,
		todo.ID, todo.UserID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *todoRepository) Delete(ctx context.Context, userID int64, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *todoRepository) Statistics(ctx context.Context, userID int64) (models.Statistics, error) {
	var s models.Statistics
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_completed) FROM todos WHERE user_id = $1`, userID,
	).Scan(&s.Total, &s.Completed)
	if err != nil {
		return s, err
	}
	if s.Total > 0 {
		s.Efficiency = float64(s.Completed) / float64(s.Total) * 100
	}
	return s, nil
}

// ListDueForReminder returns incomplete, not yet reminded todos whose deadline
// falls before until.
func (r *todoRepository) ListDueForReminder(ctx context.Context, until time.Time, limit int) ([]models.Todo, error) {
	q := `
SELECT ` + todoColumns + `
FROM todos
WHERE is_completed = FALSE
  AND reminded_at IS NULL
  AND deadline <= $1
ORDER BY deadline ASC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, until, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *todoRepository) SetReminderFired(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE todos SET reminded_at = NOW() WHERE id = $1`, id)
	return err
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
