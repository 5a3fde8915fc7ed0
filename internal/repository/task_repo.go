package repository

import (
	"context"
	"errors"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, user_id, title, description, status, column_id, created_at, updated_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the user's tasks, oldest first.
func (r *TaskRepository) List(ctx context.Context, userID string) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, column_id)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.Title, t.Description, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// Update writes every mutable field of t. Status and column_id are always written together.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $3, description = $4, status = $5, column_id = $5, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING updated_at`,
		t.UserID, t.ID, t.Title, t.Description, t.Status,
	).Scan(&t.UpdatedAt)
	return mapErr(err)
}

// Move sets status and column_id to t.Status unless the task is already there.
// It reports whether a row changed and refreshes t from the stored row; two
// concurrent moves to the same column produce exactly one write.
func (r *TaskRepository) Move(ctx context.Context, t *domain.Task) (bool, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET status = $3, column_id = $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND (status <> $3 OR column_id <> $3)
		 RETURNING `+taskColumns,
		t.UserID, t.ID, t.Status)
	moved, err := scanTask(row)
	if err = mapErr(err); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	*t = moved
	return true, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.ColumnID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
