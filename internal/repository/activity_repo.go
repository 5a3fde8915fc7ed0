package repository

import (
	"context"
	"encoding/json"

	"taskflow/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository handles the activity_log table
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts a new activity entry
func (r *ActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	detailsJSON, err := json.Marshal(a.Details)
	if err != nil || a.Details == nil {
		detailsJSON = []byte("{}")
	}

	var taskID *string
	if a.TaskID != "" {
		taskID = &a.TaskID
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO activity_log (user_id, task_id, action, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, a.UserID, taskID, a.Action, detailsJSON).Scan(&a.ID, &a.CreatedAt)
}

// ListByUser returns the user's newest entries first
func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, COALESCE(task_id::text, ''), action, details, created_at
		FROM activity_log
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		var detailsJSON []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.TaskID, &a.Action, &detailsJSON, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(detailsJSON, &a.Details); err != nil || a.Details == nil {
			a.Details = map[string]any{}
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
