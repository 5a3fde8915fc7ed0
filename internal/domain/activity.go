package domain

import "time"

// Activity is one entry of the user's recent activity feed.
type Activity struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"-"`
	TaskID    string         `db:"task_id" json:"task_id,omitempty"`
	Action    string         `db:"action" json:"action"`
	Details   map[string]any `db:"details" json:"details"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Activity actions
const (
	ActivityTaskCreated = "task_created"
	ActivityTaskUpdated = "task_updated"
	ActivityTaskMoved   = "task_moved"
	ActivityTaskDeleted = "task_deleted"
)
