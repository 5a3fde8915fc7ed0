package domain

// Board event types pushed to websocket subscribers
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskMoved   = "task.moved"
	EventTaskDeleted = "task.deleted"
)

// BoardEvent notifies a user's open sessions about a change to their board.
type BoardEvent struct {
	Type       string `json:"type"`
	TaskID     string `json:"task_id"`
	Task       *Task  `json:"task,omitempty"`
	FromStatus string `json:"from_status,omitempty"`
}
