package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrUnknownStatus = errors.New("status does not match any column")
	ErrColumnExists  = errors.New("column already exists")
)

type taskStore interface {
	List(ctx context.Context, userID string) ([]domain.Task, error)
	Get(ctx context.Context, userID, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Move(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

type columnStore interface {
	List(ctx context.Context) ([]domain.Column, error)
	Create(ctx context.Context, c *domain.Column) error
}

type activityRecorder interface {
	Record(ctx context.Context, userID, action, taskID string, details map[string]any)
}

// EventPublisher fans board events out to the user's live sessions.
type EventPublisher interface {
	Publish(userID string, ev domain.BoardEvent)
}

// Categorizer picks a column id for a task; it always returns one of columns.
type Categorizer interface {
	Categorize(ctx context.Context, title, description string, columns []string) string
}

// BoardService owns task CRUD, move semantics and the derived board view.
type BoardService struct {
	tasks    taskStore
	columns  columnStore
	activity activityRecorder
	events   EventPublisher
	newID    func() string
}

func NewBoardService(tasks taskStore, columns columnStore, activity activityRecorder, events EventPublisher) *BoardService {
	return &BoardService{
		tasks:    tasks,
		columns:  columns,
		activity: activity,
		events:   events,
		newID:    uuid.NewString,
	}
}

func (s *BoardService) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *BoardService) ListColumns(ctx context.Context) ([]domain.Column, error) {
	cols, err := s.columns.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	domain.SortColumns(cols)
	return cols, nil
}

func (s *BoardService) CreateColumn(ctx context.Context, c domain.Column) (*domain.Column, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.columns.Create(ctx, &c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrColumnExists
		}
		return nil, fmt.Errorf("create column: %w", err)
	}
	return &c, nil
}

// Board derives the column view of the user's tasks.
func (s *BoardService) Board(ctx context.Context, userID string) (domain.Board, error) {
	cols, err := s.ListColumns(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	tasks, err := s.ListTasks(ctx, userID)
	if err != nil {
		return domain.Board{}, err
	}
	return domain.BuildBoard(cols, tasks), nil
}

// CreateTask stores a new task. An empty status places it in the first column.
func (s *BoardService) CreateTask(ctx context.Context, userID, title, description, status string) (*domain.Task, error) {
	cols, err := s.ListColumns(ctx)
	if err != nil {
		return nil, err
	}
	status, err = resolveStatus(cols, status)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          s.newID(),
		UserID:      userID,
		Title:       domain.NormalizeTitle(title),
		Description: strings.TrimSpace(description),
	}
	t.SetStatus(status)
	if err := t.Validate(); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.record(ctx, userID, domain.ActivityTaskCreated, t, map[string]any{"title": t.Title, "status": t.Status})
	s.publish(userID, domain.BoardEvent{Type: domain.EventTaskCreated, TaskID: t.ID, Task: t})
	return t, nil
}

// CreateTaskCategorized asks c for a column before creating the task. The title is
// validated first so no completion call is made for a request that would fail anyway.
func (s *BoardService) CreateTaskCategorized(ctx context.Context, userID, title, description string, c Categorizer) (*domain.Task, error) {
	draft := domain.Task{Title: domain.NormalizeTitle(title), Description: strings.TrimSpace(description)}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	cols, err := s.ListColumns(ctx)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, ErrUnknownStatus
	}
	status := c.Categorize(ctx, draft.Title, draft.Description, domain.ColumnIDs(cols))
	return s.CreateTask(ctx, userID, title, description, status)
}

// UpdateTask applies patch. A patch that changes nothing performs no write.
func (s *BoardService) UpdateTask(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	current, err := s.getTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		cols, err := s.ListColumns(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := domain.FindColumn(cols, *patch.Status); !ok {
			return nil, ErrUnknownStatus
		}
	}

	updated := *current
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if sameContent(*current, updated) {
		return current, nil
	}

	if err := s.tasks.Update(ctx, &updated); err != nil {
		return nil, s.mapTaskErr("update task", err)
	}

	if updated.Status != current.Status {
		s.record(ctx, userID, domain.ActivityTaskMoved, &updated, map[string]any{"title": updated.Title, "from": current.Status, "to": updated.Status})
		s.publish(userID, domain.BoardEvent{Type: domain.EventTaskMoved, TaskID: id, Task: &updated, FromStatus: current.Status})
	} else {
		s.record(ctx, userID, domain.ActivityTaskUpdated, &updated, map[string]any{"title": updated.Title})
		s.publish(userID, domain.BoardEvent{Type: domain.EventTaskUpdated, TaskID: id, Task: &updated})
	}
	return &updated, nil
}

// MoveTask sets the task's status (and column) to status. It reports whether a
// write happened: moving a task to the column it is already in is a no-op, and
// of several concurrent moves to the same column only one writes.
func (s *BoardService) MoveTask(ctx context.Context, userID, id, status string) (*domain.Task, bool, error) {
	cols, err := s.ListColumns(ctx)
	if err != nil {
		return nil, false, err
	}
	if _, ok := domain.FindColumn(cols, status); !ok {
		return nil, false, ErrUnknownStatus
	}

	current, err := s.getTask(ctx, userID, id)
	if err != nil {
		return nil, false, err
	}
	if current.Status == status && current.ColumnID == status {
		return current, false, nil
	}

	moved := *current
	moved.SetStatus(status)
	changed, err := s.tasks.Move(ctx, &moved)
	if err != nil {
		return nil, false, s.mapTaskErr("move task", err)
	}
	if !changed {
		// a concurrent request got there first
		latest, err := s.getTask(ctx, userID, id)
		if err != nil {
			return nil, false, err
		}
		return latest, false, nil
	}

	s.record(ctx, userID, domain.ActivityTaskMoved, &moved, map[string]any{"title": moved.Title, "from": current.Status, "to": status})
	s.publish(userID, domain.BoardEvent{Type: domain.EventTaskMoved, TaskID: id, Task: &moved, FromStatus: current.Status})
	return &moved, true, nil
}

func (s *BoardService) DeleteTask(ctx context.Context, userID, id string) error {
	current, err := s.getTask(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return s.mapTaskErr("delete task", err)
	}

	s.record(ctx, userID, domain.ActivityTaskDeleted, current, map[string]any{"title": current.Title})
	s.publish(userID, domain.BoardEvent{Type: domain.EventTaskDeleted, TaskID: id})
	return nil
}

func (s *BoardService) getTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTaskNotFound
	}
	t, err := s.tasks.Get(ctx, userID, id)
	if err != nil {
		return nil, s.mapTaskErr("get task", err)
	}
	return t, nil
}

func (s *BoardService) mapTaskErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *BoardService) record(ctx context.Context, userID, action string, t *domain.Task, details map[string]any) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, userID, action, t.ID, details)
}

func (s *BoardService) publish(userID string, ev domain.BoardEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(userID, ev)
	logger.Debug("board event published", "user_id", userID, "type", ev.Type, "task_id", ev.TaskID)
}

func resolveStatus(cols []domain.Column, status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		if len(cols) == 0 {
			return "", ErrUnknownStatus
		}
		return cols[0].ID, nil
	}
	if _, ok := domain.FindColumn(cols, status); !ok {
		return "", ErrUnknownStatus
	}
	return status, nil
}

func sameContent(a, b domain.Task) bool {
	return a.Title == b.Title && a.Description == b.Description && a.Status == b.Status && a.ColumnID == b.ColumnID
}
