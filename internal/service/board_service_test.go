package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taskflow/internal/domain"
)

type boardFixture struct {
	svc      *BoardService
	tasks    *memTasks
	activity *memActivity
	events   *memEvents
}

func newBoardFixture() *boardFixture {
	f := &boardFixture{
		tasks:    newMemTasks(),
		activity: &memActivity{},
		events:   &memEvents{},
	}
	f.svc = NewBoardService(f.tasks, &memColumns{cols: domain.DefaultColumns()}, f.activity, f.events)
	return f
}

func TestCreateTaskDefaultsToFirstColumn(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, "u1", "  Create   project structure ", "Set up the repo", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "Create project structure" {
		t.Fatalf("title = %q", task.Title)
	}
	if task.Status != "todo" || task.ColumnID != "todo" {
		t.Fatalf("status/column = %s/%s; want todo/todo", task.Status, task.ColumnID)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != domain.EventTaskCreated {
		t.Fatalf("unexpected events: %+v", f.events.events)
	}
	if len(f.activity.entries) != 1 || f.activity.entries[0].action != domain.ActivityTaskCreated {
		t.Fatalf("unexpected activity: %+v", f.activity.entries)
	}
}

func TestCreateTaskRejectsUnknownStatusAndEmptyTitle(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateTask(ctx, "u1", "x", "", "archived"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v; want ErrUnknownStatus", err)
	}
	if _, err := f.svc.CreateTask(ctx, "u1", "   ", "", "todo"); !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("err = %v; want ErrTitleRequired", err)
	}
	if len(f.tasks.tasks) != 0 {
		t.Fatalf("invalid creates must not be stored")
	}
}

func TestMoveTaskUpdatesStatusExactlyOnce(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, "u1", "Design UI components", "", "todo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, changed, err := f.svc.MoveTask(ctx, "u1", task.ID, "in-progress")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !changed || moved.Status != "in-progress" || moved.ColumnID != "in-progress" {
		t.Fatalf("moved = %+v changed=%v", moved, changed)
	}
	if f.tasks.updates != 1 {
		t.Fatalf("updates = %d; want 1", f.tasks.updates)
	}

	again, changed, err := f.svc.MoveTask(ctx, "u1", task.ID, "in-progress")
	if err != nil {
		t.Fatalf("repeat move: %v", err)
	}
	if changed || again.Status != "in-progress" {
		t.Fatalf("repeat move changed=%v status=%s", changed, again.Status)
	}
	if f.tasks.updates != 1 {
		t.Fatalf("same-column move wrote again, updates = %d", f.tasks.updates)
	}

	var moves int
	for _, ev := range f.events.events {
		if ev.Type == domain.EventTaskMoved {
			moves++
			if ev.FromStatus != "todo" {
				t.Fatalf("from_status = %s; want todo", ev.FromStatus)
			}
		}
	}
	if moves != 1 {
		t.Fatalf("moved events = %d; want 1", moves)
	}
}

func TestMoveTaskErrors(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()
	task, _ := f.svc.CreateTask(ctx, "u1", "a", "", "")

	if _, _, err := f.svc.MoveTask(ctx, "u1", task.ID, "nowhere"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v; want ErrUnknownStatus", err)
	}
	if _, _, err := f.svc.MoveTask(ctx, "u2", task.ID, "done"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("other user's task: err = %v; want ErrTaskNotFound", err)
	}
	if _, _, err := f.svc.MoveTask(ctx, "u1", "not-a-uuid", "done"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("bad id: err = %v; want ErrTaskNotFound", err)
	}
	if f.tasks.updates != 0 {
		t.Fatalf("failed moves must not write")
	}
}

func TestUpdateTaskPatch(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()
	task, _ := f.svc.CreateTask(ctx, "u1", "old", "desc", "todo")

	title := "new"
	updated, err := f.svc.UpdateTask(ctx, "u1", task.ID, domain.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "new" || updated.Description != "desc" || updated.Status != "todo" {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := f.svc.UpdateTask(ctx, "u1", task.ID, domain.TaskPatch{Title: &title}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if f.tasks.updates != 1 {
		t.Fatalf("no-op patch wrote, updates = %d", f.tasks.updates)
	}

	status := "done"
	moved, err := f.svc.UpdateTask(ctx, "u1", task.ID, domain.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("status patch: %v", err)
	}
	if moved.ColumnID != "done" {
		t.Fatalf("column not synced: %+v", moved)
	}
	last := f.events.events[len(f.events.events)-1]
	if last.Type != domain.EventTaskMoved {
		t.Fatalf("status patch event = %s; want %s", last.Type, domain.EventTaskMoved)
	}

	bad := "nope"
	if _, err := f.svc.UpdateTask(ctx, "u1", task.ID, domain.TaskPatch{Status: &bad}); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v; want ErrUnknownStatus", err)
	}
	empty := ""
	if _, err := f.svc.UpdateTask(ctx, "u1", task.ID, domain.TaskPatch{Title: &empty}); !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("err = %v; want ErrTitleRequired", err)
	}
}

func TestDeleteTask(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()
	task, _ := f.svc.CreateTask(ctx, "u1", "a", "", "")

	if err := f.svc.DeleteTask(ctx, "u2", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err = %v; want ErrTaskNotFound", err)
	}
	if err := f.svc.DeleteTask(ctx, "u1", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.DeleteTask(ctx, "u1", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete err = %v; want ErrTaskNotFound", err)
	}
	last := f.events.events[len(f.events.events)-1]
	if last.Type != domain.EventTaskDeleted || last.TaskID != task.ID {
		t.Fatalf("unexpected last event %+v", last)
	}
}

func TestBoardCountsAndEmptyState(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	b, err := f.svc.Board(ctx, "u1")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if !b.Empty || b.Total != 0 || len(b.Columns) != 3 {
		t.Fatalf("empty board = %+v", b)
	}

	for _, status := range []string{"todo", "todo", "in-progress", "done"} {
		if _, err := f.svc.CreateTask(ctx, "u1", "task", "", status); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := f.svc.CreateTask(ctx, "u2", "someone else", "", "todo"); err != nil {
		t.Fatalf("create: %v", err)
	}

	b, err = f.svc.Board(ctx, "u1")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	sum := 0
	for _, c := range b.Columns {
		sum += c.Count
	}
	if b.Empty || b.Total != 4 || sum != 4 {
		t.Fatalf("total=%d sum=%d empty=%v", b.Total, sum, b.Empty)
	}
}

func TestListTasksNeverNil(t *testing.T) {
	f := newBoardFixture()
	tasks, err := f.svc.ListTasks(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestCreateColumn(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	four := 4
	col, err := f.svc.CreateColumn(ctx, domain.Column{ID: "review", Title: " Review ", Color: "bg-purple-50", Order: &four})
	if err != nil {
		t.Fatalf("create column: %v", err)
	}
	if col.Title != "Review" {
		t.Fatalf("title = %q", col.Title)
	}
	if _, err := f.svc.CreateColumn(ctx, domain.Column{ID: "review", Title: "Again"}); !errors.Is(err, ErrColumnExists) {
		t.Fatalf("err = %v; want ErrColumnExists", err)
	}
	if _, err := f.svc.CreateColumn(ctx, domain.Column{ID: "Bad Id", Title: "x"}); !errors.Is(err, domain.ErrInvalidColumnID) {
		t.Fatalf("err = %v; want ErrInvalidColumnID", err)
	}

	cols, _ := f.svc.ListColumns(ctx)
	if cols[len(cols)-1].ID != "review" {
		t.Fatalf("new column should sort last: %v", domain.ColumnIDs(cols))
	}
}

func TestCreateTaskCategorized(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	c := &fixedCategorizer{answer: "in-progress"}
	task, err := f.svc.CreateTaskCategorized(ctx, "u1", "Fix login bug", "", c)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != "in-progress" || c.calls != 1 {
		t.Fatalf("status=%s calls=%d", task.Status, c.calls)
	}

	if _, err := f.svc.CreateTaskCategorized(ctx, "u1", "", "only a description", c); !errors.Is(err, domain.ErrTitleRequired) {
		t.Fatalf("err = %v; want ErrTitleRequired", err)
	}
	if c.calls != 1 {
		t.Fatalf("categorizer called for invalid task")
	}
}

func TestStoreFailuresAreWrapped(t *testing.T) {
	f := newBoardFixture()
	boom := errors.New("connection reset")
	f.tasks.failErr = boom

	if _, err := f.svc.ListTasks(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v; want wrapped %v", err, boom)
	}
	if _, err := f.svc.CreateTask(context.Background(), "u1", "a", "", ""); !errors.Is(err, boom) {
		t.Fatalf("err = %v; want wrapped %v", err, boom)
	}
	if len(f.events.events) != 0 {
		t.Fatalf("failed writes must not publish events")
	}
}

func TestMoveTaskConcurrentSameColumnWritesOnce(t *testing.T) {
	f := newBoardFixture()
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, "u1", "Write API docs", "", "todo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, changed, err := f.svc.MoveTask(ctx, "u1", task.ID, "done")
			if err != nil {
				t.Errorf("move: %v", err)
				return
			}
			if got.Status != "done" {
				t.Errorf("status = %s; want done", got.Status)
			}
			if changed {
				mu.Lock()
				changes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if changes != 1 {
		t.Fatalf("changed=true reported %d times; want 1", changes)
	}
	if f.tasks.updates != 1 {
		t.Fatalf("updates = %d; want 1", f.tasks.updates)
	}
	var moves, logged int
	for _, ev := range f.events.events {
		if ev.Type == domain.EventTaskMoved {
			moves++
		}
	}
	for _, a := range f.activity.entries {
		if a.action == domain.ActivityTaskMoved {
			logged++
		}
	}
	if moves != 1 || logged != 1 {
		t.Fatalf("moved events = %d, activity = %d; want 1 each", moves, logged)
	}
}
