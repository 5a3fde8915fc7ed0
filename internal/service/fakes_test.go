package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/repository"
)

type memTasks struct {
	mu      sync.Mutex
	tasks   map[string]domain.Task
	seq     int
	order   map[string]int
	updates int
	failErr error
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: map[string]domain.Task{}, order: map[string]int{}}
}

func (m *memTasks) List(ctx context.Context, userID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []domain.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

func (m *memTasks) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (m *memTasks) Create(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.seq++
	m.order[t.ID] = m.seq
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = *t
	return nil
}

func (m *memTasks) Update(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return repository.ErrNotFound
	}
	m.updates++
	t.UpdatedAt = time.Now()
	m.tasks[t.ID] = *t
	return nil
}

func (m *memTasks) Move(ctx context.Context, t *domain.Task) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID || (cur.Status == t.Status && cur.ColumnID == t.Status) {
		return false, nil
	}
	m.updates++
	cur.SetStatus(t.Status)
	cur.UpdatedAt = time.Now()
	m.tasks[t.ID] = cur
	*t = cur
	return true, nil
}

func (m *memTasks) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[id]
	if !ok || cur.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type memColumns struct {
	cols []domain.Column
}

func (m *memColumns) List(ctx context.Context) ([]domain.Column, error) {
	return append([]domain.Column(nil), m.cols...), nil
}

func (m *memColumns) Create(ctx context.Context, c *domain.Column) error {
	if _, ok := domain.FindColumn(m.cols, c.ID); ok {
		return repository.ErrDuplicate
	}
	m.cols = append(m.cols, *c)
	return nil
}

type recordedActivity struct {
	userID, action, taskID string
}

type memActivity struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (m *memActivity) Record(ctx context.Context, userID, action, taskID string, details map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, recordedActivity{userID, action, taskID})
}

type memEvents struct {
	mu     sync.Mutex
	events []domain.BoardEvent
}

func (m *memEvents) Publish(userID string, ev domain.BoardEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

type fixedCategorizer struct {
	answer string
	calls  int
}

func (f *fixedCategorizer) Categorize(ctx context.Context, title, description string, columns []string) string {
	f.calls++
	for _, c := range columns {
		if c == f.answer {
			return c
		}
	}
	return columns[0]
}
