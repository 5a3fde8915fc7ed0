package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskflow/internal/domain"
)

type stubTasks struct {
	listFn   func(ctx context.Context, userID string) ([]domain.Task, error)
	createFn func(ctx context.Context, t *domain.Task) error
	updateFn func(ctx context.Context, t *domain.Task) error
	moveFn   func(ctx context.Context, t *domain.Task) (bool, error)
	deleteFn func(ctx context.Context, userID, id string) error
}

func (s *stubTasks) List(ctx context.Context, userID string) ([]domain.Task, error) {
	if s.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.listFn(ctx, userID)
}

func (s *stubTasks) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return nil, ErrNotFound
}

func (s *stubTasks) Create(ctx context.Context, t *domain.Task) error {
	if s.createFn == nil {
		return errors.New("unexpected Create call")
	}
	return s.createFn(ctx, t)
}

func (s *stubTasks) Update(ctx context.Context, t *domain.Task) error {
	if s.updateFn == nil {
		return errors.New("unexpected Update call")
	}
	return s.updateFn(ctx, t)
}

func (s *stubTasks) Move(ctx context.Context, t *domain.Task) (bool, error) {
	if s.moveFn == nil {
		return false, errors.New("unexpected Move call")
	}
	return s.moveFn(ctx, t)
}

func (s *stubTasks) Delete(ctx context.Context, userID, id string) error {
	if s.deleteFn == nil {
		return errors.New("unexpected Delete call")
	}
	return s.deleteFn(ctx, userID, id)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTaskCacheListMissThenHit(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	userID := "user-1"

	var calls int
	cache := NewTaskCache(&stubTasks{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			if uid != userID {
				t.Fatalf("unexpected user id: %s", uid)
			}
			return []domain.Task{{ID: "t1", UserID: uid, Title: "Write code", Status: "todo", ColumnID: "todo"}}, nil
		},
	}, client, time.Minute)

	tasks, err := cache.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || calls != 1 {
		t.Fatalf("tasks=%v calls=%d", tasks, calls)
	}
	if ttl := mr.TTL(tasksCacheKey(userID)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.List(ctx, userID)
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cached read to skip backend, calls=%d", calls)
	}
	if len(cached) != 1 || cached[0].ID != "t1" || cached[0].Title != "Write code" || cached[0].UserID != userID {
		t.Fatalf("unexpected cached tasks: %+v", cached)
	}
}

func TestTaskCacheWritesEvict(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	userID := "user-2"

	backend := &stubTasks{
		listFn:   func(ctx context.Context, uid string) ([]domain.Task, error) { return []domain.Task{}, nil },
		createFn: func(ctx context.Context, t *domain.Task) error { return nil },
		updateFn: func(ctx context.Context, t *domain.Task) error { return nil },
		deleteFn: func(ctx context.Context, uid, id string) error { return nil },
	}
	cache := NewTaskCache(backend, client, time.Minute)

	writes := []func() error{
		func() error { return cache.Create(ctx, &domain.Task{ID: "a", UserID: userID}) },
		func() error { return cache.Update(ctx, &domain.Task{ID: "a", UserID: userID}) },
		func() error { return cache.Delete(ctx, userID, "a") },
	}
	for i, write := range writes {
		if _, err := cache.List(ctx, userID); err != nil {
			t.Fatalf("prime %d: %v", i, err)
		}
		if !mr.Exists(tasksCacheKey(userID)) {
			t.Fatalf("write %d: expected cache entry after list", i)
		}
		if err := write(); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if mr.Exists(tasksCacheKey(userID)) {
			t.Fatalf("write %d: expected cache eviction", i)
		}
	}
}

func TestTaskCacheFailedWriteKeepsEntry(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	backend := &stubTasks{
		listFn:   func(ctx context.Context, uid string) ([]domain.Task, error) { return []domain.Task{}, nil },
		deleteFn: func(ctx context.Context, uid, id string) error { return ErrNotFound },
	}
	cache := NewTaskCache(backend, client, time.Minute)

	if _, err := cache.List(ctx, "u"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := cache.Delete(ctx, "u", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete err = %v; want ErrNotFound", err)
	}
	if !mr.Exists(tasksCacheKey("u")) {
		t.Fatalf("failed write should not evict")
	}
}

func TestTaskCacheCorruptEntryFallsBack(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	if err := mr.Set(tasksCacheKey("u"), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var calls int
	cache := NewTaskCache(&stubTasks{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			return []domain.Task{{ID: "x"}}, nil
		},
	}, client, time.Minute)

	tasks, err := cache.List(ctx, "u")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if calls != 1 || len(tasks) != 1 {
		t.Fatalf("expected backend fallback, calls=%d tasks=%v", calls, tasks)
	}
}

func TestTaskCacheDisabledWithoutRedis(t *testing.T) {
	var calls int
	cache := NewTaskCache(&stubTasks{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			return nil, nil
		},
	}, nil, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.List(context.Background(), "u"); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every call to reach backend, got %d", calls)
	}
}

func TestTaskCacheListRacingWriteDoesNotCacheStaleSnapshot(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	userID := "user-race"

	var (
		mu       sync.Mutex
		dbStatus = "todo"
		calls    int
	)
	entered := make(chan struct{})
	release := make(chan struct{})

	cache := NewTaskCache(&stubTasks{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			mu.Lock()
			status := dbStatus
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				close(entered)
				<-release
			}
			return []domain.Task{{ID: "t1", UserID: uid, Title: "race", Status: status, ColumnID: status}}, nil
		},
		updateFn: func(ctx context.Context, t *domain.Task) error {
			mu.Lock()
			dbStatus = t.Status
			mu.Unlock()
			return nil
		},
	}, client, time.Minute)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := cache.List(ctx, userID); err != nil {
			t.Errorf("racing list: %v", err)
		}
	}()

	<-entered
	moved := &domain.Task{ID: "t1", UserID: userID, Title: "race"}
	moved.SetStatus("done")
	if err := cache.Update(ctx, moved); err != nil {
		t.Fatalf("update: %v", err)
	}
	close(release)
	<-done

	if mr.Exists(tasksCacheKey(userID)) {
		t.Fatalf("snapshot read before the write was cached")
	}

	tasks, err := cache.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != "done" {
		t.Fatalf("list after move = %+v; want status done", tasks)
	}

	// the fresh read is cacheable again
	if !mr.Exists(tasksCacheKey(userID)) {
		t.Fatalf("expected fresh list to be cached")
	}
}

func TestTaskCacheMoveEvictsOnlyOnWrite(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	userID := "user-move"

	var changed bool
	cache := NewTaskCache(&stubTasks{
		listFn: func(ctx context.Context, uid string) ([]domain.Task, error) { return []domain.Task{}, nil },
		moveFn: func(ctx context.Context, t *domain.Task) (bool, error) { return changed, nil },
	}, client, time.Minute)

	if _, err := cache.List(ctx, userID); err != nil {
		t.Fatalf("list: %v", err)
	}
	moved, err := cache.Move(ctx, &domain.Task{ID: "a", UserID: userID, Status: "done"})
	if err != nil || moved {
		t.Fatalf("no-op move = %v, %v", moved, err)
	}
	if !mr.Exists(tasksCacheKey(userID)) {
		t.Fatalf("no-op move evicted the cache")
	}

	changed = true
	if moved, err := cache.Move(ctx, &domain.Task{ID: "a", UserID: userID, Status: "done"}); err != nil || !moved {
		t.Fatalf("move = %v, %v", moved, err)
	}
	if mr.Exists(tasksCacheKey(userID)) {
		t.Fatalf("move did not evict the cache")
	}
}
