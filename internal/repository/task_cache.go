package repository

import (
	"context"
	"errors"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/logger"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type taskBackend interface {
	List(ctx context.Context, userID string) ([]domain.Task, error)
	Get(ctx context.Context, userID, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Move(ctx context.Context, t *domain.Task) (bool, error)
	Delete(ctx context.Context, userID, id string) error
}

// TaskCache wraps a task store with a Redis-backed copy of each user's task list.
// Writes go to the backing store first and then evict the user's entry and bump
// the user's generation; a list read only fills the cache when the generation it
// saw before reading the store is still current.
type TaskCache struct {
	base  taskBackend
	redis *redis.Client
	ttl   time.Duration
}

// NewTaskCache returns a caching wrapper. A nil client or zero ttl disables caching.
func NewTaskCache(base taskBackend, client *redis.Client, ttl time.Duration) *TaskCache {
	if base == nil {
		panic("repository.NewTaskCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &TaskCache{base: base, redis: client, ttl: ttl}
}

func (c *TaskCache) List(ctx context.Context, userID string) ([]domain.Task, error) {
	if tasks, ok := c.load(ctx, userID); ok {
		return tasks, nil
	}

	gen := c.generation(ctx, userID)
	tasks, err := c.base.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, userID, gen, tasks)
	return tasks, nil
}

func (c *TaskCache) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return c.base.Get(ctx, userID, id)
}

func (c *TaskCache) Create(ctx context.Context, t *domain.Task) error {
	if err := c.base.Create(ctx, t); err != nil {
		return err
	}
	c.Evict(ctx, t.UserID)
	return nil
}

func (c *TaskCache) Update(ctx context.Context, t *domain.Task) error {
	if err := c.base.Update(ctx, t); err != nil {
		return err
	}
	c.Evict(ctx, t.UserID)
	return nil
}

func (c *TaskCache) Move(ctx context.Context, t *domain.Task) (bool, error) {
	moved, err := c.base.Move(ctx, t)
	if err != nil || !moved {
		return moved, err
	}
	c.Evict(ctx, t.UserID)
	return true, nil
}

func (c *TaskCache) Delete(ctx context.Context, userID, id string) error {
	if err := c.base.Delete(ctx, userID, id); err != nil {
		return err
	}
	c.Evict(ctx, userID)
	return nil
}

// Evict drops the cached task list for userID.
func (c *TaskCache) Evict(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, tasksGenKey(userID))
		pipe.Expire(ctx, tasksGenKey(userID), generationTTL)
		pipe.Del(ctx, tasksCacheKey(userID))
		return nil
	})
	if err != nil {
		logger.WithContext(ctx).Warn("task cache evict failed", "user_id", userID, "error", err)
	}
}

// generation returns the user's current cache generation; "" when unset or
// when caching is off.
func (c *TaskCache) generation(ctx context.Context, userID string) string {
	if c.redis == nil || c.ttl == 0 {
		return ""
	}
	gen, err := c.redis.Get(ctx, tasksGenKey(userID)).Result()
	if err != nil {
		return ""
	}
	return gen
}

func (c *TaskCache) load(ctx context.Context, userID string) ([]domain.Task, bool) {
	if c.redis == nil || c.ttl == 0 {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// fall back to the backing store without failing the read
			_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		return nil, false
	}
	for i := range tasks {
		tasks[i].UserID = userID
	}
	return tasks, true
}

// store caches tasks unless a write bumped the generation after gen was read.
func (c *TaskCache) store(ctx context.Context, userID, gen string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}

	genKey := tasksGenKey(userID)
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tasksCacheKey(userID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err != nil && err != errStaleSnapshot && err != redis.TxFailedErr {
		logger.WithContext(ctx).Debug("task cache store failed", "user_id", userID, "error", err)
	}
}

var errStaleSnapshot = errors.New("task list changed while loading")

// generationTTL outlives any cache entry so an in-flight read never sees a
// generation reset while its snapshot could still be stored.
const generationTTL = 24 * time.Hour

func tasksCacheKey(userID string) string {
	return "board:tasks:" + userID
}

func tasksGenKey(userID string) string {
	return "board:tasks:gen:" + userID
}
