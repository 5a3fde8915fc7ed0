package service

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
)

const (
	DefaultActivityLimit = 10
	MaxActivityLimit     = 50
)

type activityStore interface {
	Create(ctx context.Context, a *domain.Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

// ActivityService records and lists the per-user activity feed
type ActivityService struct {
	repo activityStore
}

// NewActivityService creates a new activity service
func NewActivityService(repo activityStore) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record stores an activity entry. Failures are logged and never returned:
// the feed is informational and must not fail the write that produced it.
func (s *ActivityService) Record(ctx context.Context, userID, action, taskID string, details map[string]any) {
	a := &domain.Activity{
		UserID:  userID,
		TaskID:  taskID,
		Action:  action,
		Details: details,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		logger.WithContext(ctx).Error("failed to record activity", "error", err, "action", action, "user_id", userID)
	}
}

// Recent returns the newest entries; limit is clamped to [1, MaxActivityLimit].
func (s *ActivityService) Recent(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
