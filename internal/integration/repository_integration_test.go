package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskflow/internal/db"
	"taskflow/internal/domain"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	pool := openTestDB(t)

	applied, err := db.Migrate(context.Background(), pool)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected nothing to apply, got %v", applied)
	}
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, pool)
	repo := repository.NewTaskRepository(pool)

	task := &domain.Task{ID: uuid.NewString(), UserID: u.ID, Title: "write tests"}
	task.SetStatus("todo")
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.CreatedAt.IsZero() {
		t.Fatalf("created_at not returned")
	}

	task.SetStatus("done")
	task.Title = "write more tests"
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "done" || got.ColumnID != "done" || got.Title != "write more tests" {
		t.Fatalf("unexpected task %+v", got)
	}

	// other users cannot see the task
	if _, err := repo.Get(ctx, uuid.NewString(), task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign get: %v", err)
	}

	list, err := repo.List(ctx, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}

	if err := repo.Delete(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, u.ID, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestColumnRepository_DefaultsAndDuplicates(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	repo := repository.NewColumnRepository(pool)

	cols, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, ok := domain.FindColumn(cols, "in-progress"); !ok {
		t.Fatalf("default columns missing: %v", cols)
	}

	if err := repo.Create(ctx, &domain.Column{ID: "todo", Title: "Again"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate column: %v", err)
	}
}

func TestTokenRepository_ConsumeOnce(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, pool)
	repo := repository.NewTokenRepository(pool)

	tok := &domain.AuthToken{Token: uuid.NewString(), UserID: u.ID, Purpose: domain.TokenPurposeConfirm, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Create(ctx, tok); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.Consume(ctx, tok.Token, domain.TokenPurposeReset); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("wrong purpose: %v", err)
	}
	userID, err := repo.Consume(ctx, tok.Token, domain.TokenPurposeConfirm)
	if err != nil || userID != u.ID {
		t.Fatalf("consume = %q, %v", userID, err)
	}
	if _, err := repo.Consume(ctx, tok.Token, domain.TokenPurposeConfirm); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("reuse: %v", err)
	}

	expired := &domain.AuthToken{Token: uuid.NewString(), UserID: u.ID, Purpose: domain.TokenPurposeReset, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := repo.Create(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	n, err := repo.PurgeExpired(ctx)
	if err != nil || n < 1 {
		t.Fatalf("purge = %d, %v", n, err)
	}
}

func TestActivityRepository_NewestFirst(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, pool)
	repo := repository.NewActivityRepository(pool)

	for _, action := range []string{domain.ActivityTaskCreated, domain.ActivityTaskMoved} {
		a := &domain.Activity{UserID: u.ID, Action: action, Details: map[string]any{"title": "x"}}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("create %s: %v", action, err)
		}
	}

	got, err := repo.ListByUser(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Action != domain.ActivityTaskMoved {
		t.Fatalf("unexpected feed %+v", got)
	}
	if got[0].Details["title"] != "x" {
		t.Fatalf("details not decoded: %+v", got[0].Details)
	}
}
