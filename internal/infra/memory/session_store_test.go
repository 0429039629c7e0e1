package memory

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	store.Save(app.NewSession("s-1", domain.DifficultyEasy, nil))
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}

	store.Delete("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestResultStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()

	if _, err := store.Get(ctx, "s-1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, "s-1", domain.Result{SessionID: "s-1", Score: 7, TotalQuestions: 10}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "s-1")
	if err != nil || got.Score != 7 {
		t.Fatalf("unexpected result %+v, err %v", got, err)
	}
	if err := store.Remove(ctx, "s-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, "s-1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result cleared, got %v", err)
	}
}
