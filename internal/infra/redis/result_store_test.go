package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/domain"
)

func TestResultStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewResultStore(newClient(mr), time.Hour)

	if _, err := store.Get(ctx, "s-1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	result := domain.Result{
		SessionID:      "s-1",
		Score:          1,
		TotalQuestions: 2,
		Difficulty:     domain.DifficultyMedium,
		Answers: []domain.AnswerSlot{
			{State: domain.SlotAnswered, Option: 0},
			{State: domain.SlotSkipped},
		},
		Questions: []domain.Question{
			{ID: 3, Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectIndex: 0},
			{ID: 9, Text: "Largest ocean?", Options: []string{"Atlantic", "Pacific"}, CorrectIndex: 1},
		},
		TimedOut: []bool{false, true},
	}
	if err := store.Set(ctx, "s-1", result); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("quiz:result:s-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	got, err := store.Get(ctx, "s-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if opt, ok := got.Answers[0].Answered(); !ok || opt != 0 {
		t.Fatalf("option 0 answer lost: %+v", got.Answers[0])
	}
	if got.Questions[1].CorrectText() != "Pacific" || !got.TimedOut[1] {
		t.Fatalf("unexpected decoded result %+v", got)
	}

	if err := store.Remove(ctx, "s-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if mr.Exists("quiz:result:s-1") {
		t.Fatalf("expected result key removed")
	}
}
