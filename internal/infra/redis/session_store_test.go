package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	store.Save(app.NewSession("s-1", domain.DifficultyHard, nil))
	if !mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("quiz:session:s-1"); got != "hard" {
		t.Fatalf("expected difficulty marker, got %q", got)
	}
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session kept locally")
	}

	store.Delete("s-1")
	if mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
}
