package app

import (
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestBuildReviewStatuses(t *testing.T) {
	questions := testQuestions(5)
	result := domain.Result{
		SessionID:      "s-1",
		Score:          1,
		TotalQuestions: 5,
		Difficulty:     domain.DifficultyHard,
		Questions:      questions,
		Answers: []domain.AnswerSlot{
			{State: domain.SlotAnswered, Option: 0},
			{State: domain.SlotAnswered, Option: 3},
			{State: domain.SlotSkipped},
			{State: domain.SlotUnvisited},
			{State: domain.SlotUnvisited},
		},
		TimedOut: []bool{false, false, true, true, false},
	}

	review := BuildReview(result)
	want := []domain.ReviewStatus{
		domain.ReviewCorrect,
		domain.ReviewIncorrect,
		domain.ReviewSkipped,
		domain.ReviewTimedOut,
		domain.ReviewUnanswered,
	}
	for i, status := range want {
		if review.Items[i].Status != status {
			t.Fatalf("item %d: expected %s, got %s", i+1, status, review.Items[i].Status)
		}
		if review.Items[i].Number != i+1 || review.Items[i].CorrectAnswer != "right" {
			t.Fatalf("item %d malformed: %+v", i+1, review.Items[i])
		}
	}
	if review.Items[1].YourAnswer != "wrong c" || review.Items[1].Correct {
		t.Fatalf("unexpected wrong answer item %+v", review.Items[1])
	}
	if review.Attempted != 2 || review.Accuracy != 50 {
		t.Fatalf("expected 1 of 2 answered at 50%%, got %+v", review)
	}
}

func TestBuildReviewNothingAnswered(t *testing.T) {
	review := BuildReview(domain.Result{Questions: testQuestions(3), Answers: make([]domain.AnswerSlot, 3)})
	if review.Accuracy != 0 || review.Attempted != 0 {
		t.Fatalf("expected zero accuracy, got %+v", review)
	}
	for _, item := range review.Items {
		if item.Status != domain.ReviewUnanswered || item.YourAnswer != "" {
			t.Fatalf("unexpected item %+v", item)
		}
	}
}
