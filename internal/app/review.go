package app

import (
	"math"

	"trivia-quiz-service/internal/domain"
)

// BuildReview renders a finished session's per-question summary. Accuracy is measured against
// answered questions only, so skipped and timed-out questions do not lower it.
func BuildReview(result domain.Result) domain.Review {
	review := domain.Review{
		SessionID:      result.SessionID,
		Difficulty:     result.Difficulty,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Items:          make([]domain.ReviewItem, 0, len(result.Questions)),
	}

	for i, q := range result.Questions {
		item := domain.ReviewItem{
			Number:        i + 1,
			Question:      q.Text,
			CorrectAnswer: q.CorrectText(),
		}
		var slot domain.AnswerSlot
		if i < len(result.Answers) {
			slot = result.Answers[i]
		}
		timedOut := i < len(result.TimedOut) && result.TimedOut[i]

		if option, ok := slot.Answered(); ok {
			review.Attempted++
			if option >= 0 && option < len(q.Options) {
				item.YourAnswer = q.Options[option]
			}
			item.Correct = option == q.CorrectIndex
			if item.Correct {
				item.Status = domain.ReviewCorrect
			} else {
				item.Status = domain.ReviewIncorrect
			}
		} else {
			switch {
			case slot.State == domain.SlotSkipped:
				item.Status = domain.ReviewSkipped
			case timedOut:
				item.Status = domain.ReviewTimedOut
			default:
				item.Status = domain.ReviewUnanswered
			}
		}
		review.Items = append(review.Items, item)
	}

	if review.Attempted > 0 {
		review.Accuracy = int(math.Round(100 * float64(review.Score) / float64(review.Attempted)))
	}
	return review
}
