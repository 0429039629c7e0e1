package domain

import "fmt"

// ValidatePool rejects empty pools and records that cannot form a multiple-choice question.
// Every question source runs its pool through it before handing records to the builder.
func ValidatePool(pool []RawQuestion) error {
	if len(pool) == 0 {
		return fmt.Errorf("%w: empty question list", ErrMalformedResponse)
	}
	for i, raw := range pool {
		switch {
		case raw.Question == "":
			return fmt.Errorf("%w: record %d has no question", ErrMalformedResponse, i)
		case raw.CorrectAnswer == "":
			return fmt.Errorf("%w: record %d has no correct answer", ErrMalformedResponse, i)
		case len(raw.IncorrectAnswers) == 0:
			return fmt.Errorf("%w: record %d has no incorrect answers", ErrMalformedResponse, i)
		}
	}
	return nil
}
