package domain

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects the question bucket and the per-question time limit.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultDifficulty is used when the client does not pick one.
const DefaultDifficulty = DifficultyMedium

// Difficulties lists every supported difficulty in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty accepts easy, medium or hard (case-insensitive). Empty input yields the default.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case "":
		return DefaultDifficulty, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, raw)
	}
}

// TimeLimitSeconds returns the countdown each question starts with.
func (d Difficulty) TimeLimitSeconds() int {
	switch d {
	case DifficultyEasy:
		return 45
	case DifficultyHard:
		return 15
	default:
		return 30
	}
}

// TimeLimit is TimeLimitSeconds as a duration.
func (d Difficulty) TimeLimit() time.Duration {
	return time.Duration(d.TimeLimitSeconds()) * time.Second
}
