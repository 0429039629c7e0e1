package trivia

import (
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Intn is the single random primitive the shuffles need.
type Intn interface {
	Intn(n int) int
}

// Shuffle returns a uniformly permuted copy of in using a backward Fisher-Yates pass.
// The input slice is never modified.
func Shuffle[T any](rng Intn, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Randomizer normalizes raw trivia records and samples session questions.
// It is safe for concurrent use.
type Randomizer struct {
	mu  sync.Mutex
	src Intn
}

// NewRandomizer seeds a randomizer from the wall clock.
func NewRandomizer() *Randomizer {
	return NewSeededRandomizer(time.Now().UnixNano())
}

// NewSeededRandomizer is deterministic for a given seed.
func NewSeededRandomizer(seed int64) *Randomizer {
	return NewRandomizerFrom(rand.New(rand.NewSource(seed))) // #nosec G404
}

// NewRandomizerFrom wraps an arbitrary source, mostly for tests that script the choices.
func NewRandomizerFrom(src Intn) *Randomizer {
	return &Randomizer{src: src}
}

func (r *Randomizer) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

// BuildQuestion decodes a raw record, shuffles its options and locates the correct one.
// position is the 1-based place of the record in the fetched pool.
func (r *Randomizer) BuildQuestion(raw domain.RawQuestion, position int) domain.Question {
	text, correct := raw.Question, raw.CorrectAnswer
	incorrect := raw.IncorrectAnswers
	if raw.Encoded {
		text, correct = Decode(text), Decode(correct)
		incorrect = make([]string, len(raw.IncorrectAnswers))
		for i, a := range raw.IncorrectAnswers {
			incorrect[i] = Decode(a)
		}
	}

	all := make([]string, 0, len(incorrect)+1)
	all = append(all, correct)
	all = append(all, incorrect...)
	options := Shuffle[string](r, all)

	// First match wins; an incorrect answer equal to the correct text is not disambiguated.
	correctIndex := -1
	for i, opt := range options {
		if opt == correct {
			correctIndex = i
			break
		}
	}

	category := raw.Category
	if raw.Encoded {
		category = Decode(category)
	}
	return domain.Question{
		ID:           position,
		Text:         text,
		Options:      options,
		CorrectIndex: correctIndex,
		Category:     category,
		Difficulty:   raw.Difficulty,
	}
}

// BuildAll normalizes a whole pool, numbering questions by pool position.
func (r *Randomizer) BuildAll(raws []domain.RawQuestion) []domain.Question {
	out := make([]domain.Question, 0, len(raws))
	for i, raw := range raws {
		out = append(out, r.BuildQuestion(raw, i+1))
	}
	return out
}

// Sample shuffles the whole pool and keeps the first count questions. The same pass both picks
// the subset and fixes the presentation order.
func (r *Randomizer) Sample(questions []domain.Question, count int) []domain.Question {
	shuffled := Shuffle[domain.Question](r, questions)
	if count >= 0 && count < len(shuffled) {
		shuffled = shuffled[:count]
	}
	return shuffled
}
