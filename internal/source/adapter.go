package source

import (
	"context"

	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/trivia"
)

// DefaultOverFetch is how many raw records are requested so sampling has room to pick from.
const DefaultOverFetch = 50

// PoolLoader returns the raw question pool for a difficulty.
type PoolLoader interface {
	LoadPool(ctx context.Context, difficulty domain.Difficulty, amount int) ([]domain.RawQuestion, error)
}

// Adapter loads session questions from a primary source and falls back to a secondary one.
type Adapter struct {
	primary    PoolLoader
	secondary  PoolLoader
	randomizer *trivia.Randomizer
	overFetch  int
	log        logrus.FieldLogger
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithOverFetch overrides how many records are requested from the sources.
func WithOverFetch(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.overFetch = n
		}
	}
}

// WithRandomizer replaces the clock-seeded randomizer.
func WithRandomizer(r *trivia.Randomizer) Option {
	return func(a *Adapter) { a.randomizer = r }
}

func NewAdapter(primary, secondary PoolLoader, log logrus.FieldLogger, opts ...Option) *Adapter {
	a := &Adapter{
		primary:    primary,
		secondary:  secondary,
		randomizer: trivia.NewRandomizer(),
		overFetch:  DefaultOverFetch,
		log:        log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load returns count normalized questions. Any primary failure triggers the secondary source;
// when both fail the error is a *domain.SourceError.
func (a *Adapter) Load(ctx context.Context, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	log := a.log.WithField("difficulty", difficulty)

	raws, primaryErr := a.primary.LoadPool(ctx, difficulty, a.overFetch)
	if primaryErr != nil {
		log.WithError(primaryErr).Warn("primary question source failed, using secondary")

		var secondaryErr error
		raws, secondaryErr = a.secondary.LoadPool(ctx, difficulty, a.overFetch)
		if secondaryErr != nil {
			err := &domain.SourceError{Difficulty: difficulty, Primary: primaryErr, Secondary: secondaryErr}
			log.WithError(err).Error("question sources exhausted")
			return nil, err
		}
		log = log.WithField("source", "secondary")
	} else {
		log = log.WithField("source", "primary")
	}

	questions := a.randomizer.Sample(a.randomizer.BuildAll(raws), count)
	log.WithField("questions", len(questions)).Debug("questions loaded")
	return questions, nil
}
