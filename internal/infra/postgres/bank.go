package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"trivia-quiz-service/internal/domain"
)

// QuestionBank is the bun model for one row of question_banks.
type QuestionBank struct {
	bun.BaseModel `bun:"table:question_banks"`

	Difficulty string               `bun:"difficulty,pk"`
	Data       []domain.RawQuestion `bun:"data,type:jsonb,notnull"`
	UpdatedAt  time.Time            `bun:"updated_at,notnull,default:current_timestamp"`
}

// SeedBanks upserts one row per difficulty bucket.
func SeedBanks(ctx context.Context, db bun.IDB, buckets map[domain.Difficulty][]domain.RawQuestion) (int, error) {
	rows := make([]QuestionBank, 0, len(buckets))
	for _, d := range domain.Difficulties {
		if pool, ok := buckets[d]; ok && len(pool) > 0 {
			rows = append(rows, QuestionBank{Difficulty: string(d), Data: pool, UpdatedAt: time.Now().UTC()})
		}
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: no question buckets to seed", domain.ErrMalformedResponse)
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (difficulty) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed question banks: %w", err)
	}
	return len(rows), nil
}
