package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz-service/internal/domain"
)

// BankLoader loads question buckets stored as JSONB in Postgres, one row per difficulty.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

// LoadPool returns the whole bucket; amount is ignored like the offline document.
func (l *BankLoader) LoadPool(ctx context.Context, difficulty domain.Difficulty, _ int) ([]domain.RawQuestion, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE difficulty=$1`, string(difficulty)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no %q question bank", domain.ErrMalformedResponse, difficulty)
	}
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	return decodeBank(difficulty, raw)
}

// decodeBank parses a JSONB bucket and fills in the difficulty for records that omit it.
func decodeBank(difficulty domain.Difficulty, raw []byte) ([]domain.RawQuestion, error) {
	var pool []domain.RawQuestion
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, fmt.Errorf("%w: unmarshal %q question bank: %v", domain.ErrMalformedResponse, difficulty, err)
	}
	if err := domain.ValidatePool(pool); err != nil {
		return nil, fmt.Errorf("%q question bank: %w", difficulty, err)
	}
	for i := range pool {
		if pool[i].Difficulty == "" {
			pool[i].Difficulty = string(difficulty)
		}
	}
	return pool, nil
}
