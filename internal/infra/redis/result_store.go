package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/domain"
)

// ResultStore keeps finished results as JSON blobs: SET quiz:result:{sessionID} {...} EX ttl
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func (s *ResultStore) Set(ctx context.Context, sessionID string, result domain.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

func (s *ResultStore) Get(ctx context.Context, sessionID string) (domain.Result, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("load result: %w", err)
	}
	var result domain.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}

func (s *ResultStore) Remove(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("remove result: %w", err)
	}
	return nil
}

func (s *ResultStore) key(sessionID string) string {
	return "quiz:result:" + sessionID
}
