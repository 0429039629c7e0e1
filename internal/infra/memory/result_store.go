package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// ResultStore keeps finished results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]domain.Result)}
}

func (s *ResultStore) Set(_ context.Context, sessionID string, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[sessionID] = result
	return nil
}

func (s *ResultStore) Get(_ context.Context, sessionID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[sessionID]
	if !ok {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return result, nil
}

// Remove clears a result; removing an unknown id is not an error.
func (s *ResultStore) Remove(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, sessionID)
	return nil
}
