package source

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"trivia-quiz-service/internal/domain"
)

//go:embed offline_questions.json
var defaultOfflineDocument []byte

// Offline serves questions from a static document keyed by difficulty:
//
//	{"easy": [{"question": ..., "correct_answer": ..., "incorrect_answers": [...]}], ...}
//
// Text in the document is already plain, so records are not decoded.
type Offline struct {
	document []byte
}

// NewOffline wraps an in-memory document. It is parsed on every load so a broken document
// surfaces as a malformed-response failure at session start.
func NewOffline(document []byte) *Offline {
	return &Offline{document: document}
}

// DefaultOffline serves the bundled question document.
func DefaultOffline() *Offline {
	return NewOffline(defaultOfflineDocument)
}

// NewOfflineFile reads the document from path.
func NewOfflineFile(path string) (*Offline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read offline questions: %w", err)
	}
	return NewOffline(data), nil
}

// Document returns the raw buckets, used when seeding other stores.
func (o *Offline) Document() (map[domain.Difficulty][]domain.RawQuestion, error) {
	var doc map[domain.Difficulty][]domain.RawQuestion
	if err := json.Unmarshal(o.document, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode offline document: %v", domain.ErrMalformedResponse, err)
	}
	return doc, nil
}

// LoadPool returns the whole bucket for difficulty; amount is ignored because the bucket is
// already the full local pool.
func (o *Offline) LoadPool(_ context.Context, difficulty domain.Difficulty, _ int) ([]domain.RawQuestion, error) {
	doc, err := o.Document()
	if err != nil {
		return nil, err
	}
	pool, ok := doc[difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: offline document has no %q bucket", domain.ErrMalformedResponse, difficulty)
	}
	if err := domain.ValidatePool(pool); err != nil {
		return nil, err
	}
	for i := range pool {
		if pool[i].Difficulty == "" {
			pool[i].Difficulty = string(difficulty)
		}
	}
	return pool, nil
}
