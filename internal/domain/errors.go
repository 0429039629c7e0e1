package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionNotFound is returned when a quiz session is unknown or already finished.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrResultNotFound is returned when no finished result is stored for a session.
	ErrResultNotFound = errors.New("quiz result not found")
	// ErrUnknownDifficulty rejects difficulties other than easy, medium and hard.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	// ErrNetwork wraps transport failures while talking to a question source.
	ErrNetwork = errors.New("question source unreachable")
	// ErrMalformedResponse marks a source payload that lacks the expected shape.
	ErrMalformedResponse = errors.New("malformed question source response")
	// ErrSource is matched by SourceError once every question source has failed.
	ErrSource = errors.New("no question source available")
	// ErrInvalidTransition marks a session command that is not allowed in the current state.
	// The session is left untouched.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// HTTPError is a non-success status from a question source.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("question source %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// SourceError reports that both the primary and the secondary source failed.
type SourceError struct {
	Difficulty Difficulty
	Primary    error
	Secondary  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("load %s questions: primary: %v; secondary: %v", e.Difficulty, e.Primary, e.Secondary)
}

// Unwrap exposes ErrSource and both underlying causes to errors.Is / errors.As.
func (e *SourceError) Unwrap() []error {
	errs := []error{ErrSource}
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Secondary != nil {
		errs = append(errs, e.Secondary)
	}
	return errs
}
