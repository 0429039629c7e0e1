package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionLoader produces the questions for a new session.
type QuestionLoader interface {
	Load(ctx context.Context, difficulty domain.Difficulty, count int) ([]domain.Question, error)
}

// ResultStore keeps finished sessions for the results screen.
type ResultStore interface {
	Set(ctx context.Context, sessionID string, result domain.Result) error
	Get(ctx context.Context, sessionID string) (domain.Result, error)
	Remove(ctx context.Context, sessionID string) error
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions  SessionRepository
	loader    QuestionLoader
	results   ResultStore
	log       logrus.FieldLogger
	newID     func() string
	newTicker TickerFunc
	now       func() time.Time
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithTickerFunc replaces the wall-clock ticker used by session countdowns.
func WithTickerFunc(f TickerFunc) ServiceOption {
	return func(s *QuizService) { s.newTicker = f }
}

// WithIDGenerator replaces the UUID session id generator.
func WithIDGenerator(f func() string) ServiceOption {
	return func(s *QuizService) { s.newID = f }
}

// WithServiceClock sets the timestamp source for new sessions.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(sessions SessionRepository, loader QuestionLoader, results ResultStore, log logrus.FieldLogger, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:  sessions,
		loader:    loader,
		results:   results,
		log:       log,
		newID:     uuid.NewString,
		newTicker: NewStdTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads questions for difficulty and begins a new session. When loading fails no session
// is created and the returned view carries the error status.
func (s *QuizService) Start(ctx context.Context, difficulty domain.Difficulty) (domain.SessionView, error) {
	log := s.log.WithField("difficulty", difficulty)

	questions, err := s.loader.Load(ctx, difficulty, domain.SampleSize)
	if err != nil {
		log.WithError(err).Warn("quiz could not start")
		return domain.SessionView{Status: domain.StatusError, Difficulty: difficulty}, err
	}

	session := NewSession(s.newID(), difficulty, questions,
		WithClock(s.now),
		WithTimer(NewTimer(TickInterval, s.newTicker)),
	)
	s.sessions.Save(session)

	view, err := session.Begin()
	if err != nil {
		s.sessions.Delete(session.ID())
		session.Close()
		return view, err
	}
	log.WithFields(logrus.Fields{"session": session.ID(), "questions": len(questions)}).Info("quiz started")
	return view, nil
}

// SelectAnswer records an answer for the current question.
func (s *QuizService) SelectAnswer(ctx context.Context, sessionID string, option int) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, func(session *Session) (domain.SessionView, error) {
		return session.SelectAnswer(option)
	})
}

// Skip skips the current question.
func (s *QuizService) Skip(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, (*Session).Skip)
}

// Advance moves forward, finishing the quiz from the last question.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, (*Session).Advance)
}

// GoBack returns to the previous question.
func (s *QuizService) GoBack(ctx context.Context, sessionID string) (domain.SessionView, error) {
	return s.apply(ctx, sessionID, (*Session).GoBack)
}

// View returns the live session snapshot.
func (s *QuizService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives session snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Review builds the results screen for a finished session.
func (s *QuizService) Review(ctx context.Context, sessionID string) (domain.Review, error) {
	result, err := s.results.Get(ctx, sessionID)
	if err != nil {
		return domain.Review{}, err
	}
	return BuildReview(result), nil
}

// Restart clears the stored result so the next quiz starts from a clean slate.
func (s *QuizService) Restart(ctx context.Context, sessionID string) error {
	if err := s.results.Remove(ctx, sessionID); err != nil {
		return err
	}
	s.log.WithField("session", sessionID).Debug("result cleared")
	return nil
}

// Abandon stops a live session and forgets it. Unknown ids are ignored.
func (s *QuizService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.log.WithField("session", sessionID).Debug("quiz abandoned")
}

func (s *QuizService) apply(ctx context.Context, sessionID string, command func(*Session) (domain.SessionView, error)) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	view, err := command(session)
	if err != nil {
		return view, err
	}
	if view.Status == domain.StatusFinished {
		if err := s.complete(ctx, session); err != nil {
			return view, err
		}
	}
	return view, nil
}

// complete hands the finished session over to the result store.
func (s *QuizService) complete(ctx context.Context, session *Session) error {
	result, ok := session.Result()
	if !ok {
		return nil
	}
	log := s.log.WithFields(logrus.Fields{"session": session.ID(), "difficulty": session.Difficulty()})
	// A finished session takes no further commands, so it leaves the live store either way.
	s.sessions.Delete(session.ID())
	session.Close()
	if err := s.results.Set(ctx, session.ID(), result); err != nil {
		log.WithError(err).Error("store result")
		return err
	}
	log.WithFields(logrus.Fields{
		"score":    result.Score,
		"total":    result.TotalQuestions,
		"duration": result.FinishedAt.Sub(session.CreatedAt()).Round(time.Second),
	}).Info("quiz finished")
	return nil
}
