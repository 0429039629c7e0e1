package app

import (
	"fmt"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Session is the state machine for one quiz attempt. Commands and countdown ticks serialize on
// mu, so each event runs to completion before the next one is applied.
type Session struct {
	id         string
	difficulty domain.Difficulty
	questions  []domain.Question
	createdAt  time.Time
	now        func() time.Time
	timer      *Timer

	mu          sync.RWMutex
	status      domain.Status
	closed      bool
	current     int
	score       int
	answers     []domain.AnswerSlot
	remaining   []int
	timedOut    []bool
	token       uint64
	result      *domain.Result
	subscribers map[chan domain.SessionView]struct{}
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock sets the timestamp source, for deterministic tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithTimer replaces the default one-second countdown.
func WithTimer(t *Timer) SessionOption {
	return func(s *Session) { s.timer = t }
}

// NewSession creates a ready session over a fixed question list. Every question starts with the
// difficulty's full time limit.
func NewSession(id string, difficulty domain.Difficulty, questions []domain.Question, opts ...SessionOption) *Session {
	s := &Session{
		id:          id,
		difficulty:  difficulty,
		questions:   append([]domain.Question(nil), questions...),
		now:         time.Now,
		status:      domain.StatusReady,
		answers:     make([]domain.AnswerSlot, len(questions)),
		remaining:   make([]int, len(questions)),
		timedOut:    make([]bool, len(questions)),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timer == nil {
		s.timer = NewTimer(TickInterval, nil)
	}
	s.createdAt = s.now()
	limit := difficulty.TimeLimitSeconds()
	for i := range s.answers {
		s.answers[i] = domain.AnswerSlot{State: domain.SlotUnvisited}
		s.remaining[i] = limit
	}
	return s
}

func (s *Session) ID() string                    { return s.id }
func (s *Session) Difficulty() domain.Difficulty { return s.difficulty }
func (s *Session) CreatedAt() time.Time          { return s.createdAt }

// Begin activates a ready session and starts the countdown on the first question.
func (s *Session) Begin() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.status != domain.StatusReady {
		return s.viewLocked(), reject("session is %s", s.status)
	}
	if len(s.questions) == 0 {
		return s.viewLocked(), reject("session has no questions")
	}
	s.status = domain.StatusActive
	s.retargetTimerLocked()
	return s.broadcastLocked(), nil
}

// SelectAnswer records option for the current question. Only the first answer counts: answered,
// skipped and timed-out questions reject further input.
func (s *Session) SelectAnswer(option int) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return s.viewLocked(), err
	}
	i := s.current
	q := s.questions[i]
	switch {
	case option < 0 || option >= len(q.Options):
		return s.viewLocked(), reject("option %d out of range", option)
	case !s.answers[i].Unvisited():
		return s.viewLocked(), reject("question %d already %s", i+1, s.answers[i].State)
	case s.timedOut[i]:
		return s.viewLocked(), reject("question %d timed out", i+1)
	}

	s.answers[i] = domain.AnswerSlot{State: domain.SlotAnswered, Option: option}
	if option == q.CorrectIndex {
		s.score++
	}
	s.retargetTimerLocked()
	return s.broadcastLocked(), nil
}

// Skip marks the current question as skipped and moves on. Timed-out questions may be skipped;
// answered ones may not.
func (s *Session) Skip() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return s.viewLocked(), err
	}
	i := s.current
	if !s.answers[i].Unvisited() {
		return s.viewLocked(), reject("question %d already %s", i+1, s.answers[i].State)
	}
	s.answers[i] = domain.AnswerSlot{State: domain.SlotSkipped}
	return s.advanceLocked(), nil
}

// Advance moves to the next question, or finishes the session from the last one.
func (s *Session) Advance() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return s.viewLocked(), err
	}
	return s.advanceLocked(), nil
}

// GoBack revisits the previous question with its saved answer, time and lock state.
func (s *Session) GoBack() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return s.viewLocked(), err
	}
	if s.current == 0 {
		return s.viewLocked(), reject("already at the first question")
	}
	s.current--
	s.retargetTimerLocked()
	return s.broadcastLocked(), nil
}

// OnTimeExpired locks the current question. The session stays on it until the user navigates.
func (s *Session) OnTimeExpired() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireActiveLocked(); err != nil {
		return s.viewLocked(), err
	}
	i := s.current
	if !s.answers[i].Unvisited() || s.timedOut[i] {
		return s.viewLocked(), reject("question %d is already locked", i+1)
	}
	s.remaining[i] = 0
	s.expireLocked()
	return s.broadcastLocked(), nil
}

// View returns the current snapshot.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Result returns the terminal snapshot once the session has finished.
func (s *Session) Result() (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return domain.Result{}, false
	}
	return *s.result, true
}

// Close abandons the session: the countdown stops and subscriber channels are closed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.token++
	s.timer.Stop()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// tick is the countdown callback. Ticks issued for an older token belong to a countdown that
// has since been replaced and are dropped.
func (s *Session) tick(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token || s.closed || s.status != domain.StatusActive {
		return false
	}
	i := s.current
	if !s.runnableLocked(i) {
		return false
	}
	s.remaining[i]--
	if s.remaining[i] <= 0 {
		s.remaining[i] = 0
		s.expireLocked()
		s.broadcastLocked()
		return false
	}
	s.broadcastLocked()
	return true
}

func (s *Session) requireActiveLocked() error {
	if s.closed {
		return reject("session closed")
	}
	if s.status != domain.StatusActive {
		return reject("session is %s", s.status)
	}
	return nil
}

func (s *Session) advanceLocked() domain.SessionView {
	// remaining[current] is written on every tick, so it is already saved for a later revisit.
	if s.current == len(s.questions)-1 {
		s.finishLocked()
		return s.broadcastLocked()
	}
	s.current++
	s.retargetTimerLocked()
	return s.broadcastLocked()
}

func (s *Session) expireLocked() {
	s.timedOut[s.current] = true
	s.token++
	s.timer.Stop()
}

func (s *Session) finishLocked() {
	s.status = domain.StatusFinished
	s.token++
	s.timer.Stop()
	s.result = &domain.Result{
		SessionID:      s.id,
		Score:          s.score,
		TotalQuestions: len(s.questions),
		Answers:        append([]domain.AnswerSlot(nil), s.answers...),
		Questions:      append([]domain.Question(nil), s.questions...),
		Difficulty:     s.difficulty,
		TimedOut:       append([]bool(nil), s.timedOut...),
		FinishedAt:     s.now(),
	}
}

// runnableLocked reports whether question i should be counting down.
func (s *Session) runnableLocked(i int) bool {
	return s.answers[i].Unvisited() && !s.timedOut[i] && s.remaining[i] > 0
}

// retargetTimerLocked points the countdown at the current question, replacing any earlier one.
func (s *Session) retargetTimerLocked() {
	s.token++
	if s.closed || s.status != domain.StatusActive || !s.runnableLocked(s.current) {
		s.timer.Stop()
		return
	}
	token := s.token
	s.timer.Start(func() bool { return s.tick(token) })
}

func (s *Session) viewLocked() domain.SessionView {
	v := domain.SessionView{
		SessionID:  s.id,
		Status:     s.status,
		Difficulty: s.difficulty,
		Index:      s.current,
		Total:      len(s.questions),
		Score:      s.score,
		UpdatedAt:  s.now(),
	}
	if s.result != nil {
		result := *s.result
		v.Result = &result
		return v
	}
	if len(s.questions) == 0 {
		return v
	}
	i := s.current
	q := s.questions[i]
	v.Question = &domain.QuestionView{
		ID:       q.ID,
		Text:     q.Text,
		Options:  append([]string(nil), q.Options...),
		Category: q.Category,
	}
	v.Answer = s.answers[i]
	v.RemainingSeconds = s.remaining[i]
	v.TimedOut = s.timedOut[i]
	v.Locked = !s.answers[i].Unvisited() || s.timedOut[i]
	v.CanGoBack = i > 0
	v.IsLast = i == len(s.questions)-1
	if s.timedOut[i] {
		v.Notice = domain.TimeoutNotice
	}
	return v
}

func (s *Session) subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	initial := s.viewLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionView {
	v := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// Slow reader: drop its oldest update so the newest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, fmt.Sprintf(format, args...))
}
