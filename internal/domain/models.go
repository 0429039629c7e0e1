package domain

import "time"

// SampleSize is the number of questions presented in one session, regardless of difficulty.
const SampleSize = 10

// TimeoutNotice is shown while the current question is locked after its countdown expired.
const TimeoutNotice = "Time's up for this question. Please proceed to the next question."

// RawQuestion is a trivia record as delivered by a question source, before normalization.
type RawQuestion struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	// Encoded marks text that still carries HTML entities.
	Encoded bool `json:"-"`
}

// Question is the normalized multiple-choice question used by a session.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct"`
	Category     string   `json:"category,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// CorrectText returns the text of the correct option.
func (q Question) CorrectText() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// QuestionView is what a client sees while a question is live; it never carries the answer.
type QuestionView struct {
	ID       int      `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category,omitempty"`
}

// SlotState distinguishes a question never answered from one explicitly skipped.
type SlotState string

const (
	SlotUnvisited SlotState = "unvisited"
	SlotSkipped   SlotState = "skipped"
	SlotAnswered  SlotState = "answered"
)

// AnswerSlot records what happened to one question. Option is meaningful only when answered.
type AnswerSlot struct {
	State  SlotState `json:"state"`
	Option int       `json:"option"`
}

// Unvisited reports whether nothing has been recorded for the slot yet.
func (a AnswerSlot) Unvisited() bool { return a.State == "" || a.State == SlotUnvisited }

// Answered returns the chosen option and whether one was chosen.
func (a AnswerSlot) Answered() (int, bool) {
	if a.State != SlotAnswered {
		return 0, false
	}
	return a.Option, true
}

// Status is the lifecycle state of a quiz session.
type Status string

const (
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
	StatusError    Status = "error"
)

// SessionView is the snapshot pushed to clients after every change.
type SessionView struct {
	SessionID        string        `json:"sessionId"`
	Status           Status        `json:"status"`
	Difficulty       Difficulty    `json:"difficulty"`
	Index            int           `json:"index"`
	Total            int           `json:"total"`
	Question         *QuestionView `json:"question,omitempty"`
	Score            int           `json:"score"`
	Answer           AnswerSlot    `json:"answer"`
	RemainingSeconds int           `json:"remainingSeconds"`
	TimedOut         bool          `json:"timedOut"`
	Locked           bool          `json:"locked"`
	CanGoBack        bool          `json:"canGoBack"`
	IsLast           bool          `json:"isLast"`
	Notice           string        `json:"notice,omitempty"`
	Result           *Result       `json:"result,omitempty"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Result is the immutable record handed from a finished session to the review screen.
type Result struct {
	SessionID      string       `json:"sessionId"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Answers        []AnswerSlot `json:"answers"`
	Questions      []Question   `json:"questions"`
	Difficulty     Difficulty   `json:"difficulty"`
	TimedOut       []bool       `json:"timedOut"`
	FinishedAt     time.Time    `json:"finishedAt"`
}

// ReviewStatus classifies one reviewed question.
type ReviewStatus string

const (
	ReviewCorrect    ReviewStatus = "correct"
	ReviewIncorrect  ReviewStatus = "incorrect"
	ReviewSkipped    ReviewStatus = "skipped"
	ReviewTimedOut   ReviewStatus = "timed_out"
	ReviewUnanswered ReviewStatus = "unanswered"
)

// ReviewItem is one line of the answers review.
type ReviewItem struct {
	Number        int          `json:"number"`
	Question      string       `json:"question"`
	YourAnswer    string       `json:"yourAnswer,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Correct       bool         `json:"correct"`
	Status        ReviewStatus `json:"status"`
}

// Review is the results screen model built from a Result.
type Review struct {
	SessionID      string       `json:"sessionId"`
	Difficulty     Difficulty   `json:"difficulty"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Attempted      int          `json:"attempted"`
	Accuracy       int          `json:"accuracy"` // percent of attempted questions answered correctly
	Items          []ReviewItem `json:"items"`
}
