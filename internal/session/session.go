// Package session tracks multi-turn interview practice sessions as a small
// persisted state machine. Each session lives in its own JSON file and every
// state transition is written synchronously, so a crash never loses more
// than the turn in flight.
package session

import (
	"strings"
	"time"
)

// State is the lifecycle phase of an interview session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateAbandoned  State = "abandoned"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// SessionTurn is one question/answer/feedback cycle. Answer and Feedback are
// empty while the question is still outstanding.
type SessionTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// InterviewSession is the durable record of one practice run.
type InterviewSession struct {
	SessionID  string        `json:"session_id"`
	UserID     string        `json:"user_id"`
	TargetRole string        `json:"target_role"`
	Turns      []SessionTurn `json:"turns,omitempty"`
	State      State         `json:"state"`
	StartedAt  time.Time     `json:"started_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Answered counts the turns that already carry an answer.
func (s *InterviewSession) Answered() int {
	n := 0
	for _, t := range s.Turns {
		if t.Answer != "" {
			n++
		}
	}
	return n
}

// PendingQuestion returns the outstanding question, or "" when every served
// question has been answered.
func (s *InterviewSession) PendingQuestion() string {
	if n := len(s.Turns); n > 0 && s.Turns[n-1].Answer == "" {
		return s.Turns[n-1].Question
	}
	return ""
}

func (s *InterviewSession) touch() {
	s.UpdatedAt = time.Now()
}

// stopPhrases end an in-progress session when sent as the whole message.
var stopPhrases = map[string]struct{}{
	"stop":           {},
	"quit":           {},
	"exit":           {},
	"done":           {},
	"end interview":  {},
	"stop interview": {},
	"end session":    {},
}

// IsStopSignal reports whether text is a request to end the session.
func IsStopSignal(text string) bool {
	_, ok := stopPhrases[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
