package session

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

func testLogger() *bolt.Logger {
	return bolt.New(bolt.NewConsoleHandler(io.Discard))
}

func newTestManager(t *testing.T, questions int, idle time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), questions, idle, 10, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestManager_StartServesFirstQuestion(t *testing.T) {
	m := newTestManager(t, 3, time.Hour)

	s, err := m.StartSession("u1", "Data Scientist")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if s.State != StateInProgress {
		t.Errorf("state = %q, want in_progress", s.State)
	}
	if s.SessionID == "" {
		t.Error("expected a session ID")
	}
	if q := s.PendingQuestion(); q == "" {
		t.Error("expected a pending first question")
	} else if !strings.Contains(q, "Data Scientist") {
		t.Errorf("first question %q does not mention the target role", q)
	}
}

func TestManager_CompletionAtQuestionCount(t *testing.T) {
	m := newTestManager(t, 3, time.Hour)

	s, err := m.StartSession("u1", "Data Scientist")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		next, completed, err := m.RecordAnswer(s.SessionID, "my answer")
		if err != nil {
			t.Fatalf("RecordAnswer %d failed: %v", i, err)
		}
		if completed {
			t.Fatalf("completed after %d answers, want 3", i+1)
		}
		if next == "" {
			t.Fatalf("expected a next question after answer %d", i+1)
		}
	}

	next, completed, err := m.RecordAnswer(s.SessionID, "final answer")
	if err != nil {
		t.Fatalf("final RecordAnswer failed: %v", err)
	}
	if !completed || next != "" {
		t.Errorf("completed = %v next = %q, want completed with no question", completed, next)
	}
	if cur := m.CurrentSession("u1"); cur != nil {
		t.Errorf("expected no current session after completion, got %s", cur.SessionID)
	}
}

func TestManager_StopSignalCompletes(t *testing.T) {
	m := newTestManager(t, 5, time.Hour)

	s, err := m.StartSession("u1", "engineer")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	_, completed, err := m.RecordAnswer(s.SessionID, "stop")
	if err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if !completed {
		t.Error("stop signal should complete the session")
	}
	if _, _, err := m.RecordAnswer(s.SessionID, "more"); err != ErrSessionClosed {
		t.Errorf("answer after completion: err = %v, want ErrSessionClosed", err)
	}
}

func TestManager_NewSessionAbandonsActive(t *testing.T) {
	m := newTestManager(t, 5, time.Hour)

	first, err := m.StartSession("u1", "engineer")
	if err != nil {
		t.Fatalf("first StartSession failed: %v", err)
	}
	second, err := m.StartSession("u1", "analyst")
	if err != nil {
		t.Fatalf("second StartSession failed: %v", err)
	}

	sessions, err := m.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	states := make(map[string]State, len(sessions))
	for _, s := range sessions {
		states[s.SessionID] = s.State
	}
	if states[first.SessionID] != StateAbandoned {
		t.Errorf("first session state = %q, want abandoned", states[first.SessionID])
	}
	if states[second.SessionID] != StateInProgress {
		t.Errorf("second session state = %q, want in_progress", states[second.SessionID])
	}
	if cur := m.CurrentSession("u1"); cur == nil || cur.SessionID != second.SessionID {
		t.Errorf("current session should be the second one")
	}
}

func TestManager_IdleTimeoutAbandons(t *testing.T) {
	m := newTestManager(t, 5, 10*time.Millisecond)

	s, err := m.StartSession("u1", "engineer")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	if cur := m.CurrentSession("u1"); cur != nil {
		t.Fatalf("expected idle session to be abandoned, got %s", cur.SessionID)
	}
	reloaded, err := m.load(s.SessionID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if reloaded.State != StateAbandoned {
		t.Errorf("state = %q, want abandoned", reloaded.State)
	}
}

func TestManager_IndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, 5, time.Hour, 10, testLogger())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	s, err := m.StartSession("u1", "engineer")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	restarted, err := NewManager(dir, 5, time.Hour, 10, testLogger())
	if err != nil {
		t.Fatalf("restart NewManager failed: %v", err)
	}
	cur := restarted.CurrentSession("u1")
	if cur == nil || cur.SessionID != s.SessionID {
		t.Errorf("active session not recovered after restart")
	}
}

func TestManager_AttachFeedback(t *testing.T) {
	m := newTestManager(t, 5, time.Hour)

	s, err := m.StartSession("u1", "engineer")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, _, err := m.RecordAnswer(s.SessionID, "my answer"); err != nil {
		t.Fatalf("RecordAnswer failed: %v", err)
	}
	if err := m.AttachFeedback(s.SessionID, "good structure, add metrics"); err != nil {
		t.Fatalf("AttachFeedback failed: %v", err)
	}

	reloaded, err := m.load(s.SessionID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if reloaded.Turns[0].Feedback != "good structure, add metrics" {
		t.Errorf("feedback = %q, not persisted on the answered turn", reloaded.Turns[0].Feedback)
	}
}

func TestManager_RecordAnswerUnknownSession(t *testing.T) {
	m := newTestManager(t, 5, time.Hour)
	if _, _, err := m.RecordAnswer("no-such-id", "hello"); err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestIsStopSignal(t *testing.T) {
	for _, text := range []string{"stop", "  STOP  ", "quit", "End Interview"} {
		if !IsStopSignal(text) {
			t.Errorf("IsStopSignal(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"stop asking me that", "I can't quit now", ""} {
		if IsStopSignal(text) {
			t.Errorf("IsStopSignal(%q) = true, want false", text)
		}
	}
}
