package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/careermate/careermate/internal/dispatch"
)

func echoHandler(ctx context.Context, userID, text string) dispatch.Reply {
	return dispatch.Reply{Text: "echo: " + text}
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestModel_InitialView(t *testing.T) {
	m := NewModel("u1", echoHandler)
	if !strings.Contains(m.View(), "Starting") {
		t.Errorf("pre-size view = %q", m.View())
	}

	m = sized(m)
	if !m.Ready {
		t.Fatal("model should be ready after window size")
	}
	if !strings.Contains(m.View(), "CareerMate") {
		t.Error("header missing from view")
	}
}

func TestModel_EnterSendsMessage(t *testing.T) {
	m := sized(NewModel("u1", echoHandler))
	m.Input.SetValue("hello coach")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected a command carrying the dispatch call")
	}
	if !m.waiting {
		t.Error("model should be waiting for a reply")
	}
	if !strings.Contains(m.View(), "hello coach") {
		t.Error("user line missing from transcript")
	}

	// Run the command synchronously and feed the reply back.
	msg := cmd()
	updated, _ = m.Update(msg)
	m = updated.(Model)
	if m.waiting {
		t.Error("reply should clear the waiting state")
	}
	if !strings.Contains(m.View(), "echo: hello coach") {
		t.Error("reply missing from transcript")
	}
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	m := sized(NewModel("u1", echoHandler))
	m.Input.SetValue("   ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd != nil {
		t.Error("blank input should not dispatch")
	}
	if m.waiting {
		t.Error("blank input should not set waiting")
	}
}

func TestModel_DegradedReplyMarked(t *testing.T) {
	degraded := func(ctx context.Context, userID, text string) dispatch.Reply {
		return dispatch.Reply{Text: "canned", Degraded: true}
	}
	m := sized(NewModel("u1", degraded))
	m.Input.SetValue("hi")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	if !strings.Contains(m.View(), "offline reply") {
		t.Error("degraded replies should be marked in the transcript")
	}
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := sized(NewModel("u1", echoHandler))
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	if !m.Quitting {
		t.Error("ctrl-c should set quitting")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}
