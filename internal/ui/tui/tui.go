// Package tui is the interactive chat surface. One viewport of transcript,
// one input line, and the dispatcher behind them.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/careermate/careermate/internal/dispatch"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	coachStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Italic(true)
)

// Handler produces the reply for one user message. Satisfied by
// dispatch.Dispatcher.Handle.
type Handler func(ctx context.Context, userID, text string) dispatch.Reply

type replyMsg struct {
	reply dispatch.Reply
}

type Model struct {
	UserID   string
	Handle   Handler
	Input    textinput.Model
	Viewport viewport.Model

	transcript []string
	waiting    bool
	Quitting   bool
	Ready      bool
	Width      int
	Height     int
}

func NewModel(userID string, handle Handler) Model {
	input := textinput.New()
	input.Placeholder = "Ask about your career, or just say hi"
	input.Focus()
	input.CharLimit = 4000

	return Model{
		UserID: userID,
		Handle: handle,
		Input:  input,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.Input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.Input.Reset()
			m.appendLine(userStyle.Render("you: ") + text)
			m.appendLine(noticeStyle.Render("coach is thinking..."))
			m.waiting = true
			return m, m.ask(text)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if !m.Ready {
			m.Viewport = viewport.New(msg.Width, msg.Height-4)
			m.Ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = msg.Height - 4
		}
		m.refresh()

	case replyMsg:
		m.waiting = false
		// Drop the thinking notice before rendering the reply.
		if n := len(m.transcript); n > 0 && strings.Contains(m.transcript[n-1], "thinking") {
			m.transcript = m.transcript[:n-1]
		}
		line := coachStyle.Render("coach: ") + msg.reply.Text
		if msg.reply.Degraded {
			line += "\n" + noticeStyle.Render("(offline reply; the model was unreachable)")
		}
		m.appendLine(line)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)

	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.Ready {
		return "\n  Starting..."
	}

	header := titleStyle.Render(" CareerMate ")
	view := fmt.Sprintf("%s\n%s\n\n%s", header, m.Viewport.View(), m.Input.View())

	if m.Quitting {
		return view + "\n  Bye!\n"
	}
	return view
}

func (m *Model) ask(text string) tea.Cmd {
	handle := m.Handle
	userID := m.UserID
	return func() tea.Msg {
		return replyMsg{reply: handle(context.Background(), userID, text)}
	}
}

func (m *Model) appendLine(line string) {
	m.transcript = append(m.transcript, line)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.Ready {
		return
	}
	m.Viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.Viewport.GotoBottom()
}
