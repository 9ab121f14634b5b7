package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/google/uuid"

	"github.com/careermate/careermate/internal/store"
)

const (
	// DefaultQuestionCount is how many answers complete a session.
	DefaultQuestionCount = 5
	// DefaultIdleTimeout abandons a session nobody has touched.
	DefaultIdleTimeout = 30 * time.Minute
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is no longer in progress")
)

// questionTemplates are served in order; %s is the target role.
var questionTemplates = []string{
	"Tell me about yourself and why you are interested in the %s role.",
	"What do you consider your greatest strength as a %s, and how have you applied it?",
	"Describe a challenging problem you solved recently. How did you approach it?",
	"Tell me about a time you disagreed with a teammate. How was it resolved?",
	"Where do you see yourself in five years, and how does this %s role fit that path?",
	"Why should we hire you for this %s position over other candidates?",
}

// Manager owns InterviewSession durability and the one-active-per-user rule.
// The in-memory active index is rebuilt from disk at startup, so sessions
// survive process restarts.
type Manager struct {
	dir           string
	backups       *store.BackupSet
	questionCount int
	idleTimeout   time.Duration
	log           *bolt.Logger

	mu     sync.Mutex
	active map[string]string // userID -> in-progress sessionID
}

// NewManager prepares the session directory and rebuilds the active index.
// Like the context store, an inaccessible directory is fatal at startup.
func NewManager(dataDir string, questionCount int, idleTimeout time.Duration, retention int, log *bolt.Logger) (*Manager, error) {
	dir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	backups, err := store.NewBackupSet(filepath.Join(dataDir, "backups", "sessions"), retention, log)
	if err != nil {
		return nil, err
	}

	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	m := &Manager{
		dir:           dir,
		backups:       backups,
		questionCount: questionCount,
		idleTimeout:   idleTimeout,
		log:           log,
		active:        make(map[string]string),
	}
	m.rebuildIndex()
	return m, nil
}

// rebuildIndex scans persisted sessions for in-progress ones. Two in-progress
// sessions for the same user can only come from a crash mid-transition; the
// older one is abandoned to restore the invariant.
func (m *Manager) rebuildIndex() {
	sessions, err := m.list()
	if err != nil {
		m.log.Warn().Err(err).Msg("session index rebuild failed, starting empty")
		return
	}

	for _, s := range sessions {
		if s.State != StateInProgress {
			continue
		}
		prevID, ok := m.active[s.UserID]
		if !ok {
			m.active[s.UserID] = s.SessionID
			continue
		}
		prev, err := m.load(prevID)
		if err == nil && prev.UpdatedAt.After(s.UpdatedAt) {
			m.abandon(s)
			continue
		}
		if prev != nil {
			m.abandon(prev)
		}
		m.active[s.UserID] = s.SessionID
	}
}

// StartSession abandons any active session for the user, creates a fresh one
// and serves its first question. The returned session is already in progress
// and persisted.
func (m *Manager) StartSession(userID, role string) (*InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prevID, ok := m.active[userID]; ok {
		if prev, err := m.load(prevID); err == nil && prev.State == StateInProgress {
			m.abandon(prev)
		}
		delete(m.active, userID)
	}

	now := time.Now()
	s := &InterviewSession{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		TargetRole: strings.TrimSpace(role),
		State:      StateNotStarted,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	s.Turns = append(s.Turns, SessionTurn{Question: m.questionFor(s, 0)})
	s.State = StateInProgress
	s.touch()

	if err := m.save(s); err != nil {
		return nil, err
	}
	m.active[userID] = s.SessionID
	m.log.Info().Str("user", userID).Str("session", s.SessionID).Str("role", s.TargetRole).Msg("interview session started")
	return s, nil
}

// RecordAnswer stores the answer to the outstanding question and advances the
// session. next is the following question, or "" when the session completed
// on this answer (question count reached or a stop signal).
func (m *Manager) RecordAnswer(sessionID, answer string) (next string, completed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(sessionID)
	if err != nil {
		return "", false, err
	}
	if s.State != StateInProgress {
		return "", false, ErrSessionClosed
	}

	if IsStopSignal(answer) {
		s.State = StateCompleted
		s.touch()
		delete(m.active, s.UserID)
		if err := m.save(s); err != nil {
			return "", true, err
		}
		return "", true, nil
	}

	if n := len(s.Turns); n > 0 && s.Turns[n-1].Answer == "" {
		s.Turns[n-1].Answer = strings.TrimSpace(answer)
	} else {
		s.Turns = append(s.Turns, SessionTurn{Question: "", Answer: strings.TrimSpace(answer)})
	}

	if s.Answered() >= m.questionCount {
		s.State = StateCompleted
		s.touch()
		delete(m.active, s.UserID)
		if err := m.save(s); err != nil {
			return "", true, err
		}
		m.log.Info().Str("session", s.SessionID).Int("answers", s.Answered()).Msg("interview session completed")
		return "", true, nil
	}

	next = m.questionFor(s, len(s.Turns))
	s.Turns = append(s.Turns, SessionTurn{Question: next})
	s.touch()
	if err := m.save(s); err != nil {
		return next, false, err
	}
	return next, false, nil
}

// AttachFeedback stores generated feedback on the most recently answered
// turn. Feedback is advisory; a closed session rejects it.
func (m *Manager) AttachFeedback(sessionID, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(sessionID)
	if err != nil {
		return err
	}
	if s.State.Terminal() && s.State != StateCompleted {
		return ErrSessionClosed
	}
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Answer != "" {
			s.Turns[i].Feedback = strings.TrimSpace(feedback)
			s.touch()
			return m.save(s)
		}
	}
	return nil
}

// CurrentSession returns the user's in-progress session, or nil. A session
// idle past the timeout is abandoned here rather than by a background timer.
func (m *Manager) CurrentSession(userID string) *InterviewSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.active[userID]
	if !ok {
		return nil
	}
	s, err := m.load(id)
	if err != nil || s.State != StateInProgress {
		delete(m.active, userID)
		return nil
	}
	if time.Since(s.UpdatedAt) > m.idleTimeout {
		m.abandon(s)
		delete(m.active, userID)
		return nil
	}
	return s
}

// List returns every persisted session, newest first.
func (m *Manager) List() ([]*InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list()
}

// QuestionCount reports how many answers complete a session.
func (m *Manager) QuestionCount() int {
	return m.questionCount
}

func (m *Manager) list() ([]*InterviewSession, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var sessions []*InterviewSession
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		s, err := m.load(id)
		if err != nil {
			m.log.Warn().Str("file", entry.Name()).Err(err).Msg("skipping unreadable session file")
			continue
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// abandon marks a session abandoned and persists it. Called with m.mu held.
func (m *Manager) abandon(s *InterviewSession) {
	s.State = StateAbandoned
	s.touch()
	if err := m.save(s); err != nil {
		m.log.Warn().Str("session", s.SessionID).Err(err).Msg("failed to persist abandoned session")
	}
}

func (m *Manager) load(sessionID string) (*InterviewSession, error) {
	data, err := os.ReadFile(m.path(sessionID)) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s InterviewSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}

func (m *Manager) save(s *InterviewSession) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	live := m.path(s.SessionID)
	if err := m.backups.Rotate(live); err != nil {
		m.log.Warn().Str("session", s.SessionID).Err(err).Msg("session backup rotation failed")
	}
	if err := store.WriteFileAtomic(live, data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (m *Manager) path(sessionID string) string {
	return filepath.Join(m.dir, sessionID+".json")
}

// questionFor picks the template for the turn index, substituting the target
// role where the template asks for one.
func (m *Manager) questionFor(s *InterviewSession, index int) string {
	tmpl := questionTemplates[index%len(questionTemplates)]
	role := s.TargetRole
	if role == "" {
		role = "candidate"
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, role)
	}
	return tmpl
}
