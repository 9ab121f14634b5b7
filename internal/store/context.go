package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// DefaultHistoryLimit caps per-user conversation history.
const DefaultHistoryLimit = 50

// ContextStore owns durability for UserContext records: one JSON file per
// user, written atomically with backup rotation. Load never fails the
// caller; a missing or unreadable record becomes a fresh one.
type ContextStore struct {
	dir          string
	backups      *BackupSet
	historyLimit int
	log          *bolt.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// NewContextStore prepares the storage directories. An inaccessible
// directory is the one fatal storage condition; everything after startup
// degrades instead of failing.
func NewContextStore(dataDir string, historyLimit, retention int, log *bolt.Logger) (*ContextStore, error) {
	contextsDir := filepath.Join(dataDir, "contexts")
	if err := os.MkdirAll(contextsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create context directory: %w", err)
	}

	backups, err := NewBackupSet(filepath.Join(dataDir, "backups", "contexts"), retention, log)
	if err != nil {
		return nil, err
	}

	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	return &ContextStore{
		dir:          contextsDir,
		backups:      backups,
		historyLimit: historyLimit,
		log:          log,
		users:        make(map[string]*sync.Mutex),
	}, nil
}

// Load returns the persisted context for a user, or a fresh empty one when
// the record is missing or unparsable. Corruption is logged, never raised.
func (s *ContextStore) Load(userID string) *UserContext {
	data, err := os.ReadFile(s.path(userID)) // #nosec G304
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Str("user", userID).Err(err).Msg("context file unreadable, starting fresh")
		}
		return NewUserContext(userID)
	}

	var uc UserContext
	if err := json.Unmarshal(data, &uc); err != nil {
		s.log.Warn().Str("user", userID).Err(err).Msg("context file corrupt, starting fresh")
		return NewUserContext(userID)
	}
	if uc.UserID == "" {
		uc.UserID = userID
	}
	if uc.Version == 0 {
		uc.Version = SchemaVersion
	}
	return &uc
}

// Save persists a context atomically: rotate the previous live file into the
// backup set, write a temp file, then rename it over the live path. A failed
// write is retried once; the second failure is returned so the caller can
// carry on without persistence.
func (s *ContextStore) Save(userID string, uc *UserContext) error {
	uc.Version = SchemaVersion
	uc.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(uc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}

	live := s.path(userID)
	if err := s.backups.Rotate(live); err != nil {
		s.log.Warn().Str("user", userID).Err(err).Msg("backup rotation failed")
	}

	if err := WriteFileAtomic(live, data); err != nil {
		s.log.Warn().Str("user", userID).Err(err).Msg("context write failed, retrying once")
		if err := WriteFileAtomic(live, data); err != nil {
			return fmt.Errorf("failed to write context: %w", err)
		}
	}
	return nil
}

// Update runs a load-mutate-save cycle under the user's exclusive section.
// Concurrent updates for the same user serialize; different users proceed
// independently.
func (s *ContextStore) Update(userID string, mutate func(*UserContext)) (*UserContext, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	uc := s.Load(userID)
	mutate(uc)
	if err := s.Save(userID, uc); err != nil {
		return uc, err
	}
	return uc, nil
}

// AppendTurn is the common load-mutate-save composition for adding one turn.
func (s *ContextStore) AppendTurn(userID string, turn Turn) error {
	_, err := s.Update(userID, func(uc *UserContext) {
		uc.AppendTurn(turn, s.historyLimit)
	})
	return err
}

// HistoryLimit reports the configured history cap.
func (s *ContextStore) HistoryLimit() int {
	return s.historyLimit
}

// Backups exposes the backup set, mainly for inspection in tests and the
// sessions command.
func (s *ContextStore) Backups() *BackupSet {
	return s.backups
}

func (s *ContextStore) path(userID string) string {
	return filepath.Join(s.dir, sanitizeID(userID)+".json")
}

func (s *ContextStore) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.users[userID] = lock
	}
	return lock
}

// sanitizeID maps an opaque user identifier onto a safe file name. The
// mapping is injective: any rune outside [a-zA-Z0-9-] becomes a _hex_
// escape, and a bare underscore only ever delimits an escape, so distinct
// identifiers never share a file.
func sanitizeID(id string) string {
	if id == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			fmt.Fprintf(&b, "_%x_", r)
		}
	}
	return b.String()
}

// WriteFileAtomic writes via a temp file in the target directory followed by
// a rename, so the live path is never observed half-written.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace live file: %w", err)
	}
	return nil
}
