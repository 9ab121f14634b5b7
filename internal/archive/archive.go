// Package archive keeps an append-only SQLite log of every conversation
// turn. The archive is best effort: the JSON context files remain the source
// of truth, and a failed append never blocks a conversation.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	_ "modernc.org/sqlite"
)

// Entry is one archived conversation turn.
type Entry struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// Archive wraps the turn-log database.
type Archive struct {
	db  *sql.DB
	log *bolt.Logger
}

// Open creates or opens the archive database under the data directory.
func Open(dataDir string, log *bolt.Logger) (*Archive, error) {
	dbPath := filepath.Join(dataDir, "archive.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	a := &Archive{db: db, log: log}
	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		intent TEXT,
		confidence REAL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_user ON turns(user_id, created_at);`

	if _, err := a.db.Exec(query); err != nil {
		return fmt.Errorf("failed to init archive schema: %w", err)
	}
	return nil
}

// Append records one turn. Failures are logged and swallowed; the caller
// should not branch on archive health.
func (a *Archive) Append(ctx context.Context, e Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	query := `INSERT INTO turns (user_id, role, text, intent, confidence, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := a.db.ExecContext(ctx, query, e.UserID, e.Role, e.Text, e.Intent, e.Confidence, e.CreatedAt); err != nil {
		a.log.Warn().Str("user", e.UserID).Err(err).Msg("turn archive append failed")
	}
}

// Recent returns the newest turns for a user, most recent first.
func (a *Archive) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, user_id, role, text, intent, confidence, created_at
		FROM turns WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := a.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var intent sql.NullString
		var confidence sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Role, &e.Text, &intent, &confidence, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Intent = intent.String
		e.Confidence = confidence.Float64
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByIntent reports how many user turns were classified per label.
func (a *Archive) CountByIntent(ctx context.Context, userID string) (map[string]int, error) {
	query := `SELECT intent, COUNT(*) FROM turns
		WHERE user_id = ? AND role = 'user' AND intent != '' GROUP BY intent`
	rows, err := a.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, err
		}
		counts[intent] = n
	}
	return counts, rows.Err()
}

func (a *Archive) Close() error {
	return a.db.Close()
}
