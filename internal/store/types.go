package store

import (
	"sort"
	"strings"
	"time"
)

// SchemaVersion is written into every persisted context record so later
// field additions can migrate old files on load.
const SchemaVersion = 1

// Turn is a single conversation entry, either side.
type Turn struct {
	Role       string    `json:"role"` // "user" or "assistant"
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Intent     string    `json:"intent,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
}

// UserContext is the durable per-user record: profile facts plus bounded
// conversation history. Skills and interests are normalized sets.
type UserContext struct {
	Version        int       `json:"version"`
	UserID         string    `json:"user_id"`
	Skills         []string  `json:"skills,omitempty"`
	Experience     []string  `json:"experience,omitempty"`
	Interests      []string  `json:"interests,omitempty"`
	History        []Turn    `json:"history,omitempty"`
	LastIntent     string    `json:"last_intent,omitempty"`
	LastConfidence float64   `json:"last_confidence,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUserContext returns an empty initialized record for a user.
func NewUserContext(userID string) *UserContext {
	return &UserContext{
		Version: SchemaVersion,
		UserID:  userID,
	}
}

// MergeSkills folds tokens into the skill set, lower-cased, trimmed and
// deduplicated. Empty tokens are discarded.
func (c *UserContext) MergeSkills(skills ...string) {
	c.Skills = mergeTokens(c.Skills, skills)
}

// MergeInterests folds tokens into the interest set under the same
// normalization as skills.
func (c *UserContext) MergeInterests(interests ...string) {
	c.Interests = mergeTokens(c.Interests, interests)
}

// AddExperience appends a free-text experience entry, preserving order.
func (c *UserContext) AddExperience(entry string) {
	if entry = strings.TrimSpace(entry); entry != "" {
		c.Experience = append(c.Experience, entry)
	}
}

// AppendTurn adds a turn to history, evicting the oldest entries beyond
// limit. Timestamps are forced monotonically non-decreasing.
func (c *UserContext) AppendTurn(turn Turn, limit int) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	if n := len(c.History); n > 0 && c.History[n-1].Timestamp.After(turn.Timestamp) {
		turn.Timestamp = c.History[n-1].Timestamp
	}
	c.History = append(c.History, turn)
	if limit > 0 && len(c.History) > limit {
		c.History = c.History[len(c.History)-limit:]
	}
	if turn.Role == "user" && turn.Intent != "" {
		c.LastIntent = turn.Intent
		c.LastConfidence = turn.Confidence
	}
}

func mergeTokens(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, lst := range [][]string{existing, incoming} {
		for _, tok := range lst {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}
