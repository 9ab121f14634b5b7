// Package validate enforces input limits before messages reach the stores
// or the provider.
package validate

import (
	"strings"
	"unicode/utf8"
)

// Limits defines the size bounds for user-supplied input.
type Limits struct {
	MaxMessageChars int `json:"max_message_chars"`
	MaxSkills       int `json:"max_skills"`
	MaxSkillChars   int `json:"max_skill_chars"`
	MaxRoleChars    int `json:"max_role_chars"`
	MinRoleChars    int `json:"min_role_chars"`
	MaxAnswerChars  int `json:"max_answer_chars"`
}

// DefaultLimits provides safe defaults.
var DefaultLimits = Limits{
	MaxMessageChars: 4000,
	MaxSkills:       50,
	MaxSkillChars:   100,
	MaxRoleChars:    200,
	MinRoleChars:    3,
	MaxAnswerChars:  2000,
}

// Violation represents a specific breach of the limits.
type Violation struct {
	Rule    string
	Message string
}

// Checker enforces the limits.
type Checker struct {
	limits Limits
}

func New(l Limits) *Checker {
	return &Checker{limits: l}
}

// Limits returns the checker's current limit configuration.
func (c *Checker) Limits() Limits {
	return c.limits
}

// CheckMessage verifies an inbound message. Empty input is rejected here;
// downstream components treat blank text as casual chat but never persist it.
func (c *Checker) CheckMessage(text string) *Violation {
	if strings.TrimSpace(text) == "" {
		return &Violation{Rule: "message_empty", Message: "Message is empty"}
	}
	if utf8.RuneCountInString(text) > c.limits.MaxMessageChars {
		return &Violation{Rule: "max_message_chars", Message: "Message is too long"}
	}
	return nil
}

// CheckSkills verifies an extracted skill list before it is merged into a
// user's context.
func (c *Checker) CheckSkills(skills []string) *Violation {
	if len(skills) > c.limits.MaxSkills {
		return &Violation{Rule: "max_skills", Message: "Too many skills in one message"}
	}
	for _, skill := range skills {
		if utf8.RuneCountInString(skill) > c.limits.MaxSkillChars {
			return &Violation{Rule: "max_skill_chars", Message: "Skill entry is too long: " + skill}
		}
	}
	return nil
}

// CheckRole verifies a target role string. An empty role is allowed; the
// session manager substitutes a placeholder.
func (c *Checker) CheckRole(role string) *Violation {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil
	}
	n := utf8.RuneCountInString(role)
	if n > c.limits.MaxRoleChars {
		return &Violation{Rule: "max_role_chars", Message: "Target role is too long"}
	}
	if n < c.limits.MinRoleChars {
		return &Violation{Rule: "min_role_chars", Message: "Target role is too short"}
	}
	return nil
}

// CheckAnswer verifies an interview answer.
func (c *Checker) CheckAnswer(answer string) *Violation {
	if utf8.RuneCountInString(answer) > c.limits.MaxAnswerChars {
		return &Violation{Rule: "max_answer_chars", Message: "Answer is too long"}
	}
	return nil
}

// Truncate shortens text to max runes, marking the cut with an ellipsis.
func Truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
