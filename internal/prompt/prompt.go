// Package prompt builds the message sequences sent to a provider and owns
// the canned fallback replies used when no provider answer is available.
package prompt

import (
	"fmt"
	"strings"

	"github.com/careermate/careermate/internal/provider"
)

// Kind selects which template applies to a generation request.
type Kind string

const (
	CareerAnalysis    Kind = "career_analysis"
	ResumeReview      Kind = "resume_review"
	JobMatch          Kind = "job_match"
	InterviewQuestion Kind = "interview_question"
	InterviewFeedback Kind = "interview_feedback"
	SkillGap          Kind = "skill_gap"
	PersonalCheck     Kind = "personal_check"
	CasualChat        Kind = "casual_chat"
)

// Exchange is one prior turn included for conversational continuity.
type Exchange struct {
	Role string // "user" or "assistant"
	Text string
}

// Payload carries everything a template can interpolate. Unused fields are
// ignored by kinds that do not need them.
type Payload struct {
	UserText   string
	Skills     []string
	Experience []string
	Interests  []string
	History    []Exchange
	TargetRole string
	Question   string
	Answer     string
}

const systemPersona = "You are a friendly career coach. Be conversational and " +
	"human-first: give direct, specific advice on career topics, and respond " +
	"naturally to casual conversation without forcing career talk."

// Build assembles the provider messages for a generation request. The last
// message is always the user's, so chat-style providers can treat the rest
// as history.
func Build(kind Kind, p Payload) []provider.Message {
	msgs := []provider.Message{{Role: "system", Content: systemPersona}}

	for _, ex := range p.History {
		role := ex.Role
		if role != "assistant" {
			role = "user"
		}
		msgs = append(msgs, provider.Message{Role: role, Content: ex.Text})
	}

	msgs = append(msgs, provider.Message{Role: "user", Content: userContent(kind, p)})
	return msgs
}

func userContent(kind Kind, p Payload) string {
	var b strings.Builder

	switch kind {
	case CareerAnalysis:
		b.WriteString("Analyze my career situation and suggest paths forward.\n")
		writeProfile(&b, p)
		fmt.Fprintf(&b, "My message: %s\n", p.UserText)
		b.WriteString("Cover: an assessment of my current skill set, career paths " +
			"that match it, skills worth developing, and concrete next steps.")

	case ResumeReview:
		b.WriteString("Give me conversational feedback on my resume.\n")
		writeProfile(&b, p)
		fmt.Fprintf(&b, "My message: %s\n", p.UserText)
		b.WriteString("Cover: what to keep, what to improve, specific suggestions, " +
			"and follow-up questions if you need more detail.")

	case JobMatch:
		b.WriteString("Help me find roles that fit my background.\n")
		writeProfile(&b, p)
		fmt.Fprintf(&b, "My message: %s\n", p.UserText)
		b.WriteString("Suggest role types and search strategies matched to my skills.")

	case InterviewQuestion:
		role := p.TargetRole
		if role == "" {
			role = "the role"
		}
		fmt.Fprintf(&b, "Ask me one interview question for %s. Only the question, no preamble.", role)

	case InterviewFeedback:
		role := p.TargetRole
		if role == "" {
			role = "the role"
		}
		fmt.Fprintf(&b, "I am practicing for a %s interview.\n", role)
		fmt.Fprintf(&b, "Question: %s\n", p.Question)
		fmt.Fprintf(&b, "My answer: %s\n", p.Answer)
		b.WriteString("Give short, constructive feedback on the answer: one thing " +
			"that worked, one thing to improve.")

	case SkillGap:
		b.WriteString("Help me find my skill gaps.\n")
		writeProfile(&b, p)
		fmt.Fprintf(&b, "My message: %s\n", p.UserText)
		b.WriteString("Identify missing skills for my goals and how to close each gap.")

	default: // PersonalCheck and CasualChat share the general template.
		return p.UserText
	}

	return b.String()
}

func writeProfile(b *strings.Builder, p Payload) {
	if len(p.Skills) > 0 {
		fmt.Fprintf(b, "My skills: %s\n", strings.Join(p.Skills, ", "))
	}
	if len(p.Interests) > 0 {
		fmt.Fprintf(b, "My interests: %s\n", strings.Join(p.Interests, ", "))
	}
	if len(p.Experience) > 0 {
		fmt.Fprintf(b, "My experience: %s\n", strings.Join(p.Experience, "; "))
	}
}
