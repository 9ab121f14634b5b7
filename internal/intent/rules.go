package intent

// Label identifies the classified purpose of a user message.
type Label string

const (
	CareerAnalysis Label = "career_analysis"
	ResumeReview   Label = "resume_review"
	JobMatch       Label = "job_match"
	Interview      Label = "interview"
	SkillGap       Label = "skill_gap"
	PersonalCheck  Label = "personal_check"
	CasualChat     Label = "casual_chat"
)

// priority is the fixed tie-break order: career labels outrank the casual
// label, which outranks the fallback. Earlier entries win ties.
var priority = []Label{
	CareerAnalysis,
	ResumeReview,
	JobMatch,
	Interview,
	SkillGap,
	PersonalCheck,
	CasualChat,
}

// Rule is one weighted trigger phrase for a label. Single-word phrases match
// whole tokens; multi-word phrases match the normalized text.
type Rule struct {
	Label  Label
	Phrase string
	Weight float64
}

// DefaultRules is the static rule table. Weights and the per-label
// normalization constants below are tuned values carried over from the
// previous deployment, not derived from anything principled.
var DefaultRules = []Rule{
	{CareerAnalysis, "career", 1.5},
	{CareerAnalysis, "career path", 2.0},
	{CareerAnalysis, "career advice", 2.0},
	{CareerAnalysis, "career change", 1.5},
	{CareerAnalysis, "what career", 1.5},
	{CareerAnalysis, "recommend a career", 2.0},
	{CareerAnalysis, "my skills are", 1.0},
	{CareerAnalysis, "my skills include", 1.0},

	{ResumeReview, "resume", 1.5},
	{ResumeReview, "cv", 1.5},
	{ResumeReview, "review my resume", 2.5},
	{ResumeReview, "resume feedback", 2.5},
	{ResumeReview, "improve my resume", 2.5},
	{ResumeReview, "cover letter", 1.0},

	{JobMatch, "job", 1.2},
	{JobMatch, "jobs", 1.5},
	{JobMatch, "job search", 2.0},
	{JobMatch, "find a job", 2.0},
	{JobMatch, "looking for", 1.0},
	{JobMatch, "hiring", 1.0},
	{JobMatch, "opportunities", 1.0},
	{JobMatch, "openings", 1.0},
	{JobMatch, "position", 0.8},
	{JobMatch, "vacancy", 0.8},

	{Interview, "interview", 1.5},
	{Interview, "mock interview", 2.5},
	{Interview, "interview practice", 2.5},
	{Interview, "practice interview", 2.5},
	{Interview, "interview question", 2.0},
	{Interview, "prepare for an interview", 2.0},

	{SkillGap, "skill gap", 2.5},
	{SkillGap, "missing skills", 2.5},
	{SkillGap, "skills do i need", 2.5},
	{SkillGap, "improve my skills", 2.0},
	{SkillGap, "upskill", 1.5},
	{SkillGap, "learn", 1.0},

	{PersonalCheck, "hey", 1.0},
	{PersonalCheck, "hi", 1.0},
	{PersonalCheck, "hello", 1.0},
	{PersonalCheck, "how are you", 2.0},
	{PersonalCheck, "how's it going", 2.0},
	{PersonalCheck, "how was your day", 1.5},
	{PersonalCheck, "what's up", 1.5},
	{PersonalCheck, "good morning", 1.5},
	{PersonalCheck, "good afternoon", 1.5},
	{PersonalCheck, "good evening", 1.5},

	{CasualChat, "thanks", 1.0},
	{CasualChat, "thank you", 1.5},
	{CasualChat, "weather", 1.0},
	{CasualChat, "tell me about", 0.5},
	{CasualChat, "how about you", 1.0},
}

// defaultNorms are the per-label normalization constants dividing the
// matched weight sum into a confidence.
var defaultNorms = map[Label]float64{
	CareerAnalysis: 4.0,
	ResumeReview:   4.0,
	JobMatch:       4.0,
	Interview:      4.0,
	SkillGap:       4.0,
	PersonalCheck:  4.0,
	CasualChat:     3.0,
}
