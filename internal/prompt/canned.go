package prompt

// cannedReplies are the deterministic fallback texts served when the
// provider is unavailable. Every kind has one; the user never sees a raw
// error.
var cannedReplies = map[Kind]string{
	CareerAnalysis: "Here's a solid starting framework while I'm running in offline mode: " +
		"list the skills you use most, the ones you enjoy most, and where those two overlap. " +
		"Roles built on that overlap are usually your strongest career paths. " +
		"Tell me more about your background and I'll get more specific.",
	ResumeReview: "I can't do a deep review right now, but the fundamentals always apply: " +
		"lead each bullet with an action verb, quantify results where you can, " +
		"and tailor the top third of the resume to the specific role. " +
		"Paste a section and I'll take another look shortly.",
	JobMatch: "While I'm offline, a reliable approach: search by skill keywords rather than " +
		"job titles, since titles vary wildly between companies. " +
		"Set up alerts for two or three phrasings of the role you want, " +
		"and prioritize postings less than a week old.",
	InterviewQuestion: "Tell me about a project you're proud of. What was your role, " +
		"and what was the hardest part?",
	InterviewFeedback: "I couldn't generate detailed feedback just now. A quick structural check: " +
		"did your answer name the situation, your action, and the result? " +
		"If any of the three is missing, add it and the answer gets stronger.",
	SkillGap: "A quick offline exercise: pull up three postings for the role you want and " +
		"list every requirement you don't confidently meet. The items that appear in all " +
		"three postings are your real gaps. Share them with me and we'll plan from there.",
	PersonalCheck: "Doing well, thanks for asking! Always happy to talk careers or just chat. " +
		"What's on your mind today?",
	CasualChat: "I'm having a little trouble reaching my full brain right now, but I'm still here. " +
		"Could you try rephrasing, or ask me something about your career plans?",
}

// Canned returns the deterministic fallback reply for a kind. Unknown kinds
// get the casual-chat fallback so the reply is never empty.
func Canned(kind Kind) string {
	if reply, ok := cannedReplies[kind]; ok {
		return reply
	}
	return cannedReplies[CasualChat]
}
