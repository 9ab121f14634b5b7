package intent

import (
	"regexp"
	"sort"
	"strings"
)

// skillVocabulary is the known-skill lexicon scanned on every message.
// Single words match tokens, multi-word entries match the normalized text.
var skillVocabulary = []string{
	"python", "java", "javascript", "typescript", "go", "rust", "sql",
	"nosql", "postgresql", "mysql", "mongodb", "redis",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "git",
	"linux", "excel", "tableau", "power bi", "pandas", "numpy", "spark",
	"hadoop", "react", "node", "django", "flask", "fastapi", "html", "css",
	"machine learning", "deep learning", "data analysis", "data science",
	"statistics", "nlp",
}

// skillPhraseRe captures free-form skill lists introduced by phrases like
// "I know" or "my skills are".
var skillPhraseRe = regexp.MustCompile(
	`(?i)(?:i know|i'm good at|my skills (?:are|include)|i can use|` +
		`i have experience (?:in|with)|experience (?:in|with)|` +
		`skilled (?:in|with)|proficient (?:in|with))\s+([a-z0-9+#.\s,]+)`)

var roleRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:want to (?:be|become)|become|work as|position as|role of|job as)\s+(?:an? )?([a-z]+(?: [a-z]+)?)`),
	regexp.MustCompile(`(?i)interested in (?:becoming|being)\s+(?:an? )?([a-z]+(?: [a-z]+)?)`),
	regexp.MustCompile(`(?i)(?:interview|practice|prepare) (?:me )?for\s+(?:an? )?([a-z]+(?: [a-z]+)?)(?: position| role| job| interview)?`),
}

// ExtractSkills returns the normalized, deduplicated skill tokens mentioned
// in text, in sorted order. It combines the vocabulary scan with phrase
// capture so both "with Python and SQL" and "I know kubernetes" are caught.
func ExtractSkills(text string) []string {
	normalized, tokens := normalize(text)
	if len(tokens) == 0 {
		return nil
	}

	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}
	padded := " " + normalized + " "

	found := make(map[string]struct{})
	for _, skill := range skillVocabulary {
		if strings.Contains(skill, " ") {
			if strings.Contains(padded, " "+skill+" ") {
				found[skill] = struct{}{}
			}
		} else if _, ok := tokenSet[skill]; ok {
			found[skill] = struct{}{}
		}
	}

	for _, match := range skillPhraseRe.FindAllStringSubmatch(text, -1) {
		for _, part := range splitList(match[1]) {
			norm, toks := normalize(part)
			// Capture is greedy; cap at three words to avoid swallowing
			// the rest of the sentence.
			if norm == "" || len(toks) > 3 {
				continue
			}
			found[norm] = struct{}{}
		}
	}

	if len(found) == 0 {
		return nil
	}
	skills := make([]string, 0, len(found))
	for skill := range found {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills
}

// ExtractRole returns the target role mentioned in text, or "" when none is
// recognizable.
func ExtractRole(text string) string {
	for _, re := range roleRes {
		if m := re.FindStringSubmatch(text); m != nil {
			role := strings.TrimSpace(m[1])
			if role != "" {
				return role
			}
		}
	}
	return ""
}

var listSepRe = regexp.MustCompile(`,|\sand\s`)

func splitList(s string) []string {
	parts := listSepRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
