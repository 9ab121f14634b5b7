package intent

import (
	"strings"
	"unicode"
)

// DefaultThreshold is the confidence floor below which a winning label is
// discarded in favor of the casual-chat fallback.
const DefaultThreshold = 0.3

// Result is a classification outcome. Confidence is always in [0,1].
type Result struct {
	Label      Label
	Confidence float64
}

// Classifier scores text against a weighted rule table. It holds no mutable
// state: identical input always yields an identical result.
type Classifier struct {
	threshold float64
	rules     []Rule
	norms     map[Label]float64
}

// New returns a classifier over the default rule table. A threshold <= 0
// selects DefaultThreshold.
func New(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		threshold: threshold,
		rules:     DefaultRules,
		norms:     defaultNorms,
	}
}

// Classify scores text against every rule and returns the winning label with
// its confidence. It accepts any text and never fails; empty or
// whitespace-only input is casual chat with zero confidence.
func (c *Classifier) Classify(text string) Result {
	normalized, tokens := normalize(text)
	if len(tokens) == 0 {
		return Result{Label: CasualChat, Confidence: 0.0}
	}

	tokenSet := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = struct{}{}
	}
	padded := " " + normalized + " "

	scores := make(map[Label]float64, len(c.norms))
	for _, rule := range c.rules {
		phrase, phraseTokens := normalize(rule.Phrase)
		if len(phraseTokens) == 0 {
			continue
		}
		if len(phraseTokens) == 1 {
			if _, ok := tokenSet[phrase]; ok {
				scores[rule.Label] += rule.Weight
			}
		} else if strings.Contains(padded, " "+phrase+" ") {
			scores[rule.Label] += rule.Weight
		}
	}

	best := Result{Label: CasualChat, Confidence: 0.0}
	for _, label := range priority {
		norm := c.norms[label]
		if norm <= 0 {
			continue
		}
		conf := scores[label] / norm
		if conf > 1.0 {
			conf = 1.0
		}
		if conf > best.Confidence {
			best = Result{Label: label, Confidence: conf}
		}
	}

	if best.Label != CasualChat && best.Confidence < c.threshold {
		fallback := scores[CasualChat] / c.norms[CasualChat]
		if fallback > 1.0 {
			fallback = 1.0
		}
		return Result{Label: CasualChat, Confidence: fallback}
	}
	return best
}

// Structured reports whether a label routes to a structured flow rather than
// free-form chat.
func (l Label) Structured() bool {
	switch l {
	case CareerAnalysis, ResumeReview, JobMatch, Interview, SkillGap:
		return true
	}
	return false
}

// normalize lower-cases text, splits it into alphanumeric tokens and returns
// both the space-joined form and the token list. Punctuation never affects
// matching.
func normalize(text string) (string, []string) {
	lowered := strings.ToLower(text)
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(tokens, " "), tokens
}
