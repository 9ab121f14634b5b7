// Package dispatch orchestrates a conversation turn: classify, load context,
// drive structured sessions, request a reply, persist. Every step's failure
// is isolated so the caller always receives a usable reply.
package dispatch

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/careermate/careermate/internal/archive"
	"github.com/careermate/careermate/internal/gateway"
	"github.com/careermate/careermate/internal/intent"
	"github.com/careermate/careermate/internal/observe"
	"github.com/careermate/careermate/internal/prompt"
	"github.com/careermate/careermate/internal/session"
	"github.com/careermate/careermate/internal/store"
	"github.com/careermate/careermate/internal/validate"
)

// historyWindow is how many prior turns accompany a generation request.
const historyWindow = 6

// Reply is the outcome of one handled turn. Text is never empty.
type Reply struct {
	Text       string
	Intent     intent.Label
	Confidence float64
	Degraded   bool
	SessionID  string
}

// Dispatcher wires the classifier, stores and gateway into the per-message
// flow. It holds no per-user state of its own; everything durable lives in
// the stores.
type Dispatcher struct {
	classifier *intent.Classifier
	contexts   *store.ContextStore
	sessions   *session.Manager
	gateway    *gateway.Gateway
	turnLog    *archive.Archive // optional
	checker    *validate.Checker
	events     *EventBus
	obs        *observe.Observer
	log        *bolt.Logger
}

// New assembles a dispatcher. turnLog may be nil; archiving is optional.
func New(
	classifier *intent.Classifier,
	contexts *store.ContextStore,
	sessions *session.Manager,
	gw *gateway.Gateway,
	turnLog *archive.Archive,
	checker *validate.Checker,
	events *EventBus,
	obs *observe.Observer,
) *Dispatcher {
	if events == nil {
		events = NewEventBus()
	}
	return &Dispatcher{
		classifier: classifier,
		contexts:   contexts,
		sessions:   sessions,
		gateway:    gw,
		turnLog:    turnLog,
		checker:    checker,
		events:     events,
		obs:        obs,
		log:        obs.For("dispatch"),
	}
}

// Events exposes the bus for subscribers such as the TUI.
func (d *Dispatcher) Events() *EventBus {
	return d.events
}

// Handle processes one inbound message and always returns a non-empty reply.
func (d *Dispatcher) Handle(ctx context.Context, userID, text string) Reply {
	ctx, span := d.obs.StartSpan(ctx, "dispatch.handle")
	defer span.End()

	d.events.PublishWithData(EventMessageReceived, userID, map[string]interface{}{"chars": len(text)})

	if v := d.checker.CheckMessage(text); v != nil {
		switch v.Rule {
		case "message_empty":
			return Reply{Text: "I didn't catch that. What would you like to talk about?", Intent: intent.CasualChat}
		default:
			text = validate.Truncate(text, d.checker.Limits().MaxMessageChars)
		}
	}

	res := d.classifier.Classify(text)
	d.events.PublishWithData(EventIntentClassified, userID, map[string]interface{}{
		"intent":     string(res.Label),
		"confidence": res.Confidence,
	})
	d.log.Info().Str("user", userID).Str("intent", string(res.Label)).Float64("confidence", res.Confidence).Msg("message classified")

	uc := d.contexts.Load(userID)

	var reply Reply
	if active := d.sessions.CurrentSession(userID); active != nil && res.Label != intent.Interview {
		reply = d.handleSessionTurn(ctx, active, text)
	} else if res.Label == intent.Interview {
		reply = d.startInterview(userID, text)
	} else if res.Label.Structured() {
		reply = d.handleStructured(ctx, res.Label, text, uc)
	} else {
		reply = d.handleCasual(ctx, res.Label, text, uc)
	}
	reply.Intent = res.Label
	reply.Confidence = res.Confidence

	if reply.Text == "" {
		// Belt and braces: the flows above each guarantee text themselves.
		reply.Text = prompt.Canned(prompt.CasualChat)
		reply.Degraded = true
	}
	if reply.Degraded {
		d.events.PublishWithData(EventReplyDegraded, userID, map[string]interface{}{"intent": string(res.Label)})
	}

	d.persistTurn(ctx, userID, text, res, reply)
	d.events.PublishWithData(EventReplySent, userID, map[string]interface{}{"chars": len(reply.Text)})
	return reply
}

// handleSessionTurn treats the message as the answer to the active session's
// outstanding question.
func (d *Dispatcher) handleSessionTurn(ctx context.Context, active *session.InterviewSession, text string) Reply {
	if v := d.checker.CheckAnswer(text); v != nil {
		return Reply{
			Text:      "That answer is a bit long for me to work with. Could you give me a shorter version?",
			SessionID: active.SessionID,
		}
	}

	question := active.PendingQuestion()
	next, completed, err := d.sessions.RecordAnswer(active.SessionID, text)
	if err != nil {
		d.log.Error().Str("session", active.SessionID).Err(err).Msg("failed to record answer")
		return Reply{Text: prompt.Canned(prompt.InterviewFeedback), Degraded: true, SessionID: active.SessionID}
	}

	if completed {
		d.events.PublishWithData(EventSessionCompleted, active.UserID, map[string]interface{}{"session": active.SessionID})
		if session.IsStopSignal(text) {
			return Reply{
				Text:      "No problem, we'll stop there. You can start a fresh mock interview whenever you like.",
				SessionID: active.SessionID,
			}
		}
		feedback, degraded := d.gateway.Generate(ctx, prompt.InterviewFeedback, prompt.Payload{
			TargetRole: active.TargetRole,
			Question:   question,
			Answer:     text,
		})
		d.attachFeedback(active.SessionID, feedback)
		return Reply{
			Text:      feedback + "\n\nThat was the last question. Nice work completing the interview!",
			Degraded:  degraded,
			SessionID: active.SessionID,
		}
	}

	feedback, degraded := d.gateway.Generate(ctx, prompt.InterviewFeedback, prompt.Payload{
		TargetRole: active.TargetRole,
		Question:   question,
		Answer:     text,
	})
	d.attachFeedback(active.SessionID, feedback)
	return Reply{
		Text:      fmt.Sprintf("%s\n\nNext question: %s", feedback, next),
		Degraded:  degraded,
		SessionID: active.SessionID,
	}
}

func (d *Dispatcher) attachFeedback(sessionID, feedback string) {
	if err := d.sessions.AttachFeedback(sessionID, feedback); err != nil {
		d.log.Warn().Str("session", sessionID).Err(err).Msg("failed to attach feedback")
	}
}

// startInterview opens a new session, abandoning any active one.
func (d *Dispatcher) startInterview(userID, text string) Reply {
	role := intent.ExtractRole(text)
	if v := d.checker.CheckRole(role); v != nil {
		d.log.Warn().Str("user", userID).Str("rule", v.Rule).Msg("rejected target role")
		role = ""
	}

	s, err := d.sessions.StartSession(userID, role)
	if err != nil {
		d.log.Error().Str("user", userID).Err(err).Msg("failed to start session")
		return Reply{Text: prompt.Canned(prompt.InterviewQuestion), Degraded: true}
	}
	d.events.PublishWithData(EventSessionStarted, userID, map[string]interface{}{
		"session": s.SessionID,
		"role":    s.TargetRole,
	})

	intro := "Let's do a mock interview"
	if s.TargetRole != "" {
		intro += " for the " + s.TargetRole + " role"
	}
	return Reply{
		Text:      fmt.Sprintf("%s. Answer each question as you would in a real interview; say \"stop\" any time to end.\n\nFirst question: %s", intro, s.PendingQuestion()),
		SessionID: s.SessionID,
	}
}

// handleStructured serves the career flows that need profile context but no
// session state.
func (d *Dispatcher) handleStructured(ctx context.Context, label intent.Label, text string, uc *store.UserContext) Reply {
	text2, degraded := d.gateway.Generate(ctx, kindFor(label), prompt.Payload{
		UserText:   text,
		Skills:     uc.Skills,
		Experience: uc.Experience,
		Interests:  uc.Interests,
		History:    recentExchanges(uc),
	})
	return Reply{Text: text2, Degraded: degraded}
}

func (d *Dispatcher) handleCasual(ctx context.Context, label intent.Label, text string, uc *store.UserContext) Reply {
	reply, degraded := d.gateway.Generate(ctx, kindFor(label), prompt.Payload{
		UserText: text,
		History:  recentExchanges(uc),
	})
	return Reply{Text: reply, Degraded: degraded}
}

// persistTurn merges extracted profile facts and appends both sides of the
// exchange. A persistence failure is logged; the conversation continues.
func (d *Dispatcher) persistTurn(ctx context.Context, userID, text string, res intent.Result, reply Reply) {
	skills := intent.ExtractSkills(text)
	if v := d.checker.CheckSkills(skills); v != nil {
		d.log.Warn().Str("user", userID).Str("rule", v.Rule).Msg("skipping skill merge")
		skills = nil
	}

	_, err := d.contexts.Update(userID, func(uc *store.UserContext) {
		if len(skills) > 0 {
			uc.MergeSkills(skills...)
		}
		uc.AppendTurn(store.Turn{
			Role:       "user",
			Text:       text,
			Intent:     string(res.Label),
			Confidence: res.Confidence,
		}, d.contexts.HistoryLimit())
		uc.AppendTurn(store.Turn{
			Role: "assistant",
			Text: reply.Text,
		}, d.contexts.HistoryLimit())
	})
	if err != nil {
		d.log.Error().Str("user", userID).Err(err).Msg("turn persistence failed, continuing without it")
		d.events.PublishWithData(EventPersistFailed, userID, map[string]interface{}{"error": err.Error()})
	}

	if d.turnLog != nil {
		d.turnLog.Append(ctx, archive.Entry{
			UserID:     userID,
			Role:       "user",
			Text:       text,
			Intent:     string(res.Label),
			Confidence: res.Confidence,
		})
		d.turnLog.Append(ctx, archive.Entry{UserID: userID, Role: "assistant", Text: reply.Text})
	}
}

// recentExchanges maps the tail of stored history into prompt exchanges.
func recentExchanges(uc *store.UserContext) []prompt.Exchange {
	turns := uc.History
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}
	exchanges := make([]prompt.Exchange, 0, len(turns))
	for _, t := range turns {
		exchanges = append(exchanges, prompt.Exchange{Role: t.Role, Text: t.Text})
	}
	return exchanges
}

func kindFor(label intent.Label) prompt.Kind {
	switch label {
	case intent.CareerAnalysis:
		return prompt.CareerAnalysis
	case intent.ResumeReview:
		return prompt.ResumeReview
	case intent.JobMatch:
		return prompt.JobMatch
	case intent.SkillGap:
		return prompt.SkillGap
	case intent.PersonalCheck:
		return prompt.PersonalCheck
	default:
		return prompt.CasualChat
	}
}
