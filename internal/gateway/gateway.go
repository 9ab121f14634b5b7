// Package gateway wraps a provider with the timeout, retry and fallback
// policy the rest of the system relies on. Callers always get a usable
// reply; provider failures degrade to canned text instead of surfacing.
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/careermate/careermate/internal/prompt"
	"github.com/careermate/careermate/internal/provider"
)

const (
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 30 * time.Second
	// DefaultBackoff is the pause before the single retry.
	DefaultBackoff = 500 * time.Millisecond
)

var errEmptyReply = errors.New("provider returned empty content")

// Gateway is the generation boundary. One provider, one retry, then the
// canned reply for the requested kind.
type Gateway struct {
	provider provider.Provider
	timeout  time.Duration
	backoff  time.Duration
	log      *bolt.Logger
}

// New builds a gateway. Non-positive timeout or backoff select the defaults.
func New(p provider.Provider, timeout, backoff time.Duration, log *bolt.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Gateway{provider: p, timeout: timeout, backoff: backoff, log: log}
}

// Generate produces the reply text for a prompt kind. degraded reports that
// the canned fallback was served instead of provider output. The returned
// text is never empty.
func (g *Gateway) Generate(ctx context.Context, kind prompt.Kind, payload prompt.Payload) (text string, degraded bool) {
	messages := prompt.Build(kind, payload)

	reply, err := g.attempt(ctx, messages)
	if err == nil {
		return reply, false
	}
	g.log.Warn().Str("provider", g.provider.Name()).Str("kind", string(kind)).Err(err).Msg("provider call failed, retrying once")

	if !g.pause(ctx) {
		g.log.Warn().Str("kind", string(kind)).Msg("context expired before retry, serving fallback")
		return prompt.Canned(kind), true
	}

	reply, err = g.attempt(ctx, messages)
	if err == nil {
		return reply, false
	}
	g.log.Error().Str("provider", g.provider.Name()).Str("kind", string(kind)).Err(err).Msg("provider retry failed, serving fallback")
	return prompt.Canned(kind), true
}

// Probe checks that the provider answers a minimal request within the
// configured timeout. Used before committing to a provider for a session.
func (g *Gateway) Probe(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	_, err := g.provider.Chat(callCtx, []provider.Message{
		{Role: "user", Content: "Reply with the single word: ok"},
	})
	if err != nil {
		return err
	}
	return nil
}

// ProviderName reports which backend the gateway is bound to.
func (g *Gateway) ProviderName() string {
	return g.provider.Name()
}

func (g *Gateway) attempt(ctx context.Context, messages []provider.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Chat(callCtx, messages)
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", errEmptyReply
	}
	return reply, nil
}

// pause waits out the backoff, returning false if the caller's context
// expires first.
func (g *Gateway) pause(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(g.backoff):
		return true
	}
}
