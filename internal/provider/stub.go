package provider

import (
	"context"
	"sync"
	"time"
)

// StubProvider is a deterministic provider for testing. Err, Delay and
// Responses can be set to exercise failure and timeout paths.
type StubProvider struct {
	mu        sync.Mutex
	Responses []Response
	Err       error
	Delay     time.Duration
	Calls     int
}

func NewStubProvider() *StubProvider {
	return &StubProvider{
		Responses: []Response{
			{
				Content: "Happy to help with your career questions. What would you like to work on?",
				Usage:   Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
			},
		},
	}
}

func (m *StubProvider) Chat(ctx context.Context, messages []Message) (*Response, error) {
	m.mu.Lock()
	delay := m.Delay
	m.Calls++
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return &Response{Content: "Happy to help. What would you like to work on?"}, nil
	}
	resp := m.Responses[0]
	if len(m.Responses) > 1 {
		m.Responses = m.Responses[1:]
	}
	return &resp, nil
}

func (m *StubProvider) Name() string {
	return "stub"
}
