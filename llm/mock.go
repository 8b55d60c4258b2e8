package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a scriptable ReplyGenerator for tests and local
// development without an API key.
type MockGenerator struct {
	mu sync.Mutex

	// ReplyFunc/IntroFunc override the canned behavior when set
	ReplyFunc func(history []Turn, persona Persona) (string, error)
	IntroFunc func(persona Persona) (string, error)

	// Err, when set, is returned from every call
	Err error

	ReplyCalls int
	IntroCalls int
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateReply(ctx context.Context, history []Turn, persona Persona) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplyCalls++

	if m.Err != nil {
		return "", m.Err
	}
	if m.ReplyFunc != nil {
		return m.ReplyFunc(history, persona)
	}
	return fmt.Sprintf("%s says: that's interesting, tell me more!", persona.Name), nil
}

func (m *MockGenerator) GenerateIntro(ctx context.Context, persona Persona) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IntroCalls++

	if m.Err != nil {
		return "", m.Err
	}
	if m.IntroFunc != nil {
		return m.IntroFunc(persona)
	}
	return fmt.Sprintf("Hey! I'm %s from %s. Let's chat!", persona.Name, persona.Series), nil
}
