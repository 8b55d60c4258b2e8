package image

import (
	"context"
	"sync"
)

// MockGenerator is a scriptable Generator for tests.
type MockGenerator struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, prompt string, params Params) (string, error)
	Err          error
	Calls        int
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	m.mu.Lock()
	m.Calls++
	fn := m.GenerateFunc
	err := m.Err
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if fn != nil {
		return fn(ctx, prompt, params)
	}
	return "https://cdn.example.com/generated/mock.png", nil
}
