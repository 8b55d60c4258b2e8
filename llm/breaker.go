package llm

import (
	"context"

	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/pkg/resilience"
)

// BreakerGenerator wraps a ReplyGenerator with a circuit breaker so a failing
// model endpoint fails fast instead of holding every send for its timeout.
// It never retries; the caller's fallback rules still apply.
type BreakerGenerator struct {
	inner   ReplyGenerator
	breaker *resilience.CircuitBreaker
}

// NewBreakerGenerator wraps inner with a breaker named for the generator
func NewBreakerGenerator(inner ReplyGenerator, log *logger.Logger) *BreakerGenerator {
	return &BreakerGenerator{
		inner:   inner,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultConfig("reply-generator"), log),
	}
}

func (b *BreakerGenerator) GenerateReply(ctx context.Context, history []Turn, persona Persona) (string, error) {
	var reply string
	err := b.breaker.Execute(func() error {
		var innerErr error
		reply, innerErr = b.inner.GenerateReply(ctx, history, persona)
		return innerErr
	})
	return reply, err
}

func (b *BreakerGenerator) GenerateIntro(ctx context.Context, persona Persona) (string, error) {
	var intro string
	err := b.breaker.Execute(func() error {
		var innerErr error
		intro, innerErr = b.inner.GenerateIntro(ctx, persona)
		return innerErr
	})
	return intro, err
}
