package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ChatMetrics holds the domain counters for the conversation pipeline.
type ChatMetrics struct {
	messagesSent       metric.Int64Counter
	introsSynthesized  metric.Int64Counter
	generationFailures metric.Int64Counter
	imagesGenerated    metric.Int64Counter
}

// NewChatMetrics registers the chat counters on the global meter provider
func NewChatMetrics() (*ChatMetrics, error) {
	meter := otel.Meter("companion-chat/backend")

	messagesSent, err := meter.Int64Counter("chat_messages_sent_total",
		metric.WithDescription("Messages persisted through the send pipeline"))
	if err != nil {
		return nil, err
	}

	introsSynthesized, err := meter.Int64Counter("chat_intros_synthesized_total",
		metric.WithDescription("Intro messages synthesized, by outcome"))
	if err != nil {
		return nil, err
	}

	generationFailures, err := meter.Int64Counter("chat_generation_failures_total",
		metric.WithDescription("Reply/intro/image generation failures"))
	if err != nil {
		return nil, err
	}

	imagesGenerated, err := meter.Int64Counter("chat_images_generated_total",
		metric.WithDescription("Images generated for chat messages"))
	if err != nil {
		return nil, err
	}

	return &ChatMetrics{
		messagesSent:       messagesSent,
		introsSynthesized:  introsSynthesized,
		generationFailures: generationFailures,
		imagesGenerated:    imagesGenerated,
	}, nil
}

func (m *ChatMetrics) RecordMessageSent(ctx context.Context, role string) {
	if m == nil {
		return
	}
	m.messagesSent.Add(ctx, 1, metric.WithAttributes(attribute.String("role", role)))
}

func (m *ChatMetrics) RecordIntro(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.introsSynthesized.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *ChatMetrics) RecordGenerationFailure(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.generationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *ChatMetrics) RecordImageGenerated(ctx context.Context) {
	if m == nil {
		return
	}
	m.imagesGenerated.Add(ctx, 1)
}
