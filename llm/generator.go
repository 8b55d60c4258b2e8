package llm

import (
	"context"
	"errors"
)

// ErrEmptyReply is returned when the upstream model produced no usable text
var ErrEmptyReply = errors.New("llm: empty reply")

// Role values for history turns
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the conversation history handed to the generator.
type Turn struct {
	Role    string
	Content string
}

// Persona describes the character the generator should emulate.
type Persona struct {
	Name        string
	Series      string
	Description string
	Personality string
}

// ReplyGenerator is the port the conversation core consumes. GenerateIntro is
// distinguished from GenerateReply in that the history is empty/implicit.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []Turn, persona Persona) (string, error)
	GenerateIntro(ctx context.Context, persona Persona) (string, error)
}
