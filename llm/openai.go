package llm

import (
	"context"
	"fmt"
	"strings"

	go_openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI-backed reply generator
type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint for proxies and compatible servers
	BaseURL string
	// ChatModel is used for replies, IntroModel for opening lines
	ChatModel  string
	IntroModel string
	// MaxIntroTokens bounds the synthesized opening line
	MaxIntroTokens int
	// HistoryLimit bounds how many turns are sent upstream
	HistoryLimit int
}

// OpenAIGenerator implements ReplyGenerator against the OpenAI chat
// completions API (or any compatible endpoint).
type OpenAIGenerator struct {
	client *go_openai.Client
	config OpenAIConfig
}

// NewOpenAIGenerator creates a generator from the given configuration
func NewOpenAIGenerator(config OpenAIConfig) (*OpenAIGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	if config.ChatModel == "" {
		config.ChatModel = go_openai.GPT4TurboPreview
	}
	if config.IntroModel == "" {
		config.IntroModel = config.ChatModel
	}
	if config.MaxIntroTokens <= 0 {
		config.MaxIntroTokens = 150
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 40
	}

	clientConfig := go_openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIGenerator{
		client: go_openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// GenerateReply produces the next assistant turn for the given history.
func (g *OpenAIGenerator) GenerateReply(ctx context.Context, history []Turn, persona Persona) (string, error) {
	messages := make([]go_openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, go_openai.ChatCompletionMessage{
		Role:    go_openai.ChatMessageRoleSystem,
		Content: ChatSystemPrompt(persona),
	})

	// Only the most recent turns are sent; older context costs tokens
	// without improving short-form roleplay.
	start := 0
	if len(history) > g.config.HistoryLimit {
		start = len(history) - g.config.HistoryLimit
	}
	for _, turn := range history[start:] {
		role := go_openai.ChatMessageRoleAssistant
		if turn.Role == RoleUser {
			role = go_openai.ChatMessageRoleUser
		}
		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, go_openai.ChatCompletionRequest{
		Model:       g.config.ChatModel,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("llm: chat completion failed: %w", err)
	}

	return firstChoice(resp)
}

// GenerateIntro produces a short in-character opening line.
func (g *OpenAIGenerator) GenerateIntro(ctx context.Context, persona Persona) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, go_openai.ChatCompletionRequest{
		Model: g.config.IntroModel,
		Messages: []go_openai.ChatCompletionMessage{
			{
				Role:    go_openai.ChatMessageRoleSystem,
				Content: IntroSystemPrompt(),
			},
			{
				Role:    go_openai.ChatMessageRoleUser,
				Content: IntroUserPrompt(persona),
			},
		},
		Temperature: 0.9,
		MaxTokens:   g.config.MaxIntroTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: intro completion failed: %w", err)
	}

	return firstChoice(resp)
}

func firstChoice(resp go_openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
