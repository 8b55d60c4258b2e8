package llm

import (
	"testing"

	go_openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIGeneratorRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIGenerator(OpenAIConfig{})
	assert.Error(t, err)
}

func TestNewOpenAIGeneratorDefaults(t *testing.T) {
	gen, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "test-key"})
	require.NoError(t, err)

	assert.Equal(t, go_openai.GPT4TurboPreview, gen.config.ChatModel)
	assert.Equal(t, gen.config.ChatModel, gen.config.IntroModel)
	assert.Equal(t, 150, gen.config.MaxIntroTokens)
	assert.Equal(t, 40, gen.config.HistoryLimit)
}

func TestNewOpenAIGeneratorIntroInheritsChatModel(t *testing.T) {
	gen, err := NewOpenAIGenerator(OpenAIConfig{APIKey: "test-key", ChatModel: "mistral-small"})
	require.NoError(t, err)

	assert.Equal(t, "mistral-small", gen.config.ChatModel)
	assert.Equal(t, "mistral-small", gen.config.IntroModel)
}
