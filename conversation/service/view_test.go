package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-chat/backend/conversation/models"
	"companion-chat/backend/llm"
)

func TestViewComposition(t *testing.T) {
	store := newMemoryStore()
	gen := &llm.MockGenerator{
		IntroFunc: func(llm.Persona) (string, error) { return "Welcome aboard!", nil },
		ReplyFunc: func([]llm.Turn, llm.Persona) (string, error) { return "maps cost money, you know", nil },
	}
	session := newTestSession(t, 1, store, gen)
	ctx := context.Background()

	_, err := session.EnsureIntro(ctx)
	require.NoError(t, err)
	_, err = session.SendMessage(ctx, "can you draw me a map?")
	require.NoError(t, err)

	view := session.View(ViewOptions{})
	require.Len(t, view, 4)
	assert.Equal(t, "Welcome aboard!", view[0].Content)
	assert.True(t, view[0].IsIntro())
	assert.Equal(t, models.KindImage, view[1].Kind)
	assert.True(t, view[1].IsIntro())
	assert.Equal(t, "can you draw me a map?", view[2].Content)
	assert.Equal(t, models.RoleUser, view[2].Role)
	assert.Equal(t, "maps cost money, you know", view[3].Content)
	assert.Equal(t, models.RoleAssistant, view[3].Role)
}

func TestViewExcludesImages(t *testing.T) {
	store := newMemoryStore()
	gen := llm.NewMockGenerator()
	session := newTestSession(t, 1, store, gen)
	ctx := context.Background()

	_, err := session.EnsureIntro(ctx)
	require.NoError(t, err)
	_, err = session.SendMessage(ctx, "hello")
	require.NoError(t, err)

	view := session.View(ViewOptions{ExcludeImages: true})
	for _, m := range view {
		assert.Equal(t, models.KindText, m.Kind)
	}
	// intro stays, avatar goes
	assert.True(t, view[0].IsIntro())
	require.Len(t, view, 3)
}

func TestViewDedupesPersistedIntroRows(t *testing.T) {
	store := newMemoryStore()
	gen := &llm.MockGenerator{
		IntroFunc: func(llm.Persona) (string, error) { return "Welcome aboard!", nil },
	}
	session := newTestSession(t, 1, store, gen)
	ctx := context.Background()

	_, err := session.EnsureIntro(ctx)
	require.NoError(t, err)
	_, err = session.SendMessage(ctx, "hi")
	require.NoError(t, err)

	// a stored row with the reserved prefix must not render a second
	// greeting while the synthesizer's opener is live
	session.mu.Lock()
	session.messages = append([]models.Message{{
		ExternalID:     models.IntroPrefix + "stored",
		ConversationID: session.conversationID,
		Role:           models.RoleAssistant,
		Kind:           models.KindText,
		Content:        "Welcome aboard!",
	}}, session.messages...)
	session.mu.Unlock()

	view := session.View(ViewOptions{})
	require.Len(t, view, 4)
	for _, m := range view {
		assert.NotEqual(t, models.IntroPrefix+"stored", m.ExternalID)
	}
	assert.Equal(t, 1, countGreetings(view))
}

func TestReloadedConversationKeepsPersistedGreeting(t *testing.T) {
	store := newMemoryStore()
	gen := &llm.MockGenerator{
		IntroFunc: func(llm.Persona) (string, error) { return "should not be called", nil },
	}
	ctx := context.Background()

	conv := &models.Conversation{UserID: 1, CharacterID: 1, Title: models.DefaultTitle}
	require.NoError(t, store.CreateConversation(ctx, conv))
	require.NoError(t, store.SaveMessage(ctx, &models.Message{
		ExternalID:     models.IntroPrefix + "m1",
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Kind:           models.KindText,
		Content:        "Welcome aboard!",
	}))
	require.NoError(t, store.SaveMessage(ctx, &models.Message{
		ExternalID:     "m2",
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Kind:           models.KindText,
		Content:        "hi",
	}))

	session := newTestSession(t, 1, store, gen)
	require.NoError(t, session.LoadConversation(ctx, conv.ID))
	_, err := session.EnsureIntro(ctx)
	require.NoError(t, err)

	view := session.View(ViewOptions{})
	require.Len(t, view, 2)
	assert.Equal(t, "Welcome aboard!", view[0].Content)
	assert.Equal(t, 1, countGreetings(view))
	assert.Zero(t, gen.IntroCalls)
}

func countGreetings(view []models.Message) int {
	count := 0
	for _, m := range view {
		if m.IsIntro() && m.Kind == models.KindText {
			count++
		}
	}
	return count
}

func TestViewEmptySession(t *testing.T) {
	session := newTestSession(t, 1, newMemoryStore(), llm.NewMockGenerator())
	assert.Empty(t, session.View(ViewOptions{}))
}
