package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"companion-chat/backend/conversation/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Conversation{}, &models.Message{}))
	return db
}

func newConversation(userID, characterID uint) *models.Conversation {
	now := time.Now()
	return &models.Conversation{
		ExternalID:    uuid.NewString(),
		UserID:        userID,
		CharacterID:   characterID,
		CharacterName: "Nami",
		Title:         models.DefaultTitle,
		LastMessageAt: now,
	}
}

func TestConversationCreateAndGet(t *testing.T) {
	repo := NewGormConversationRepository(newTestDB(t))
	ctx := context.Background()

	conv := newConversation(1, 2)
	require.NoError(t, repo.Create(ctx, conv))
	require.NotZero(t, conv.ID)

	got, err := repo.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ExternalID, got.ExternalID)
	assert.Equal(t, models.DefaultTitle, got.Title)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationListByUserOrdering(t *testing.T) {
	repo := NewGormConversationRepository(newTestDB(t))
	ctx := context.Background()

	older := newConversation(1, 2)
	older.LastMessageAt = time.Now().Add(-time.Hour)
	newer := newConversation(1, 3)
	other := newConversation(2, 2)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, other))

	convs, err := repo.ListByUser(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, newer.ID, convs[0].ID)
	assert.Equal(t, older.ID, convs[1].ID)
}

func TestLatestByUserAndCharacter(t *testing.T) {
	repo := NewGormConversationRepository(newTestDB(t))
	ctx := context.Background()

	first := newConversation(1, 2)
	first.LastMessageAt = time.Now().Add(-time.Hour)
	second := newConversation(1, 2)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.LatestByUserAndCharacter(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = repo.LatestByUserAndCharacter(ctx, 1, 99)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestTouchLastMessageAndTitle(t *testing.T) {
	repo := NewGormConversationRepository(newTestDB(t))
	ctx := context.Background()

	conv := newConversation(1, 2)
	conv.LastMessageAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, conv))

	at := time.Now()
	require.NoError(t, repo.TouchLastMessage(ctx, conv.ID, at))
	require.NoError(t, repo.UpdateTitle(ctx, conv.ID, "Hey Nami, what's up?"))

	got, err := repo.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hey Nami, what's up?", got.Title)
	assert.WithinDuration(t, at, got.LastMessageAt, time.Second)
}

func TestMessageListOrdering(t *testing.T) {
	db := newTestDB(t)
	convRepo := NewGormConversationRepository(db)
	msgRepo := NewGormMessageRepository(db)
	ctx := context.Background()

	conv := newConversation(1, 2)
	require.NoError(t, convRepo.Create(ctx, conv))

	// same CreatedAt on purpose: insertion order must still win
	at := time.Now()
	userMsg := &models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: conv.ID,
		Role:           models.RoleUser,
		Kind:           models.KindText,
		Content:        "hello",
		CreatedAt:      at,
	}
	assistantMsg := &models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Kind:           models.KindText,
		Content:        "hi there",
		CreatedAt:      at,
	}
	require.NoError(t, msgRepo.Create(ctx, userMsg))
	require.NoError(t, msgRepo.Create(ctx, assistantMsg))

	msgs, err := msgRepo.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	count, err := msgRepo.CountByConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestMessageImageKind(t *testing.T) {
	db := newTestDB(t)
	convRepo := NewGormConversationRepository(db)
	msgRepo := NewGormMessageRepository(db)
	ctx := context.Background()

	conv := newConversation(1, 2)
	require.NoError(t, convRepo.Create(ctx, conv))

	img := &models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: conv.ID,
		Role:           models.RoleAssistant,
		Kind:           models.KindImage,
		ImageURL:       "https://cdn.example.com/out/1.png",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, msgRepo.Create(ctx, img))

	msgs, err := msgRepo.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.KindImage, msgs[0].Kind)
	assert.Empty(t, msgs[0].Content)
	assert.NotEmpty(t, msgs[0].ImageURL)
}
