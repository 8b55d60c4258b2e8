package service

import (
	"context"
	"fmt"
	"time"

	"companion-chat/backend/conversation/models"
	"companion-chat/backend/conversation/repository"
)

// Store is the persistence surface the chat session depends on.
type Store interface {
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	LatestConversation(ctx context.Context, userID, characterID uint) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uint, limit int) ([]models.Conversation, error)
	CountConversations(ctx context.Context, userID uint) (int64, error)
	UpdateTitle(ctx context.Context, conversationID uint, title string) error
	SaveMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
	CountMessages(ctx context.Context, conversationID uint) (int64, error)
}

// RepoStore backs the Store port with the gorm repositories.
type RepoStore struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

func NewRepoStore(conversations repository.ConversationRepository, messages repository.MessageRepository) *RepoStore {
	return &RepoStore{conversations: conversations, messages: messages}
}

func (s *RepoStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	return s.conversations.Create(ctx, conv)
}

func (s *RepoStore) GetConversation(ctx context.Context, id uint) (*models.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

func (s *RepoStore) LatestConversation(ctx context.Context, userID, characterID uint) (*models.Conversation, error) {
	return s.conversations.LatestByUserAndCharacter(ctx, userID, characterID)
}

func (s *RepoStore) ListConversations(ctx context.Context, userID uint, limit int) ([]models.Conversation, error) {
	return s.conversations.ListByUser(ctx, userID, limit)
}

func (s *RepoStore) CountConversations(ctx context.Context, userID uint) (int64, error) {
	return s.conversations.CountByUser(ctx, userID)
}

func (s *RepoStore) UpdateTitle(ctx context.Context, conversationID uint, title string) error {
	return s.conversations.UpdateTitle(ctx, conversationID, title)
}

// SaveMessage writes the turn and bumps the conversation's activity
// timestamp so listings sort correctly.
func (s *RepoStore) SaveMessage(ctx context.Context, msg *models.Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	if err := s.conversations.TouchLastMessage(ctx, msg.ConversationID, msg.CreatedAt); err != nil {
		return fmt.Errorf("touching conversation: %w", err)
	}
	return nil
}

func (s *RepoStore) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}

func (s *RepoStore) CountMessages(ctx context.Context, conversationID uint) (int64, error) {
	return s.messages.CountByConversation(ctx, conversationID)
}
