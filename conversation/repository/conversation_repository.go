package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"companion-chat/backend/conversation/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository persists conversation metadata.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Conversation, error)
	LatestByUserAndCharacter(ctx context.Context, userID, characterID uint) (*models.Conversation, error)
	UpdateTitle(ctx context.Context, id uint, title string) error
	TouchLastMessage(ctx context.Context, id uint, at time.Time) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *GormConversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// ListByUser returns the user's conversations, most recent activity first.
func (r *GormConversationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Conversation, error) {
	var convs []models.Conversation
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

// LatestByUserAndCharacter finds the most recently active conversation
// the user has with a character, used to resume instead of forking.
func (r *GormConversationRepository) LatestByUserAndCharacter(ctx context.Context, userID, characterID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND character_id = ?", userID, characterID).
		Order("last_message_at DESC").
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *GormConversationRepository) UpdateTitle(ctx context.Context, id uint, title string) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("title", title).Error
}

func (r *GormConversationRepository) TouchLastMessage(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (r *GormConversationRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
