package repository

import (
	"context"

	"gorm.io/gorm"

	"companion-chat/backend/conversation/models"
)

// MessageRepository persists conversation turns.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error)
	CountByConversation(ctx context.Context, conversationID uint) (int64, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByConversation returns all turns in insertion order. CreatedAt
// alone is not enough when two turns land in the same clock tick, so
// the row id breaks ties.
func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *GormMessageRepository) CountByConversation(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}
