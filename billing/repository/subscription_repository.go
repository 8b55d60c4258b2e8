package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"companion-chat/backend/billing/models"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRepository persists mirrored subscription state.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	GetByUserID(ctx context.Context, userID uint) (*models.Subscription, error)
	GetByProviderSubID(ctx context.Context, providerSubID string) (*models.Subscription, error)
}

type GormSubscriptionRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// Upsert writes the subscription, replacing any existing row for the user.
func (r *GormSubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Subscription
		err := tx.Where("user_id = ?", sub.UserID).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(sub).Error
			}
			return err
		}
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		return tx.Save(sub).Error
	})
}

func (r *GormSubscriptionRepository) GetByUserID(ctx context.Context, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *GormSubscriptionRepository) GetByProviderSubID(ctx context.Context, providerSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("provider_sub_id = ?", providerSubID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}
