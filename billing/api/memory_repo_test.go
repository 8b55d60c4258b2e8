package api

import (
	"context"
	"sync"

	"companion-chat/backend/billing/models"
	"companion-chat/backend/billing/repository"
)

// memorySubscriptionRepo is an in-memory SubscriptionRepository for tests.
type memorySubscriptionRepo struct {
	mu     sync.Mutex
	byUser map[uint]*models.Subscription
	nextID uint
}

func newMemorySubscriptionRepo() *memorySubscriptionRepo {
	return &memorySubscriptionRepo{byUser: make(map[uint]*models.Subscription), nextID: 1}
}

func (m *memorySubscriptionRepo) Upsert(_ context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byUser[sub.UserID]; ok {
		sub.ID = existing.ID
	} else {
		sub.ID = m.nextID
		m.nextID++
	}
	copied := *sub
	m.byUser[sub.UserID] = &copied
	return nil
}

func (m *memorySubscriptionRepo) GetByUserID(_ context.Context, userID uint) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.byUser[userID]
	if !ok {
		return nil, repository.ErrSubscriptionNotFound
	}
	copied := *sub
	return &copied, nil
}

func (m *memorySubscriptionRepo) GetByProviderSubID(_ context.Context, providerSubID string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.byUser {
		if sub.ProviderSubID == providerSubID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}
