package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companion-chat/backend/billing/models"
	"companion-chat/backend/billing/repository"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/shared/redis"
)

// EntitlementService answers "is this user a subscriber" with a short-lived
// Redis cache in front of the database.
type EntitlementService struct {
	repo     repository.SubscriptionRepository
	redis    *redis.Client
	cacheTTL time.Duration
	log      *logger.Logger
}

func NewEntitlementService(repo repository.SubscriptionRepository, redisClient *redis.Client, cacheTTL time.Duration, log *logger.Logger) *EntitlementService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &EntitlementService{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		log:      log.WithComponent("entitlement"),
	}
}

func entitlementKey(userID uint) string {
	return fmt.Sprintf("entitlement:user:%d", userID)
}

// IsSubscribed reports whether the user currently holds an active plan.
// Cache misses fall through to the subscription table; a missing row
// means the user never subscribed.
func (s *EntitlementService) IsSubscribed(ctx context.Context, userID uint) (bool, error) {
	key := entitlementKey(userID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key)
		if err == nil {
			return cached == "1", nil
		}
		if !redis.IsNil(err) {
			s.log.Warn("entitlement cache read failed", "error", err, "user_id", userID)
		}
	}

	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			s.cacheResult(ctx, key, false)
			return false, nil
		}
		return false, err
	}

	entitled := sub.Entitled(time.Now())
	s.cacheResult(ctx, key, entitled)
	return entitled, nil
}

func (s *EntitlementService) cacheResult(ctx context.Context, key string, entitled bool) {
	if s.redis == nil {
		return
	}
	value := "0"
	if entitled {
		value = "1"
	}
	if err := s.redis.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.Warn("entitlement cache write failed", "error", err)
	}
}

// ApplyUpdate persists new subscription state from a webhook and drops
// the cached entitlement so the next check sees fresh data.
func (s *EntitlementService) ApplyUpdate(ctx context.Context, sub *models.Subscription) error {
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("applying subscription update: %w", err)
	}
	if s.redis != nil {
		if err := s.redis.Del(ctx, entitlementKey(sub.UserID)); err != nil {
			s.log.Warn("entitlement cache invalidation failed", "error", err, "user_id", sub.UserID)
		}
	}
	s.log.Info("subscription updated", "user_id", sub.UserID, "status", sub.Status)
	return nil
}
