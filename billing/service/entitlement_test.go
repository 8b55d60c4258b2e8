package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"companion-chat/backend/billing/models"
	"companion-chat/backend/billing/repository"
	"companion-chat/backend/pkg/logger"
)

func newTestEntitlements(t *testing.T) (*EntitlementService, repository.SubscriptionRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}))

	repo := repository.NewGormSubscriptionRepository(db)
	svc := NewEntitlementService(repo, nil, time.Minute, logger.New(logger.Config{Level: "error"}))
	return svc, repo
}

func TestIsSubscribedActive(t *testing.T) {
	svc, repo := newTestEntitlements(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Subscription{
		UserID: 1,
		Status: models.StatusActive,
	}))

	ok, err := svc.IsSubscribed(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsSubscribedNoRow(t *testing.T) {
	svc, _ := newTestEntitlements(t)

	ok, err := svc.IsSubscribed(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsSubscribedCanceled(t *testing.T) {
	svc, repo := newTestEntitlements(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Subscription{
		UserID: 1,
		Status: models.StatusCanceled,
	}))

	ok, err := svc.IsSubscribed(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPastDueGraceWindow(t *testing.T) {
	svc, repo := newTestEntitlements(t)
	ctx := context.Background()

	// still inside the paid period
	require.NoError(t, repo.Upsert(ctx, &models.Subscription{
		UserID:           1,
		Status:           models.StatusPastDue,
		CurrentPeriodEnd: time.Now().Add(24 * time.Hour),
	}))
	ok, err := svc.IsSubscribed(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// paid period ran out
	require.NoError(t, svc.ApplyUpdate(ctx, &models.Subscription{
		UserID:           2,
		Status:           models.StatusPastDue,
		CurrentPeriodEnd: time.Now().Add(-time.Hour),
	}))
	ok, err = svc.IsSubscribed(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplyUpdateReplacesState(t *testing.T) {
	svc, repo := newTestEntitlements(t)
	ctx := context.Background()

	require.NoError(t, svc.ApplyUpdate(ctx, &models.Subscription{
		UserID: 1,
		Status: models.StatusActive,
	}))
	require.NoError(t, svc.ApplyUpdate(ctx, &models.Subscription{
		UserID: 1,
		Status: models.StatusCanceled,
	}))

	sub, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, sub.Status)

	ok, err := svc.IsSubscribed(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
