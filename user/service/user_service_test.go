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

	"companion-chat/backend/pkg/jwt"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/user/models"
	"companion-chat/backend/user/repository"
)

func newTestService(t *testing.T) *UserService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return NewUserService(
		repository.NewGormUserRepository(db),
		jwt.NewService("test-secret", time.Hour),
		logger.New(logger.Config{Level: "error"}),
	)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, &models.SignupRequest{
		Email:    "Pirate@Example.com",
		Password: "treasure-map-1",
		Name:     "Luffy",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signup.Token)
	assert.Equal(t, "pirate@example.com", signup.User.Email)
	assert.NotEqual(t, "treasure-map-1", signup.User.Password)

	login, err := svc.Login(ctx, &models.LoginRequest{
		Email:    "pirate@example.com",
		Password: "treasure-map-1",
	})
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, login.User.ID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &models.SignupRequest{Email: "a@b.c", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, &models.SignupRequest{Email: "A@B.C", Password: "password456"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &models.SignupRequest{Email: "a@b.c", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown email yields the same error as a wrong password
	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@b.c", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
