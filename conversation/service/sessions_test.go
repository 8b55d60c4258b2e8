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

	charmodels "companion-chat/backend/character/models"
	charrepo "companion-chat/backend/character/repository"
	charservice "companion-chat/backend/character/service"
	"companion-chat/backend/llm"
	"companion-chat/backend/shared/observability"
)

func newTestManager(t *testing.T) (*SessionManager, uint) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&charmodels.Character{}))

	char := testCharacter()
	char.ID = 0
	characters := charrepo.NewGormCharacterRepository(db)
	require.NoError(t, characters.Create(char))

	metrics, _ := observability.NewChatMetrics()
	m := NewSessionManager(
		charservice.NewCharacterService(characters, nil),
		newMemoryStore(), llm.NewMockGenerator(), nil,
		testLimits(), 500, time.Minute, metrics, testLogger(),
	)
	t.Cleanup(m.Close)
	return m, char.ID
}

func TestSessionManagerIsolatesGuests(t *testing.T) {
	m, charID := newTestManager(t)
	ctx := context.Background()

	a, err := m.Session(ctx, 0, "guest-a", charID)
	require.NoError(t, err)
	b, err := m.Session(ctx, 0, "guest-b", charID)
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	again, err := m.Session(ctx, 0, "guest-a", charID)
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = a.SendMessage(ctx, "between us only")
	require.NoError(t, err)
	assert.Empty(t, b.View(ViewOptions{}))
}

func TestSessionManagerIgnoresGuestWhenAuthenticated(t *testing.T) {
	m, charID := newTestManager(t)
	ctx := context.Background()

	first, err := m.Session(ctx, 1, "guest-x", charID)
	require.NoError(t, err)
	second, err := m.Session(ctx, 1, "", charID)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestSessionManagerDrop(t *testing.T) {
	m, charID := newTestManager(t)
	ctx := context.Background()

	before, err := m.Session(ctx, 0, "guest-a", charID)
	require.NoError(t, err)
	m.Drop(0, "guest-a", charID)

	after, err := m.Session(ctx, 0, "guest-a", charID)
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}
