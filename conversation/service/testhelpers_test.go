package service

import (
	"testing"

	charmodels "companion-chat/backend/character/models"
	"companion-chat/backend/llm"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/shared/observability"
)

func testCharacter() *charmodels.Character {
	return &charmodels.Character{
		ID:          1,
		Name:        "Nami",
		Series:      "One Piece",
		Description: "Navigator of the Straw Hat Pirates",
		Personality: "Nami is smart, cunning, and money-loving, but she deeply cares about her friends.",
		AvatarURL:   "https://cdn.example.com/avatars/nami.png",
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func testLimits() Limits {
	return Limits{MaxMessages: 100, TitleLength: 50, HistoryLimit: 20}
}

func newTestSession(t *testing.T, userID uint, store Store, gen llm.ReplyGenerator) *ChatSession {
	t.Helper()
	char := testCharacter()
	log := testLogger()
	metrics, _ := observability.NewChatMetrics()
	intro := NewIntroSynthesizer(char, gen, 500, metrics, log)
	return NewChatSession(userID, char, store, gen, nil, intro, testLimits(), metrics, log)
}
