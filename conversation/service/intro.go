package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	charmodels "companion-chat/backend/character/models"
	"companion-chat/backend/conversation/models"
	"companion-chat/backend/llm"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/shared/observability"
)

// IntroStatus tracks where the intro synthesizer is in its lifecycle.
type IntroStatus string

const (
	IntroIdle           IntroStatus = "idle"
	IntroGenerating     IntroStatus = "generating"
	IntroReady          IntroStatus = "ready"
	IntroFailedFallback IntroStatus = "failed-fallback"
)

// IntroSynthesizer produces the character's opening message for a fresh
// conversation. It generates at most once per conversation: repeated
// calls return the same result until Reset. When generation fails the
// character's personality text stands in for the intro, so the user
// always sees an opener.
type IntroSynthesizer struct {
	mu        sync.Mutex
	status    IntroStatus
	intro     *models.Message
	epoch     uint64
	character *charmodels.Character
	generator llm.ReplyGenerator
	maxLen    int
	metrics   *observability.ChatMetrics
	log       *logger.Logger
}

func NewIntroSynthesizer(character *charmodels.Character, generator llm.ReplyGenerator, maxLen int, metrics *observability.ChatMetrics, log *logger.Logger) *IntroSynthesizer {
	return &IntroSynthesizer{
		status:    IntroIdle,
		character: character,
		generator: generator,
		maxLen:    maxLen,
		metrics:   metrics,
		log:       log.WithComponent("intro"),
	}
}

// Status returns the current lifecycle state
func (s *IntroSynthesizer) Status() IntroStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// AvatarMessage is the character's portrait shown alongside the intro.
// It is synthesized locally and never persisted.
func (s *IntroSynthesizer) AvatarMessage() *models.Message {
	if s.character.AvatarURL == "" {
		return nil
	}
	return &models.Message{
		ExternalID: fmt.Sprintf("%savatar-%d", models.IntroPrefix, s.character.ID),
		Role:       models.RoleAssistant,
		Kind:       models.KindImage,
		ImageURL:   s.character.AvatarURL,
	}
}

// Message returns the synthesized intro, or nil if none exists yet
func (s *IntroSynthesizer) Message() *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intro
}

// EnsureIntro synthesizes the opening message when the conversation has
// no persisted turns yet. Only the first call per conversation
// generates; concurrent and later calls observe that call's outcome.
func (s *IntroSynthesizer) EnsureIntro(ctx context.Context, existingMessages int64) (*models.Message, error) {
	if existingMessages > 0 {
		return nil, nil
	}

	s.mu.Lock()
	switch s.status {
	case IntroReady, IntroFailedFallback:
		intro := s.intro
		s.mu.Unlock()
		return intro, nil
	case IntroGenerating:
		s.mu.Unlock()
		return nil, nil
	}
	s.status = IntroGenerating
	token := s.epoch
	persona := llm.Persona{
		Name:        s.character.Name,
		Series:      s.character.Series,
		Description: s.character.Description,
		Personality: s.character.Personality,
	}
	s.mu.Unlock()

	content, err := s.generator.GenerateIntro(ctx, persona)

	s.mu.Lock()
	defer s.mu.Unlock()

	// a Reset while generating means this result belongs to a
	// conversation that no longer exists
	if s.epoch != token {
		return nil, nil
	}

	if err != nil || strings.TrimSpace(content) == "" {
		s.log.Warn("intro generation failed, falling back to personality",
			"character", s.character.Name, "error", err)
		s.status = IntroFailedFallback
		content = s.character.Personality
		s.metrics.RecordIntro(ctx, "fallback")
		s.metrics.RecordGenerationFailure(ctx, "intro")
	} else {
		s.status = IntroReady
		s.metrics.RecordIntro(ctx, "generated")
	}

	s.intro = &models.Message{
		ExternalID: models.IntroPrefix + uuid.NewString(),
		Role:       models.RoleAssistant,
		Kind:       models.KindText,
		Content:    truncateRunes(strings.TrimSpace(content), s.maxLen),
		CreatedAt:  time.Now(),
	}
	return s.intro, nil
}

// Reset clears the synthesized intro so the next fresh conversation
// gets a new one. An in-flight generation is abandoned.
func (s *IntroSynthesizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = IntroIdle
	s.intro = nil
	s.epoch++
}

func truncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
