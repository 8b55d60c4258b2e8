package service

import (
	"context"
	"sync"
	"time"

	charmodels "companion-chat/backend/character/models"
	charservice "companion-chat/backend/character/service"
	"companion-chat/backend/image"
	"companion-chat/backend/llm"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/shared/observability"
)

type sessionKey struct {
	userID      uint
	guestID     string
	characterID uint
}

// SessionManager hands out one ChatSession per (user, character) pair
// and evicts sessions that have gone quiet.
type SessionManager struct {
	mu         sync.Mutex
	sessions   map[sessionKey]*ChatSession
	characters *charservice.CharacterService
	store      Store
	generator  llm.ReplyGenerator
	images     image.Generator
	limits     Limits
	introLen   int
	ttl        time.Duration
	metrics    *observability.ChatMetrics
	log        *logger.Logger
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewSessionManager(characters *charservice.CharacterService, store Store, generator llm.ReplyGenerator, images image.Generator, limits Limits, introLen int, ttl time.Duration, metrics *observability.ChatMetrics, log *logger.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	m := &SessionManager{
		sessions:   make(map[sessionKey]*ChatSession),
		characters: characters,
		store:      store,
		generator:  generator,
		images:     images,
		limits:     limits,
		introLen:   introLen,
		ttl:        ttl,
		metrics:    metrics,
		log:        log.WithComponent("sessions"),
		stop:       make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Session returns the live session for the pair, creating one that
// resumes the user's latest conversation on first use. userID 0 yields
// an ephemeral session that never persists; those are keyed by the
// caller's guest token so anonymous visitors never share state.
func (m *SessionManager) Session(ctx context.Context, userID uint, guestID string, characterID uint) (*ChatSession, error) {
	if userID != 0 {
		guestID = ""
	}
	key := sessionKey{userID: userID, guestID: guestID, characterID: characterID}

	m.mu.Lock()
	if session, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	character, err := m.characters.GetCharacter(characterID)
	if err != nil {
		return nil, err
	}

	session := m.newSession(userID, character)
	if userID != 0 {
		if err := session.ResumeLatest(ctx); err != nil {
			m.log.Warn("failed to resume conversation", "error", err, "user_id", userID, "character_id", characterID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// lost the race: another request built the session first
	if existing, ok := m.sessions[key]; ok {
		return existing, nil
	}
	m.sessions[key] = session
	return session, nil
}

func (m *SessionManager) newSession(userID uint, character *charmodels.Character) *ChatSession {
	store := m.store
	if userID == 0 {
		store = nil
	}
	intro := NewIntroSynthesizer(character, m.generator, m.introLen, m.metrics, m.log)
	return NewChatSession(userID, character, store, m.generator, m.images, intro, m.limits, m.metrics, m.log)
}

// Drop removes a session so the next request starts clean
func (m *SessionManager) Drop(userID uint, guestID string, characterID uint) {
	if userID != 0 {
		guestID = ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey{userID: userID, guestID: guestID, characterID: characterID})
}

// Close stops the eviction loop
func (m *SessionManager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *SessionManager) janitor() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *SessionManager) evictIdle() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, session := range m.sessions {
		if session.LastActive().Before(cutoff) {
			delete(m.sessions, key)
		}
	}
}
