package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	charmodels "companion-chat/backend/character/models"
	"companion-chat/backend/conversation/models"
	"companion-chat/backend/conversation/repository"
	"companion-chat/backend/image"
	"companion-chat/backend/llm"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/shared/observability"
)

var (
	// ErrStaleLoad reports that a conversation load finished after the
	// session had already moved on, so its result was discarded.
	ErrStaleLoad = errors.New("conversation load superseded")

	// ErrNotOwner reports an attempt to load another user's conversation
	ErrNotOwner = errors.New("conversation belongs to another user")

	// ErrMessageLimit reports that the conversation is full
	ErrMessageLimit = errors.New("conversation message limit reached")

	// ErrConversationLimit reports that the user has too many conversations
	ErrConversationLimit = errors.New("conversation limit reached")
)

// Limits bounds a chat session
type Limits struct {
	MaxMessages      int
	MaxConversations int
	TitleLength      int
	HistoryLimit     int
}

// ChatSession owns one user's live exchange with one character: the
// current conversation id, the in-memory turn list and the intro
// synthesizer. A session with userID 0 is ephemeral and never touches
// the store.
type ChatSession struct {
	mu        sync.Mutex
	userID    uint
	character *charmodels.Character
	store     Store
	generator llm.ReplyGenerator
	images    image.Generator
	intro     *IntroSynthesizer
	limits    Limits
	metrics   *observability.ChatMetrics
	log       *logger.Logger

	conversationID uint
	messages       []models.Message
	epoch          uint64
	lastActive     time.Time
}

func NewChatSession(userID uint, character *charmodels.Character, store Store, generator llm.ReplyGenerator, images image.Generator, intro *IntroSynthesizer, limits Limits, metrics *observability.ChatMetrics, log *logger.Logger) *ChatSession {
	return &ChatSession{
		userID:     userID,
		character:  character,
		store:      store,
		generator:  generator,
		images:     images,
		intro:      intro,
		limits:     limits,
		metrics:    metrics,
		log:        log.WithComponent("chat-session"),
		lastActive: time.Now(),
	}
}

func (s *ChatSession) ephemeral() bool {
	return s.userID == 0 || s.store == nil
}

// Character returns the persona this session chats as
func (s *ChatSession) Character() *charmodels.Character {
	return s.character
}

// ConversationID returns the current conversation id, 0 if none exists yet
func (s *ChatSession) ConversationID() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// LastActive reports the last time the session was used
func (s *ChatSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *ChatSession) touch() {
	s.lastActive = time.Now()
}

// StartNewConversation clears the session state. No conversation row is
// created until the first message arrives.
func (s *ChatSession) StartNewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = 0
	s.messages = nil
	s.epoch++
	s.touch()
	s.intro.Reset()
}

// ResumeLatest loads the user's most recent conversation with this
// character, if one exists. Missing history is not an error; the
// session simply starts fresh.
func (s *ChatSession) ResumeLatest(ctx context.Context) error {
	if s.ephemeral() {
		return nil
	}
	conv, err := s.store.LatestConversation(ctx, s.userID, s.character.ID)
	if err != nil {
		return nil
	}
	return s.LoadConversation(ctx, conv.ID)
}

// LoadConversation replaces the session state with a persisted
// conversation's history. If the session moves on while the store read
// is in flight the result is discarded and ErrStaleLoad is returned.
// Ephemeral sessions own nothing persisted, so every load is a miss.
func (s *ChatSession) LoadConversation(ctx context.Context, conversationID uint) error {
	if s.ephemeral() {
		return repository.ErrConversationNotFound
	}

	s.mu.Lock()
	token := s.epoch
	s.mu.Unlock()

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.UserID != s.userID {
		return ErrNotOwner
	}

	msgs, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != token {
		return ErrStaleLoad
	}
	s.conversationID = conv.ID
	s.messages = msgs
	s.epoch++
	s.touch()
	if len(msgs) > 0 {
		s.intro.Reset()
	}
	return nil
}

// ensureConversation lazily creates the conversation row, called with
// the session lock held.
func (s *ChatSession) ensureConversation(ctx context.Context) error {
	if s.ephemeral() || s.conversationID != 0 {
		return nil
	}
	if s.limits.MaxConversations > 0 {
		count, err := s.store.CountConversations(ctx, s.userID)
		if err != nil {
			return fmt.Errorf("counting conversations: %w", err)
		}
		if count >= int64(s.limits.MaxConversations) {
			return ErrConversationLimit
		}
	}
	conv := &models.Conversation{
		ExternalID:    uuid.NewString(),
		UserID:        s.userID,
		CharacterID:   s.character.ID,
		CharacterName: s.character.Name,
		Title:         models.DefaultTitle,
		LastMessageAt: time.Now(),
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return fmt.Errorf("creating conversation: %w", err)
	}
	s.conversationID = conv.ID
	s.log.Info("conversation created", "conversation_id", conv.ID, "character", s.character.Name)
	return nil
}

// SendMessage persists the user's turn, generates the character's reply
// and persists that too. The user's text is committed before generation
// starts, so a failed reply never loses it.
func (s *ChatSession) SendMessage(ctx context.Context, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	s.touch()
	if s.limits.MaxMessages > 0 && len(s.messages) >= s.limits.MaxMessages {
		s.mu.Unlock()
		return nil, ErrMessageLimit
	}
	if err := s.ensureConversation(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	firstTurn := len(s.messages) == 0
	userMsg := models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: s.conversationID,
		Role:           models.RoleUser,
		Kind:           models.KindText,
		Content:        text,
		CreatedAt:      time.Now(),
	}
	if !s.ephemeral() {
		if err := s.store.SaveMessage(ctx, &userMsg); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("persisting user message: %w", err)
		}
		if firstTurn {
			if err := s.store.UpdateTitle(ctx, s.conversationID, titleFrom(text, s.limits.TitleLength)); err != nil {
				s.log.Warn("failed to update conversation title", "error", err)
			}
		}
	}
	s.messages = append(s.messages, userMsg)
	s.metrics.RecordMessageSent(ctx, models.RoleUser)

	token := s.epoch
	convID := s.conversationID
	history := s.historyLocked()
	persona := llm.Persona{
		Name:        s.character.Name,
		Series:      s.character.Series,
		Description: s.character.Description,
		Personality: s.character.Personality,
	}
	s.mu.Unlock()

	reply, err := s.generator.GenerateReply(ctx, history, persona)
	if err != nil {
		s.metrics.RecordGenerationFailure(ctx, "reply")
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	assistantMsg := models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: convID,
		Role:           models.RoleAssistant,
		Kind:           models.KindText,
		Content:        strings.TrimSpace(reply),
		CreatedAt:      time.Now(),
	}
	if !s.ephemeral() {
		if err := s.store.SaveMessage(ctx, &assistantMsg); err != nil {
			return nil, fmt.Errorf("persisting reply: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// if the session was reset mid-generation the reply still belongs
	// to the old conversation and must not leak into the new one
	if s.epoch == token {
		s.messages = append(s.messages, assistantMsg)
	}
	s.metrics.RecordMessageSent(ctx, models.RoleAssistant)
	return &assistantMsg, nil
}

// SendImage generates an image for the prompt and records it as an
// assistant turn.
func (s *ChatSession) SendImage(ctx context.Context, prompt string) (*models.Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, nil
	}
	if s.images == nil {
		return nil, fmt.Errorf("image generation is not configured")
	}

	s.mu.Lock()
	s.touch()
	if err := s.ensureConversation(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	token := s.epoch
	convID := s.conversationID
	s.mu.Unlock()

	url, err := s.images.Generate(ctx, prompt, image.Params{})
	if err != nil {
		s.metrics.RecordGenerationFailure(ctx, "image")
		return nil, fmt.Errorf("generating image: %w", err)
	}

	imgMsg := models.Message{
		ExternalID:     uuid.NewString(),
		ConversationID: convID,
		Role:           models.RoleAssistant,
		Kind:           models.KindImage,
		ImageURL:       url,
		CreatedAt:      time.Now(),
	}
	if !s.ephemeral() {
		if err := s.store.SaveMessage(ctx, &imgMsg); err != nil {
			return nil, fmt.Errorf("persisting image message: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == token {
		s.messages = append(s.messages, imgMsg)
	}
	s.metrics.RecordImageGenerated(ctx)
	return &imgMsg, nil
}

// EnsureIntro synthesizes the character's opener when the current
// conversation has no turns yet.
func (s *ChatSession) EnsureIntro(ctx context.Context) (*models.Message, error) {
	s.mu.Lock()
	s.touch()
	count := int64(len(s.messages))
	s.mu.Unlock()
	return s.intro.EnsureIntro(ctx, count)
}

// IntroStatus exposes the synthesizer state
func (s *ChatSession) IntroStatus() IntroStatus {
	return s.intro.Status()
}

// historyLocked builds the generator history from the session's text
// turns, newest last, capped at the configured window.
func (s *ChatSession) historyLocked() []llm.Turn {
	turns := make([]llm.Turn, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Kind != models.KindText {
			continue
		}
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}
	if s.limits.HistoryLimit > 0 && len(turns) > s.limits.HistoryLimit {
		turns = turns[len(turns)-s.limits.HistoryLimit:]
	}
	return turns
}

func titleFrom(text string, max int) string {
	if max <= 0 {
		max = 50
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
