package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"companion-chat/backend/conversation/models"
	"companion-chat/backend/conversation/repository"
)

// memoryStore is an in-memory Store for tests. It records the order of
// writes so tests can assert persistence ordering.
type memoryStore struct {
	mu            sync.Mutex
	conversations map[uint]*models.Conversation
	messages      map[uint][]models.Message
	nextConvID    uint
	nextMsgID     uint
	writeLog      []string

	failSaveMessage bool
	saveErr         error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		conversations: make(map[uint]*models.Conversation),
		messages:      make(map[uint][]models.Message),
		nextConvID:    1,
		nextMsgID:     1,
	}
}

func (m *memoryStore) CreateConversation(_ context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv.ID = m.nextConvID
	m.nextConvID++
	conv.CreatedAt = time.Now()
	copied := *conv
	m.conversations[conv.ID] = &copied
	m.writeLog = append(m.writeLog, "create-conversation")
	return nil
}

func (m *memoryStore) GetConversation(_ context.Context, id uint) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.conversations[id]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}
	copied := *conv
	return &copied, nil
}

func (m *memoryStore) LatestConversation(_ context.Context, userID, characterID uint) (*models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Conversation
	for _, conv := range m.conversations {
		if conv.UserID != userID || conv.CharacterID != characterID {
			continue
		}
		if latest == nil || conv.LastMessageAt.After(latest.LastMessageAt) {
			latest = conv
		}
	}
	if latest == nil {
		return nil, repository.ErrConversationNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *memoryStore) ListConversations(_ context.Context, userID uint, limit int) ([]models.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var convs []models.Conversation
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			convs = append(convs, *conv)
		}
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessageAt.After(convs[j].LastMessageAt)
	})
	if limit > 0 && len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

func (m *memoryStore) CountConversations(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) UpdateTitle(_ context.Context, conversationID uint, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conv, ok := m.conversations[conversationID]; ok {
		conv.Title = title
	}
	return nil
}

func (m *memoryStore) SaveMessage(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveMessage {
		return m.saveErr
	}
	msg.ID = m.nextMsgID
	m.nextMsgID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], *msg)
	if conv, ok := m.conversations[msg.ConversationID]; ok {
		conv.LastMessageAt = msg.CreatedAt
	}
	m.writeLog = append(m.writeLog, "save-message:"+msg.Role)
	return nil
}

func (m *memoryStore) ListMessages(_ context.Context, conversationID uint) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]models.Message, len(m.messages[conversationID]))
	copy(msgs, m.messages[conversationID])
	return msgs, nil
}

func (m *memoryStore) CountMessages(_ context.Context, conversationID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.messages[conversationID])), nil
}

func (m *memoryStore) writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writeLog))
	copy(out, m.writeLog)
	return out
}
