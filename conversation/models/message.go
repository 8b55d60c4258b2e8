package models

import (
	"strings"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message kinds. A message is either a text turn or a generated image;
// the kind tag decides which payload field is meaningful.
const (
	KindText  = "text"
	KindImage = "image"
)

// IntroPrefix marks synthesized external IDs. Messages carrying it are
// rendered from session state, never duplicated from the store.
const IntroPrefix = "intro-"

// Message is one turn in a conversation.
type Message struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	ExternalID     string    `json:"id" gorm:"uniqueIndex;not null"`
	ConversationID uint      `json:"conversation_id" gorm:"index;not null"`
	Role           string    `json:"role" gorm:"not null"`
	Kind           string    `json:"kind" gorm:"not null;default:'text'"`
	Content        string    `json:"content"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

// IsIntro reports whether the message was synthesized by the session
// rather than persisted as a real turn.
func (m *Message) IsIntro() bool {
	return strings.HasPrefix(m.ExternalID, IntroPrefix)
}
