package models

import (
	"time"
)

// DefaultTitle is used until the first user message names the conversation
const DefaultTitle = "New Conversation"

// Conversation groups the messages a user exchanged with one character.
// UserID 0 is never stored; ephemeral sessions live only in memory.
type Conversation struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ExternalID    string    `json:"external_id" gorm:"uniqueIndex;not null"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	CharacterID   uint      `json:"character_id" gorm:"index;not null"`
	CharacterName string    `json:"character_name"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`
}
