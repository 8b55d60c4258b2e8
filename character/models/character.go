package models

import (
	"time"
)

// Character is a persona the reply generator is asked to emulate.
type Character struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;index"`
	Series      string    `json:"series" gorm:"not null;index"`
	Age         int       `json:"age"`
	Description string    `json:"description" gorm:"not null"`
	Personality string    `json:"personality" gorm:"not null;type:text"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCharacterRequest is the payload for adding a persona to the catalog
type CreateCharacterRequest struct {
	Name        string `json:"name" binding:"required"`
	Series      string `json:"series" binding:"required"`
	Age         int    `json:"age"`
	Description string `json:"description" binding:"required"`
	Personality string `json:"personality" binding:"required"`
	AvatarURL   string `json:"avatar_url"`
}
