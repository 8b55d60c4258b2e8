package models

import (
	"time"
)

// Subscription statuses as reported by the payment provider.
const (
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Subscription tracks a user's paid plan state as mirrored from the
// payment provider's webhooks.
type Subscription struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	ProviderCustomerID string    `json:"-" gorm:"index"`
	ProviderSubID      string    `json:"-" gorm:"index"`
	Status             string    `json:"status" gorm:"not null;default:'canceled'"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Entitled reports whether the subscription currently grants access.
// A past-due subscription keeps access until the paid period runs out.
func (s *Subscription) Entitled(now time.Time) bool {
	switch s.Status {
	case StatusActive:
		return true
	case StatusPastDue:
		return now.Before(s.CurrentPeriodEnd)
	default:
		return false
	}
}
