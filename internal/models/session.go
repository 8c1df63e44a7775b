package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one continuous check-in-to-check-out interval for a user.
// CheckoutAt is nil while the user is still in the room; at most one
// such open session may exist per user at any time.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CheckinAt   time.Time  `json:"checkin_at"`
	CheckoutAt  *time.Time `json:"checkout_at,omitempty"`
	DurationSec int        `json:"duration_sec"`
	// ClockSkew marks sessions whose raw checkout-checkin delta was
	// negative and got clamped to zero; kept for audit.
	ClockSkew bool `json:"clock_skew,omitempty"`
}

func (s *Session) IsActive() bool {
	return s.CheckoutAt == nil
}

type SessionHistoryItem struct {
	ID          uuid.UUID  `json:"id"`
	CheckinAt   time.Time  `json:"checkin_at"`
	CheckoutAt  *time.Time `json:"checkout_at,omitempty"`
	DurationSec int        `json:"duration_sec"`
	IsActive    bool       `json:"is_active"`
}

type CheckRequest struct {
	StudentNo string `json:"student_no"`
	PIN       string `json:"pin"`
}
