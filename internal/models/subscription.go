package models

import (
	"time"
)

// SubscriptionKeys holds the client key material for a Web Push endpoint
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription represents one browser/device push endpoint for a user.
// A dead endpoint is deactivated, never deleted; only an explicit user
// request removes the row.
type PushSubscription struct {
	ID         string           `json:"id" db:"id"`
	UserID     string           `json:"user_id" db:"user_id"`
	Endpoint   string           `json:"endpoint" db:"endpoint"`
	Keys       SubscriptionKeys `json:"keys"`
	IsActive   bool             `json:"is_active" db:"is_active"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	LastUsedAt time.Time        `json:"last_used_at" db:"last_used_at"`
}

// HasValidKeys reports whether both key components are present
func (s *PushSubscription) HasValidKeys() bool {
	return s.Keys.P256dh != "" && s.Keys.Auth != ""
}
