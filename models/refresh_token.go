package models

import "time"

const RefreshStatusActive = "ACTIVE"

// RefreshToken is one persisted refresh record. Token holds the encoded refresh JWT.
type RefreshToken struct {
	ID         int64
	UserID     int64
	Token      string
	IPAddress  string
	DeviceInfo string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt *time.Time
	Status     string
}
