package models

import "time"

// LoginEvent is one audited login attempt, stored in MongoDB
type LoginEvent struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    int64     `bson:"user_id,omitempty" json:"user_id,omitempty"`
	LoginID   string    `bson:"login_id" json:"login_id"`
	Provider  string    `bson:"provider" json:"provider"`
	Success   bool      `bson:"success" json:"success"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
	IP        string    `bson:"ip" json:"ip"`
	UserAgent string    `bson:"user_agent" json:"user_agent"`
	At        time.Time `bson:"at" json:"at"`
}

// LoginStats summarises users and audited attempts for the admin dashboard
type LoginStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalAttempts  int64 `json:"total_attempts"`
	FailedAttempts int64 `json:"failed_attempts"`
}
