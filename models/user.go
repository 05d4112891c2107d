package models

import (
	"strings"
	"time"
)

// Account statuses
const (
	StatusActive     = "active"
	StatusSuspended  = "suspended"
	StatusSocialTemp = "social_temp"
	StatusInactive   = "inactive"
)

// Roles
const (
	RoleUser    = "USER"
	RoleAdmin   = "ADMIN"
	RoleVet     = "VET"
	RoleShelter = "SHELTER"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"userPwd" binding:"required"`
}

// SignupRequest is the body of POST /users/signup
type SignupRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"userPwd" binding:"required,min=4"`
	Nickname string `json:"nickname" binding:"required"`
	Email    string `json:"email"`
}

// User represents the account subset the auth core works with
type User struct {
	ID             int64      `json:"userId"`
	LoginID        string     `json:"loginId"`
	Password       string     `json:"-"` // bcrypt hash
	Nickname       string     `json:"nickname"`
	Email          string     `json:"email,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	Provider       string     `json:"provider,omitempty"`
	ProviderID     string     `json:"providerId,omitempty"`
	SuspendedUntil *time.Time `json:"suspendedUntil,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// IsSuspended reports whether login must be refused for this account.
// suspended_until is not consulted; only the scheduler lifts a suspension.
func (u *User) IsSuspended() bool {
	return strings.EqualFold(u.Status, StatusSuspended)
}

// IsWithdrawn reports whether the account was closed by its owner.
func (u *User) IsWithdrawn() bool {
	return strings.EqualFold(u.Status, StatusInactive)
}
