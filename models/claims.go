package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token categories carried in the "category" claim.
const (
	CategoryAccess  = "access"
	CategoryRefresh = "refresh"
)

// Claims defines the structure of the JWT claims.
// Subject holds the login id.
type Claims struct {
	UserNo   int64  `json:"userNo"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	Category string `json:"category"`
	jwt.RegisteredClaims
}

// LoginID returns the subject of the token.
func (c *Claims) LoginID() string {
	return c.Subject
}
