package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"duopet-backend/models"
)

var signingMethod = jwt.SigningMethodHS512

// TokenService issues and parses the HS512 access and refresh tokens.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService builds a codec. A nil now defaults to time.Now.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}
}

// Issue signs a token of the given category for user and returns it with its expiry.
func (s *TokenService) Issue(user *models.User, category string) (string, time.Time, error) {
	var ttl time.Duration
	switch category {
	case models.CategoryAccess:
		ttl = s.accessTTL
	case models.CategoryRefresh:
		ttl = s.refreshTTL
	default:
		return "", time.Time{}, fmt.Errorf("unknown token category %q", category)
	}

	now := s.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims := models.Claims{
		UserNo:   user.ID,
		Nickname: user.Nickname,
		Role:     user.Role,
		Category: category,
		RegisteredClaims: jwt.RegisteredClaims{
			// unique per token so same-second logins on two devices differ
			ID:        uuid.NewString(),
			Subject:   user.LoginID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Time, nil
}

// ParseClaims verifies the signature and returns the claims. An expired but
// correctly signed token still yields its claims with a nil error.
func (s *TokenService) ParseClaims(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	claims := &models.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		// signature is checked before claims validation
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// Verify parses the token and rejects it unless it carries the expected category.
func (s *TokenService) Verify(tokenString, category string) (*models.Claims, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Category != category {
		return nil, ErrTokenCategory
	}
	return claims, nil
}

// ClaimsExpired reports whether claims are at or past their expiry. Claims
// without an expiry count as expired.
func (s *TokenService) ClaimsExpired(claims *models.Claims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// Remaining returns how long claims stay valid, never negative.
func (s *TokenService) Remaining(claims *models.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	d := claims.ExpiresAt.Sub(s.now())
	if d < 0 {
		return 0
	}
	return d
}

// IsExpired reports whether a correctly signed token is at or past its expiry.
func (s *TokenService) IsExpired(tokenString string) (bool, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return false, err
	}
	return s.ClaimsExpired(claims), nil
}

// Subject returns the login id the token was issued to.
func (s *TokenService) Subject(tokenString string) (string, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Role returns the role claim.
func (s *TokenService) Role(tokenString string) (string, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// Category returns "access" or "refresh".
func (s *TokenService) Category(tokenString string) (string, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Category, nil
}

// UserID returns the numeric user id (the userNo claim).
func (s *TokenService) UserID(tokenString string) (int64, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserNo, nil
}

// Expiration returns the exp claim. A token without one is invalid.
func (s *TokenService) Expiration(tokenString string) (time.Time, error) {
	claims, err := s.ParseClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}
