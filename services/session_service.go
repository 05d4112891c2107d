package services

import (
	"fmt"
	"time"

	"duopet-backend/models"
)

// ExtendPopupThreshold is the remaining lifetime under which clients should
// offer to extend the login.
const ExtendPopupThreshold = 5 * time.Minute

// SessionService reports how long the caller's access token stays valid.
type SessionService struct {
	tokens *TokenService
}

func NewSessionService(tokens *TokenService) *SessionService {
	return &SessionService{tokens: tokens}
}

func (s *SessionService) Check(accessToken string) (*models.SessionStatus, error) {
	claims, err := s.tokens.Verify(accessToken, models.CategoryAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if s.tokens.ClaimsExpired(claims) {
		return nil, ErrTokenExpired
	}

	remaining := s.tokens.Remaining(claims)
	return &models.SessionStatus{
		RemainingTimeMs: remaining.Milliseconds(),
		ShowExtendPopup: remaining <= ExtendPopupThreshold,
	}, nil
}
