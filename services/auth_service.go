package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"duopet-backend/metrics"
	"duopet-backend/models"
)

// AuthService handles password login and account-wide logout.
type AuthService struct {
	users    UserStore
	tokens   *TokenService
	sessions *RefreshService
	audit    AuditRecorder
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewAuthService(users UserStore, tokens *TokenService, sessions *RefreshService, audit AuditRecorder, log logrus.FieldLogger, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &AuthService{users: users, tokens: tokens, sessions: sessions, audit: audit, log: log, now: now}
}

// Login verifies the credentials and opens a session. The suspension check
// runs only after the password matched.
func (s *AuthService) Login(ctx context.Context, loginID, password string, client ClientInfo) (*models.LoginResponse, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return nil, ErrBadRequest
	}

	user, err := s.Authenticate(ctx, loginID, password)
	if err != nil {
		reason := "bad_credentials"
		if !errors.Is(err, ErrUnauthorized) {
			reason = "error"
		}
		s.record(ctx, loginEvent(nil, loginID, "local", false, reason, client, s.now()))
		return nil, err
	}

	if user.IsSuspended() {
		s.record(ctx, loginEvent(user, loginID, "local", false, "suspended", client, s.now()))
		return nil, fmt.Errorf("%w: account suspended", ErrForbidden)
	}

	access, refresh, err := s.OpenSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.record(ctx, loginEvent(user, loginID, "local", true, "", client, s.now()))
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "login_id": loginID, "ip": client.IP}).Info("login succeeded")

	return &models.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Nickname:     user.Nickname,
		Role:         user.Role,
	}, nil
}

// Authenticate is the identity provider: lookup plus bcrypt comparison.
// Unknown ids, wrong passwords and withdrawn accounts all yield ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, loginID, password string) (*models.User, error) {
	user, err := s.users.FindByLoginID(ctx, loginID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	if user.IsWithdrawn() {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// OpenSession issues a token pair and persists the refresh record.
func (s *AuthService) OpenSession(ctx context.Context, user *models.User, client ClientInfo) (string, string, error) {
	access, _, err := s.tokens.Issue(user, models.CategoryAccess)
	if err != nil {
		return "", "", fmt.Errorf("%w: issue access token: %v", ErrInternal, err)
	}
	refresh, refreshExp, err := s.tokens.Issue(user, models.CategoryRefresh)
	if err != nil {
		return "", "", fmt.Errorf("%w: issue refresh token: %v", ErrInternal, err)
	}
	if err := s.sessions.Open(ctx, user.ID, refresh, refreshExp, client); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return access, refresh, nil
}

// Logout removes every refresh record of the token's owner. Expired access
// tokens are accepted as long as the signature holds; refresh tokens are not.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return ErrBadRequest
	}

	claims, err := s.tokens.Verify(accessToken, models.CategoryAccess)
	switch {
	case errors.Is(err, ErrTokenCategory):
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user, err := s.users.FindByLoginID(ctx, claims.Subject)
	if err != nil {
		return fmt.Errorf("%w: resolve user: %v", ErrInternal, err)
	}

	if _, err := s.sessions.RevokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return nil
}

func (s *AuthService) record(ctx context.Context, event models.LoginEvent) {
	result := "failure"
	if event.Success {
		result = "success"
	} else if event.Reason == "suspended" {
		result = "suspended"
	}
	metrics.LoginAttempts.WithLabelValues(result).Inc()

	if err := s.audit.Record(ctx, event); err != nil {
		s.log.WithError(err).WithField("login_id", event.LoginID).Warn("login audit failed")
	}
}

func loginEvent(user *models.User, loginID, provider string, success bool, reason string, client ClientInfo, at time.Time) models.LoginEvent {
	event := models.LoginEvent{
		ID:        uuid.NewString(),
		LoginID:   loginID,
		Provider:  provider,
		Success:   success,
		Reason:    reason,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		At:        at,
	}
	if user != nil {
		event.UserID = user.ID
	}
	return event
}
