package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"duopet-backend/models"
)

// RefreshService owns the lifecycle of stored refresh records. A record's
// presence decides revocation; the token's own exp decides validity.
type RefreshService struct {
	store RefreshStore
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewRefreshService(store RefreshStore, log logrus.FieldLogger, now func() time.Time) *RefreshService {
	if now == nil {
		now = time.Now
	}
	return &RefreshService{store: store, log: log, now: now}
}

// Open records a freshly issued refresh token. expiresAt is the token's exp claim.
func (s *RefreshService) Open(ctx context.Context, userID int64, token string, expiresAt time.Time, client ClientInfo) error {
	_, err := s.store.Save(ctx, &models.RefreshToken{
		UserID:     userID,
		Token:      token,
		IPAddress:  client.IP,
		DeviceInfo: client.UserAgent,
		CreatedAt:  s.now(),
		ExpiresAt:  expiresAt,
		Status:     models.RefreshStatusActive,
	})
	if err != nil {
		return fmt.Errorf("save refresh record: %w", err)
	}
	return nil
}

// Touch updates the device metadata of the live record for (userID, token).
// It fails with ErrUnauthorized when no such record exists.
func (s *RefreshService) Touch(ctx context.Context, userID int64, token string, client ClientInfo) error {
	n, err := s.store.TouchSession(ctx, userID, token, client.IP, client.UserAgent, s.now())
	if err != nil {
		return fmt.Errorf("touch refresh record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: refresh record revoked", ErrUnauthorized)
	}
	return nil
}

// Revoke deletes the record holding token, if any. Absence is not an error.
func (s *RefreshService) Revoke(ctx context.Context, userID int64, token string) error {
	id, err := s.store.FindIDByUserAndToken(ctx, userID, token)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find refresh record: %w", err)
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}

// RevokeAll deletes every record of the user.
func (s *RefreshService) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	n, err := s.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh records: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "records": n}).Info("refresh records revoked")
	return n, nil
}
