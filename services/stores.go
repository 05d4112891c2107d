package services

import (
	"context"
	"time"

	"duopet-backend/models"
)

// UserStore is the account persistence the services depend on.
type UserStore interface {
	FindByLoginID(ctx context.Context, loginID string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateStatus(ctx context.Context, id int64, status string, until *time.Time) error
	CountUsers(ctx context.Context) (int64, error)
}

// RefreshStore persists refresh-token records.
type RefreshStore interface {
	Save(ctx context.Context, rt *models.RefreshToken) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	FindIDByUserAndToken(ctx context.Context, userID int64, token string) (int64, error)
	TouchSession(ctx context.Context, userID int64, token, ip, device string, now time.Time) (int64, error)
}

// ClientInfo describes the device a request came from.
type ClientInfo struct {
	IP        string
	UserAgent string
}
