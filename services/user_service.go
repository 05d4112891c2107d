package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"duopet-backend/models"
	"duopet-backend/repositories"
)

// Suspension actions accepted by the admin API.
const (
	ActionBlock3Days     = "BLOCK_3DAYS"
	ActionBlock7Days     = "BLOCK_7DAYS"
	ActionBlock1Month    = "BLOCK_1MONTH"
	ActionBlockPermanent = "BLOCK_PERMANENT"
)

// UserService covers signup and admin status changes.
type UserService struct {
	users UserStore
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewUserService(users UserStore, log logrus.FieldLogger, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, log: log, now: now}
}

// Signup creates an active USER account with a bcrypt-hashed password.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	loginID := strings.TrimSpace(req.LoginID)
	nickname := strings.TrimSpace(req.Nickname)
	if loginID == "" || nickname == "" || req.Password == "" {
		return nil, ErrBadRequest
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}

	user := &models.User{
		LoginID:  loginID,
		Password: string(hashed),
		Nickname: nickname,
		Email:    strings.TrimSpace(req.Email),
		Role:     models.RoleUser,
		Status:   models.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: login id taken", ErrConflict)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "login_id": user.LoginID}).Info("user created")
	return user, nil
}

// SuspensionEnd returns when a suspension started now should lift. A nil
// result means the suspension never lifts on its own.
func SuspensionEnd(action string, now time.Time) (*time.Time, error) {
	var until time.Time
	switch strings.ToUpper(action) {
	case ActionBlock3Days:
		until = now.AddDate(0, 0, 3)
	case ActionBlock7Days:
		until = now.AddDate(0, 0, 7)
	case ActionBlock1Month:
		until = now.AddDate(0, 1, 0)
	case ActionBlockPermanent:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrBadRequest, action)
	}
	return &until, nil
}

// Suspend blocks the account according to action.
func (s *UserService) Suspend(ctx context.Context, userID int64, action string) (*time.Time, error) {
	until, err := SuspensionEnd(action, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateStatus(ctx, userID, models.StatusSuspended, until); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "action": action}).Info("user suspended")
	return until, nil
}

// Unsuspend reactivates the account immediately.
func (s *UserService) Unsuspend(ctx context.Context, userID int64) error {
	if err := s.users.UpdateStatus(ctx, userID, models.StatusActive, nil); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.log.WithField("user_id", userID).Info("user unsuspended")
	return nil
}
