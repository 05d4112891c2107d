package services

import (
	"context"
	"fmt"

	"duopet-backend/models"
)

// AdminService builds the admin login dashboard.
type AdminService struct {
	users UserStore
	audit AuditStats
}

func NewAdminService(users UserStore, audit AuditStats) *AdminService {
	if audit == nil {
		audit = NopAuditRecorder{}
	}
	return &AdminService{users: users, audit: audit}
}

// LoginStats combines the account count from PostgreSQL with the attempt
// counts from the audit store.
func (s *AdminService) LoginStats(ctx context.Context) (*models.LoginStats, error) {
	totalUsers, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	total, failed, err := s.audit.CountAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return &models.LoginStats{
		TotalUsers:     totalUsers,
		TotalAttempts:  total,
		FailedAttempts: failed,
	}, nil
}
