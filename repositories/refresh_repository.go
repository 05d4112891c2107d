package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"duopet-backend/models"
)

// RefreshRepository stores refresh-token records. Every method is a single
// statement; nothing here serialises concurrent writers for one user.
type RefreshRepository struct {
	db DBTX
}

func NewRefreshRepository(db DBTX) *RefreshRepository {
	return &RefreshRepository{db: db}
}

// Save inserts a record and returns its generated id.
func (r *RefreshRepository) Save(ctx context.Context, rt *models.RefreshToken) (int64, error) {
	query := `INSERT INTO refresh_token (user_id, refresh_token, ip_address, device_info, created_at, expires_at, token_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING token_id`

	status := rt.Status
	if status == "" {
		status = models.RefreshStatusActive
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rt.UserID, rt.Token, rt.IPAddress, rt.DeviceInfo, rt.CreatedAt, rt.ExpiresAt, status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	rt.ID = id
	rt.Status = status
	return id, nil
}

// DeleteByID removes one record. A missing row is not an error.
func (r *RefreshRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_token WHERE token_id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every record of the user and reports how many went.
func (r *RefreshRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_token WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// FindIDByUserAndToken returns the id of the record holding token for userID.
func (r *RefreshRepository) FindIDByUserAndToken(ctx context.Context, userID int64, token string) (int64, error) {
	query := `SELECT token_id FROM refresh_token WHERE user_id = $1 AND refresh_token = $2 ORDER BY token_id LIMIT 1`

	var id int64
	err := r.db.QueryRowContext(ctx, query, userID, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// UpdateTokenByID replaces the stored token string of one record.
func (r *RefreshRepository) UpdateTokenByID(ctx context.Context, id int64, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE refresh_token SET refresh_token = $1 WHERE token_id = $2`, token, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// TouchSession refreshes the device metadata of the active record matching
// (userID, token) in one statement. Zero rows means the session was revoked.
func (r *RefreshRepository) TouchSession(ctx context.Context, userID int64, token, ip, device string, now time.Time) (int64, error) {
	query := `UPDATE refresh_token
		SET ip_address = $3, device_info = $4, last_used_at = $5
		WHERE user_id = $1 AND refresh_token = $2 AND token_status = $6`

	res, err := r.db.ExecContext(ctx, query, userID, token, ip, device, now, models.RefreshStatusActive)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
