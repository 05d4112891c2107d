package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"duopet-backend/models"
)

const userColumns = `user_id, login_id, user_pwd, nickname, user_email, role, status, provider, provider_id, suspended_until, created_at`

// UserRepository reads and updates the account columns the auth core needs.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u          models.User
		email      sql.NullString
		provider   sql.NullString
		providerID sql.NullString
		until      sql.NullTime
	)
	err := row.Scan(&u.ID, &u.LoginID, &u.Password, &u.Nickname, &email, &u.Role, &u.Status,
		&provider, &providerID, &until, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.Provider = provider.String
	u.ProviderID = providerID.String
	if until.Valid {
		t := until.Time
		u.SuspendedUntil = &t
	}
	return &u, nil
}

func (r *UserRepository) FindByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login_id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, loginID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Create inserts the user and fills in ID and CreatedAt.
// A taken login id yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (login_id, user_pwd, nickname, user_email, role, status, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING user_id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		u.LoginID, u.Password, u.Nickname, nullString(u.Email), u.Role, u.Status,
		nullString(u.Provider), nullString(u.ProviderID),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateStatus sets status and suspended_until of one account.
func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status string, until *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = $1, suspended_until = $2 WHERE user_id = $3`,
		status, nullTime(until), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindExpiredSuspensions lists suspended accounts whose lift time is at or before now.
func (r *UserRepository) FindExpiredSuspensions(ctx context.Context, now time.Time) ([]int64, error) {
	query := `SELECT user_id FROM users
		WHERE UPPER(status) = 'SUSPENDED' AND suspended_until IS NOT NULL AND suspended_until <= $1
		ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

// ReleaseSuspensions reactivates all ids in one statement.
func (r *UserRepository) ReleaseSuspensions(ctx context.Context, ids []int64) (int64, error) {
	query := `UPDATE users SET status = $1, suspended_until = NULL WHERE user_id = ANY($2)`

	res, err := r.db.ExecContext(ctx, query, models.StatusActive, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// CountUsers returns the number of accounts.
func (r *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
