package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"duopet-backend/models"
)

var userCols = []string{"user_id", "login_id", "user_pwd", "nickname", "user_email", "role", "status", "provider", "provider_id", "suspended_until", "created_at"}

func newUserRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewUserRepository(db), mock, db
}

func TestFindByLoginID_Found(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	until := created.Add(72 * time.Hour)
	rows := sqlmock.NewRows(userCols).
		AddRow(int64(3), "mong", "hash", "Mong", nil, "USER", "suspended", nil, nil, until, created)
	mock.ExpectQuery(`(?s)^SELECT\s+user_id,.*FROM\s+users\s+WHERE\s+login_id\s*=\s*\$1\s*$`).
		WithArgs("mong").
		WillReturnRows(rows)

	u, err := repo.FindByLoginID(context.Background(), "mong")
	if err != nil {
		t.Fatalf("FindByLoginID error: %v", err)
	}
	if u.ID != 3 || u.Nickname != "Mong" || u.Email != "" || !u.IsSuspended() {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.SuspendedUntil == nil || !u.SuspendedUntil.Equal(until) {
		t.Fatalf("suspended_until not scanned: %v", u.SuspendedUntil)
	}
}

func TestFindByLoginID_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+login_id`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByLoginID(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+user_id`).
		WithArgs(int64(9)).
		WillReturnError(errors.New("conn reset"))

	_, err := repo.FindByID(context.Background(), 9)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("want wrapped db error, got %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{LoginID: "mong", Password: "h", Nickname: "M", Role: models.RoleUser, Status: models.StatusActive})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users.*RETURNING\s+user_id,\s*created_at\s*$`).
		WithArgs("kakao_1", "h", "Kim", "k@x.io", models.RoleUser, models.StatusSocialTemp, "kakao", "1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at"}).AddRow(int64(12), created))

	u := &models.User{LoginID: "kakao_1", Password: "h", Nickname: "Kim", Email: "k@x.io", Role: models.RoleUser,
		Status: models.StatusSocialTemp, Provider: "kakao", ProviderID: "1"}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 12 || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+status\s*=\s*\$1,\s*suspended_until\s*=\s*\$2\s+WHERE\s+user_id\s*=\s*\$3\s*$`).
		WithArgs(models.StatusActive, nil, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 4, models.StatusActive, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindExpiredSuspensions(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)^SELECT\s+user_id\s+FROM\s+users\s+WHERE\s+UPPER\(status\)\s*=\s*'SUSPENDED'\s+AND\s+suspended_until\s+IS\s+NOT\s+NULL\s+AND\s+suspended_until\s*<=\s*\$1`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)).AddRow(int64(5)))

	ids, err := repo.FindExpiredSuspensions(context.Background(), now)
	if err != nil {
		t.Fatalf("FindExpiredSuspensions error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 5 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestReleaseSuspensions(t *testing.T) {
	repo, mock, db := newUserRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+status\s*=\s*\$1,\s*suspended_until\s*=\s*NULL\s+WHERE\s+user_id\s*=\s*ANY\(\$2\)\s*$`).
		WithArgs(models.StatusActive, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ReleaseSuspensions(context.Background(), []int64{1, 5})
	if err != nil || n != 2 {
		t.Fatalf("want 2 rows, got %d (%v)", n, err)
	}
}
