package jobs

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newJobWithMock(t *testing.T) (*SuspensionJob, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSuspensionJob(db, log, func() time.Time { return fixedNow }), mock
}

func TestRun_ReleasesExpired(t *testing.T) {
	job, mock := newJobWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM users`).
		WithArgs(fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(3)).AddRow(int64(8)))
	mock.ExpectExec(`UPDATE users SET status = \$1, suspended_until = NULL WHERE user_id = ANY\(\$2\)`).
		WithArgs("active", pq.Array([]int64{3, 8})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_NothingToRelease(t *testing.T) {
	job, mock := newJobWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM users`).
		WithArgs(fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectCommit()

	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_UpdateFailureRollsBack(t *testing.T) {
	job, mock := newJobWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM users`).
		WithArgs(fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(3)))
	mock.ExpectExec(`UPDATE users`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	n, err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_BeginFailure(t *testing.T) {
	job, mock := newJobWithMock(t)
	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestSchedule_RejectsBadSpec(t *testing.T) {
	job, _ := newJobWithMock(t)

	_, err := job.Schedule("every hour please")
	assert.Error(t, err)

	c, err := job.Schedule("0 * * * *")
	require.NoError(t, err)
	<-c.Stop().Done()
}
