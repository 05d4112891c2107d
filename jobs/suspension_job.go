package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"duopet-backend/metrics"
	"duopet-backend/repositories"
)

const defaultRunTimeout = time.Minute

// SuspensionJob reactivates accounts whose suspension period has ended.
// Permanent suspensions carry no end time and are never touched.
type SuspensionJob struct {
	db      *sql.DB
	log     logrus.FieldLogger
	now     func() time.Time
	timeout time.Duration
}

func NewSuspensionJob(db *sql.DB, log logrus.FieldLogger, now func() time.Time) *SuspensionJob {
	if now == nil {
		now = time.Now
	}
	return &SuspensionJob{db: db, log: log, now: now, timeout: defaultRunTimeout}
}

// Run releases every expired suspension in a single transaction and returns
// how many accounts were reactivated. Any error rolls the whole batch back.
func (j *SuspensionJob) Run(ctx context.Context) (int64, error) {
	now := j.now()
	var released int64

	err := repositories.WithTx(ctx, j.db, nil, func(ctx context.Context, tx repositories.DBTX) error {
		users := repositories.NewUserRepository(tx)

		ids, err := users.FindExpiredSuspensions(ctx, now)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		released, err = users.ReleaseSuspensions(ctx, ids)
		return err
	})
	if err != nil {
		j.log.WithError(err).Error("suspension release aborted")
		return 0, err
	}

	if released == 0 {
		j.log.Debug("no expired suspensions")
		return 0, nil
	}
	metrics.SuspensionsReleased.Add(float64(released))
	j.log.WithField("released", released).Info("expired suspensions released")
	return released, nil
}

// Schedule registers Run on a cron spec and starts the scheduler. The
// returned cron must be stopped by the caller.
func (j *SuspensionJob) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.PrintfLogger(j.log)),
		cron.SkipIfStillRunning(cron.PrintfLogger(j.log)),
	))

	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.Run(ctx)
	}); err != nil {
		return nil, err
	}

	c.Start()
	j.log.WithField("schedule", spec).Info("suspension scheduler started")
	return c, nil
}
