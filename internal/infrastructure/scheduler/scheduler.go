package scheduler

import (
	"context"
	"time"

	"pulsechat/pkg/logger"
)

// DailyJob runs fn once per day at the given UTC hour. Runs are sequential;
// the job itself must be idempotent (safe to re-run after a missed or
// duplicated trigger).
type DailyJob struct {
	name    string
	hourUTC int
	fn      func(ctx context.Context) error
}

func NewDailyJob(name string, hourUTC int, fn func(ctx context.Context) error) *DailyJob {
	return &DailyJob{
		name:    name,
		hourUTC: hourUTC,
		fn:      fn,
	}
}

// Start launches the job loop in a goroutine until ctx is done.
func (j *DailyJob) Start(ctx context.Context) {
	go func() {
		for {
			wait := j.untilNextRun(time.Now().UTC())
			logger.Info("Job %s scheduled in %s", j.name, wait)

			select {
			case <-time.After(wait):
				if err := j.fn(ctx); err != nil {
					logger.Error("Job %s failed: %v", j.name, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *DailyJob) untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
