package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled execution. now is the time the tick fired.
type Job func(ctx context.Context, now time.Time) error

// CronScheduler runs a job on a cron schedule.
type CronScheduler struct {
	spec     string
	schedule cron.Schedule
	logger   *slog.Logger
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewCronScheduler parses a standard 5-field expression ("0 3 * * *") or a
// descriptor such as "@daily" or "@every 6h".
func NewCronScheduler(spec string, logger *slog.Logger) (*CronScheduler, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("scheduler: empty schedule")
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse %q: %w", spec, err)
	}
	return newWithSchedule(spec, sched, logger), nil
}

func newWithSchedule(spec string, sched cron.Schedule, logger *slog.Logger) *CronScheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CronScheduler{spec: spec, schedule: sched, logger: logger}
}

// Run executes job once right away and then at every scheduled time until ctx
// is done. Runs never overlap; a failed run is logged and the loop goes on.
func (c *CronScheduler) Run(ctx context.Context, job Job) error {
	if job == nil {
		return errors.New("scheduler: nil job")
	}

	c.runJob(ctx, job, time.Now())
	for {
		now := time.Now()
		next := c.schedule.Next(now)
		if next.IsZero() {
			return fmt.Errorf("scheduler: %q has no future activation", c.spec)
		}
		c.logger.Info("next scheduled run", "at", next, "in", next.Sub(now).Round(time.Second))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case fired := <-timer.C:
			c.runJob(ctx, job, fired)
		}
	}
}

func (c *CronScheduler) runJob(ctx context.Context, job Job, now time.Time) {
	if err := job(ctx, now); err != nil {
		c.logger.Error("scheduled run failed", "schedule", c.spec, "error", err)
	}
}
