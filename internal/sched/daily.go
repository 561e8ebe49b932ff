// Package sched runs the daily summary job at a fixed UTC time.
package sched

import (
	"context"
	"log/slog"
	"time"
)

// Daily fires a job once a day at the configured UTC wall-clock time.
type Daily struct {
	hour   int
	minute int
	logger *slog.Logger

	// now is swapped out by tests.
	now func() time.Time
}

// NewDaily schedules a job at hour:minute UTC.
func NewDaily(hour, minute int, logger *slog.Logger) *Daily {
	return &Daily{hour: hour, minute: minute, logger: logger, now: time.Now}
}

// NextRun returns the next hour:minute UTC occurrence strictly after
// now.
func NextRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks, invoking fn at each scheduled time until ctx is
// cancelled. A failing job is logged and the schedule continues.
func (d *Daily) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	for {
		now := d.now().UTC()
		next := NextRun(now, d.hour, d.minute)
		d.logger.Info("next summary scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err := fn(ctx); err != nil {
			d.logger.Error("scheduled job failed", "error", err)
		}
	}
}
