package service

import (
	"context"
	"log/slog"
	"time"
)

// DateFormat is the wire format for run dates.
const DateFormat = "2006-01-02"

// Today returns the current UTC date.
func Today() string {
	return time.Now().UTC().Format(DateFormat)
}

// Tomorrow returns the next UTC date.
func Tomorrow() string {
	return time.Now().UTC().AddDate(0, 0, 1).Format(DateFormat)
}

// Scheduler triggers one batch run per day at a fixed UTC hour.
type Scheduler struct {
	batch   *Batch
	hourUTC int
	logger  *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewScheduler creates a daily scheduler.
func NewScheduler(batch *Batch, hourUTC int, logger *slog.Logger) *Scheduler {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 5
	}
	return &Scheduler{batch: batch, hourUTC: hourUTC, logger: logger, now: time.Now}
}

// NextRun returns the next scheduled run time strictly after now.
func (s *Scheduler) NextRun() time.Time {
	now := s.now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Run blocks until the context is cancelled, firing a generation run for
// the current date at each scheduled time. Run errors are logged, never
// fatal; the scheduler always arms the next day.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.NextRun()
		s.logger.Info("daily generation scheduled",
			slog.Time("next_run", next),
			slog.Int("hour_utc", s.hourUTC))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopping")
			return
		case <-timer.C:
		}

		date := s.now().UTC().Format(DateFormat)
		if _, err := s.batch.GenerateForDate(ctx, date); err != nil {
			s.logger.Error("scheduled generation run failed",
				slog.String("target_date", date),
				slog.String("error", err.Error()))
		}
	}
}
