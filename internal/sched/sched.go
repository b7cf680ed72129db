// Package sched runs a job once per day at a fixed local time. The clock is
// injected (jonboulle/clockwork) so tests can drive it deterministically.
package sched

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimeOfDay is a wall-clock trigger time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour clock).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q (want HH:MM): %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Next returns the first instant at or after now matching the time of day.
func (t TimeOfDay) Next(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Job is the work invoked on each tick.
type Job func(ctx context.Context) error

// Config configures a Scheduler.
type Config struct {
	At     TimeOfDay
	Job    Job
	Clock  clockwork.Clock // nil means the real clock
	Logger *slog.Logger    // nil discards
}

// Scheduler invokes its job once per day at the configured time. The job
// runs synchronously on the scheduler's goroutine, so at most one invocation
// is ever in flight; a tick that arrives while a run is still going is
// effectively absorbed into the next day's schedule.
type Scheduler struct {
	at    TimeOfDay
	job   Job
	clock clockwork.Clock
	log   *slog.Logger
}

// New creates a Scheduler, filling config defaults.
func New(cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		at:    cfg.At,
		job:   cfg.Job,
		clock: cfg.Clock,
		log:   cfg.Logger,
	}
}

// Run blocks, firing the job at each daily tick, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		now := s.clock.Now()
		next := s.at.Next(now)
		s.log.Info("next sync scheduled", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(next.Sub(now)):
		}

		start := s.clock.Now()
		if err := s.job(ctx); err != nil {
			s.log.Error("scheduled sync failed", "error", err)
		} else {
			s.log.Info("scheduled sync finished", "duration", s.clock.Since(start).String())
		}
	}
}
