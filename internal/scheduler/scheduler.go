package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunFunc is invoked once per scheduled interval with the run's reference
// date.
type RunFunc func(ctx context.Context, runDate time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
}

// Scheduler drives repeated pipeline runs in watch mode. The source site
// refreshes its tables daily, so intervals are coarse and runs are aligned
// to interval boundaries to keep reference dates predictable.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 6 * time.Hour
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking fn at each interval until ctx is cancelled. A
// failed run is logged and the loop continues; the next run starts from
// the previous published state.
func (s *Scheduler) Run(ctx context.Context, fn RunFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := sleep(ctx, s.opts.StartupDelay); err != nil {
			return err
		}
	}

	next := s.nextRun(time.Now().UTC())
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = s.nextRun(time.Now().UTC())
			delay = time.Until(next)
		}

		s.logger.Debug().Time("next_run", next).Msg("waiting for next run")
		if err := sleep(ctx, delay); err != nil {
			return err
		}

		runDate := next
		if s.opts.AlignToStart {
			runDate = next.Truncate(s.opts.Interval)
		}
		s.logger.Info().Time("run", runDate).Msg("starting scheduled run")

		if err := fn(ctx, runDate); err != nil {
			s.logger.Error().Err(err).Time("run", runDate).Msg("scheduled run failed")
		}

		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	if !s.opts.AlignToStart {
		return now.Add(s.opts.Interval)
	}
	next := now.Truncate(s.opts.Interval)
	if !next.After(now) {
		next = next.Add(s.opts.Interval)
	}
	return next
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
