package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNextRunAligned(t *testing.T) {
	s := New(Options{Interval: 6 * time.Hour, AlignToStart: true}, zerolog.Nop())

	now := time.Date(2025, time.July, 15, 8, 30, 0, 0, time.UTC)
	next := s.nextRun(now)
	want := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	// Exactly on a boundary moves to the following one.
	onBoundary := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	next = s.nextRun(onBoundary)
	if !next.Equal(onBoundary.Add(6 * time.Hour)) {
		t.Fatalf("next from boundary = %v", next)
	}
}

func TestNextRunUnaligned(t *testing.T) {
	s := New(Options{Interval: time.Hour}, zerolog.Nop())
	now := time.Date(2025, time.July, 15, 8, 30, 0, 0, time.UTC)
	if next := s.nextRun(now); !next.Equal(now.Add(time.Hour)) {
		t.Fatalf("next = %v", next)
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(Options{}, zerolog.Nop())
	if s.opts.Interval != 6*time.Hour {
		t.Fatalf("interval = %v, want 6h default", s.opts.Interval)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, func(context.Context, time.Time) error { return nil }); err == nil {
		t.Fatal("cancelled context must stop the loop with an error")
	}
}
