package services

import (
	"context"
	"testing"
	"time"
)

func TestMidnightSchedulerRearmsForEachLocalMidnight(t *testing.T) {
	location := mustLocation(t, "America/New_York")
	clock := &testClock{now: time.Date(2026, time.March, 7, 22, 0, 0, 0, location)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delays []time.Duration
	refreshes := 0
	scheduler := NewMidnightScheduler(location, func(context.Context) error {
		refreshes++
		if refreshes == 2 {
			cancel()
		}
		return nil
	}, nil)
	scheduler.now = clock.Now
	scheduler.after = func(delay time.Duration) (<-chan time.Time, func() bool) {
		delays = append(delays, delay)
		clock.Advance(delay)
		fired := make(chan time.Time, 1)
		fired <- clock.Now()
		return fired, func() bool { return true }
	}

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop")
	}

	if refreshes != 2 {
		t.Fatalf("expected two refreshes, got %d", refreshes)
	}
	if len(delays) < 2 || delays[0] != 2*time.Hour || delays[1] != 23*time.Hour {
		t.Fatalf("expected 2h then a 23h spring-forward day, got %v", delays)
	}
}

func TestMidnightSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := false
	scheduler := NewMidnightScheduler(time.UTC, func(context.Context) error {
		t.Fatalf("refresh should not run")
		return nil
	}, nil)
	scheduler.after = func(time.Duration) (<-chan time.Time, func() bool) {
		cancel()
		return make(chan time.Time), func() bool {
			stopped = true
			return true
		}
	}

	scheduler.Run(ctx)

	if !stopped {
		t.Fatalf("expected timer to be stopped on cancel")
	}
}
