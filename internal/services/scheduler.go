package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MidnightScheduler runs refresh at every local midnight. Each wait is a
// single-shot timer armed for the next calendar midnight, so DST days are
// 23 or 25 hours long.
type MidnightScheduler struct {
	location *time.Location
	refresh  func(context.Context) error
	logger   *zap.Logger
	now      func() time.Time
	after    func(time.Duration) (<-chan time.Time, func() bool)
}

func NewMidnightScheduler(location *time.Location, refresh func(context.Context) error, logger *zap.Logger) *MidnightScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MidnightScheduler{
		location: resolveLocation(location),
		refresh:  refresh,
		logger:   logger,
		now:      time.Now,
		after: func(delay time.Duration) (<-chan time.Time, func() bool) {
			timer := time.NewTimer(delay)
			return timer.C, timer.Stop
		},
	}
}

func (scheduler *MidnightScheduler) NextRun() time.Time {
	return NextLocalMidnight(scheduler.now(), scheduler.location)
}

// Run blocks until ctx is done.
func (scheduler *MidnightScheduler) Run(ctx context.Context) {
	for ctx.Err() == nil {
		next := scheduler.NextRun()
		delay := next.Sub(scheduler.now())
		if delay < 0 {
			delay = 0
		}
		fired, stop := scheduler.after(delay)

		select {
		case <-ctx.Done():
			stop()
			return
		case <-fired:
		}

		scheduler.logger.Info("midnight refresh", zap.Time("scheduled_for", next))
		if err := scheduler.refresh(ctx); err != nil {
			scheduler.logger.Warn("midnight refresh failed", zap.Error(err))
		}
	}
}

func (scheduler *MidnightScheduler) Start(ctx context.Context) {
	go scheduler.Run(ctx)
}
