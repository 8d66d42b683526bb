package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"go.uber.org/zap"
)

// StatsTracker holds the session copy of user_stats. The persistence side
// owns the level curve; the tracker adopts whatever it returns.
type StatsTracker struct {
	userID  uuid.UUID
	store   StatsStore
	metrics *Metrics
	logger  *zap.Logger
	stats   models.UserStats
}

func NewStatsTracker(userID uuid.UUID, store StatsStore, metrics *Metrics, logger *zap.Logger) *StatsTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsTracker{
		userID:  userID,
		store:   store,
		metrics: metrics,
		logger:  logger,
		stats:   models.NewUserStats(userID),
	}
}

func (tracker *StatsTracker) Load(ctx context.Context) error {
	defer tracker.metrics.ObserveStore("load_stats", time.Now())
	stats, err := tracker.store.LoadStats(ctx, tracker.userID)
	if err != nil {
		return newPersistenceError("load stats", err)
	}
	tracker.stats = stats
	return nil
}

func (tracker *StatsTracker) Stats() models.UserStats {
	return tracker.stats
}

func (tracker *StatsTracker) RecordCheckIn(ctx context.Context, overallStreak int, at time.Time) error {
	defer tracker.metrics.ObserveStore("record_check_in", time.Now())
	stats, err := tracker.store.RecordCheckIn(ctx, tracker.userID, overallStreak, at)
	if err != nil {
		return newPersistenceError("record check-in", err)
	}
	tracker.stats = stats
	return nil
}

// MergeCompletion applies the totals returned by complete_challenge. Both
// stores count a completion as an entry.
func (tracker *StatsTracker) MergeCompletion(result CompletionResult) {
	tracker.stats.TotalEntries++
	tracker.stats.TotalPoints = result.TotalPoints
	if result.Level >= 1 {
		tracker.stats.Level = result.Level
	} else {
		tracker.stats.Level = models.LevelForPoints(result.TotalPoints)
	}
}
