package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"go.uber.org/zap"
)

type StreakService struct {
	userID   uuid.UUID
	store    StreakStore
	stats    *StatsTracker
	notifier MilestoneNotifier
	metrics  *Metrics
	logger   *zap.Logger

	state  Optimistic[models.CheckInStreak]
	stored bool
}

func NewStreakService(userID uuid.UUID, store StreakStore, stats *StatsTracker, notifier MilestoneNotifier, metrics *Metrics, logger *zap.Logger) *StreakService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreakService{
		userID:   userID,
		store:    store,
		stats:    stats,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		state:    NewOptimistic(models.CheckInStreak{UserID: userID}),
	}
}

// Load replaces local state with the stored row. A pending local update is
// dropped in favour of remote truth.
func (service *StreakService) Load(ctx context.Context) error {
	defer service.metrics.ObserveStore("load_streaks", time.Now())
	streaks, found, err := service.store.LoadStreaks(ctx, service.userID)
	if err != nil {
		return newPersistenceError("load streaks", err)
	}
	if !found {
		streaks = models.CheckInStreak{UserID: service.userID}
	}
	service.state.Adopt(streaks)
	service.stored = found
	return nil
}

func (service *StreakService) Streaks() models.CheckInStreak {
	return service.state.Value()
}

func (service *StreakService) Pending() bool {
	return service.state.Pending()
}

func (service *StreakService) OverallStreak(now time.Time, location *time.Location) int {
	return OverallStreak(service.state.Value(), now, location)
}

// CheckIn applies a check-in locally, then persists it. On persistence
// failure the computed update is still returned, flagged Pending, together
// with a *PersistenceError. A same-day repeat while an earlier save is still
// pending retries that save.
func (service *StreakService) CheckIn(ctx context.Context, period models.Period, now time.Time, location *time.Location) (StreakUpdate, error) {
	update := IncrementStreak(period, service.state.Value(), now, location)
	if !update.Changed {
		if service.state.Pending() {
			return service.RetryPending(ctx, now, location)
		}
		service.metrics.CheckIn(string(period), "unchanged")
		return update, nil
	}

	update.Streaks.UserID = service.userID
	service.state.Apply(update.Streaks)
	update.Pending = true
	return service.persist(ctx, period, update, now, location)
}

// RetryPending saves the pending row left by a failed check-in. Without
// pending state it reports an unchanged update.
func (service *StreakService) RetryPending(ctx context.Context, now time.Time, location *time.Location) (StreakUpdate, error) {
	confirmed := service.state.Confirmed()
	pending := service.state.Value()
	period, changed := changedPeriod(confirmed, pending)
	if !service.state.Pending() || !changed {
		service.state.Confirm()
		return StreakUpdate{
			Streaks:         pending,
			OverallStreak:   OverallStreak(pending, now, location),
			PreviousOverall: OverallStreak(pending, now, location),
		}, nil
	}

	pending.UserID = service.userID
	update := StreakUpdate{
		Period:          period,
		Streaks:         pending,
		OverallStreak:   OverallStreak(pending, now, location),
		PreviousOverall: OverallStreak(confirmed, now, location),
		IsFirstCheckIn:  confirmed.IsZero() && pending.Count(period) == 1,
		Changed:         true,
		Pending:         true,
	}
	service.logger.Debug("retrying pending streak save",
		zap.String("user_id", service.userID.String()),
		zap.String("period", string(period)),
	)
	// The retried save is stamped with the original check-in time so a
	// conflict recompute and the stats row land on that day.
	at := now
	if last := pending.LastCheckIn(period); last != nil {
		at = *last
	}
	return service.persist(ctx, period, update, at, location)
}

// changedPeriod finds the period whose last check-in differs between from
// and to.
func changedPeriod(from models.CheckInStreak, to models.CheckInStreak) (models.Period, bool) {
	for _, period := range models.Periods {
		before, after := from.LastCheckIn(period), to.LastCheckIn(period)
		switch {
		case before == nil && after == nil:
			continue
		case before == nil || after == nil:
			return period, true
		case !before.Equal(*after) || from.Count(period) != to.Count(period):
			return period, true
		}
	}
	return "", false
}

func (service *StreakService) persist(ctx context.Context, period models.Period, update StreakUpdate, now time.Time, location *time.Location) (StreakUpdate, error) {
	saved, err := service.save(ctx, period, update, now, location)
	if err != nil {
		saved.Pending = service.state.Pending()
		service.metrics.CheckIn(string(period), "pending")
		service.logger.Warn("streak update not persisted",
			zap.String("user_id", service.userID.String()),
			zap.String("period", string(period)),
			zap.Error(err),
		)
		return saved, err
	}
	update = saved
	update.Pending = service.state.Pending()
	if !update.Changed {
		service.metrics.CheckIn(string(period), "unchanged")
		return update, nil
	}
	service.metrics.CheckIn(string(period), "saved")

	if service.stats != nil {
		if err := service.stats.RecordCheckIn(ctx, update.OverallStreak, now); err != nil {
			service.logger.Warn("check-in stats not persisted",
				zap.String("user_id", service.userID.String()),
				zap.Error(err),
			)
		}
	}

	service.notifyMilestone(ctx, update)
	return update, nil
}

func (service *StreakService) save(ctx context.Context, period models.Period, update StreakUpdate, now time.Time, location *time.Location) (StreakUpdate, error) {
	streaks := update.Streaks
	if service.stored {
		if err := service.updateStreaks(ctx, &streaks); err != nil {
			return update, classifyRemoteError("update streaks", err)
		}
		service.state.Confirm()
		return update, nil
	}

	err := service.insertStreaks(ctx, &streaks)
	if err == nil {
		service.stored = true
		service.state.Confirm()
		return update, nil
	}
	if !errors.Is(err, ErrConflict) {
		return update, classifyRemoteError("insert streaks", err)
	}

	service.logger.Debug("streak row created elsewhere, adopting remote",
		zap.String("user_id", service.userID.String()),
	)
	remote, found, loadErr := service.store.LoadStreaks(ctx, service.userID)
	if loadErr != nil {
		return update, newPersistenceError("load streaks", loadErr)
	}
	if !found {
		return update, newPersistenceError("insert streaks", err)
	}
	service.state.Adopt(remote)
	service.stored = true

	recomputed := IncrementStreak(period, remote, now, location)
	if !recomputed.Changed {
		return recomputed, nil
	}
	recomputed.Streaks.UserID = service.userID
	service.state.Apply(recomputed.Streaks)
	streaks = recomputed.Streaks
	if err := service.updateStreaks(ctx, &streaks); err != nil {
		return recomputed, classifyRemoteError("update streaks", err)
	}
	service.state.Confirm()
	return recomputed, nil
}

func (service *StreakService) insertStreaks(ctx context.Context, streaks *models.CheckInStreak) error {
	defer service.metrics.ObserveStore("insert_streaks", time.Now())
	return service.store.InsertStreaks(ctx, streaks)
}

func (service *StreakService) updateStreaks(ctx context.Context, streaks *models.CheckInStreak) error {
	defer service.metrics.ObserveStore("update_streaks", time.Now())
	return service.store.UpdateStreaks(ctx, streaks)
}

func (service *StreakService) notifyMilestone(ctx context.Context, update StreakUpdate) {
	milestone, reached := ReachedMilestone(update.PreviousOverall, update.OverallStreak)
	if !reached || service.notifier == nil {
		return
	}
	if err := service.notifier.NotifyMilestone(ctx, service.userID, milestone); err != nil {
		service.logger.Warn("milestone notification failed",
			zap.String("user_id", service.userID.String()),
			zap.Int("milestone", milestone),
			zap.Error(err),
		)
	}
}
