package services

import (
	"time"

	"github.com/terraincognita07/dailyglow/internal/models"
)

var StreakMilestones = []int{3, 7, 14, 30, 60, 90}

type StreakUpdate struct {
	Period          models.Period        `json:"period"`
	Streaks         models.CheckInStreak `json:"streaks"`
	OverallStreak   int                  `json:"overall_streak"`
	PreviousOverall int                  `json:"previous_overall"`
	IsFirstCheckIn  bool                 `json:"is_first_check_in"`
	Changed         bool                 `json:"changed"`
	Pending         bool                 `json:"pending"`
}

// IncrementStreak computes the streak state after a check-in for period at
// now. A second check-in for the same period on the same local day leaves the
// counter untouched.
func IncrementStreak(period models.Period, streaks models.CheckInStreak, now time.Time, location *time.Location) StreakUpdate {
	update := StreakUpdate{
		Period:          period,
		Streaks:         streaks,
		PreviousOverall: OverallStreak(streaks, now, location),
	}

	current := streaks.Count(period)
	next := 1
	if last := streaks.LastCheckIn(period); last != nil {
		switch gap := DaysBetweenLocal(*last, now, location); {
		case gap <= 0:
			update.OverallStreak = update.PreviousOverall
			return update
		case gap == 1:
			next = current + 1
		}
	}

	checkedInAt := now
	update.Streaks = streaks.Set(period, next, &checkedInAt)
	update.Changed = true
	update.IsFirstCheckIn = streaks.IsZero() && next == 1
	update.OverallStreak = OverallStreak(update.Streaks, now, location)
	return update
}

// LiveCount reads a period counter, treating it as 0 once the last check-in
// is more than one local day before now.
func LiveCount(streaks models.CheckInStreak, period models.Period, now time.Time, location *time.Location) int {
	last := streaks.LastCheckIn(period)
	if last == nil {
		return 0
	}
	if DaysBetweenLocal(*last, now, location) > 1 {
		return 0
	}
	return streaks.Count(period)
}

func LiveStreaks(streaks models.CheckInStreak, now time.Time, location *time.Location) models.CheckInStreak {
	live := streaks
	for _, period := range models.Periods {
		live = live.Set(period, LiveCount(streaks, period, now, location), streaks.LastCheckIn(period))
	}
	return live
}

// OverallStreak is the largest live period counter.
func OverallStreak(streaks models.CheckInStreak, now time.Time, location *time.Location) int {
	overall := 0
	for _, period := range models.Periods {
		if count := LiveCount(streaks, period, now, location); count > overall {
			overall = count
		}
	}
	return overall
}

func ReachedMilestone(previous int, next int) (int, bool) {
	if next <= previous {
		return 0, false
	}
	for _, milestone := range StreakMilestones {
		if next == milestone {
			return milestone, true
		}
	}
	return 0, false
}
