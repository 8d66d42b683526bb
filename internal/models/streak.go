package models

import (
	"time"

	"github.com/google/uuid"
)

type Period string

const (
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodEvening   Period = "evening"
)

var Periods = []Period{PeriodMorning, PeriodAfternoon, PeriodEvening}

// CheckInStreak holds one counter and one last check-in timestamp per period.
type CheckInStreak struct {
	UserID               uuid.UUID  `gorm:"type:text;primaryKey" json:"user_id"`
	Morning              int        `gorm:"not null;default:0" json:"morning"`
	Afternoon            int        `gorm:"not null;default:0" json:"afternoon"`
	Evening              int        `gorm:"not null;default:0" json:"evening"`
	LastMorningCheckIn   *time.Time `json:"last_morning_check_in"`
	LastAfternoonCheckIn *time.Time `json:"last_afternoon_check_in"`
	LastEveningCheckIn   *time.Time `json:"last_evening_check_in"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (CheckInStreak) TableName() string {
	return "user_streaks"
}

func (streak CheckInStreak) Count(period Period) int {
	switch period {
	case PeriodMorning:
		return streak.Morning
	case PeriodAfternoon:
		return streak.Afternoon
	case PeriodEvening:
		return streak.Evening
	default:
		return 0
	}
}

func (streak CheckInStreak) LastCheckIn(period Period) *time.Time {
	switch period {
	case PeriodMorning:
		return streak.LastMorningCheckIn
	case PeriodAfternoon:
		return streak.LastAfternoonCheckIn
	case PeriodEvening:
		return streak.LastEveningCheckIn
	default:
		return nil
	}
}

// Set returns a copy with the counter and last check-in of period replaced.
func (streak CheckInStreak) Set(period Period, count int, lastCheckIn *time.Time) CheckInStreak {
	switch period {
	case PeriodMorning:
		streak.Morning = count
		streak.LastMorningCheckIn = lastCheckIn
	case PeriodAfternoon:
		streak.Afternoon = count
		streak.LastAfternoonCheckIn = lastCheckIn
	case PeriodEvening:
		streak.Evening = count
		streak.LastEveningCheckIn = lastCheckIn
	}
	return streak
}

func (streak CheckInStreak) IsZero() bool {
	return streak.Morning == 0 && streak.Afternoon == 0 && streak.Evening == 0
}
