package models

import (
	"time"

	"github.com/google/uuid"
)

const PointsPerLevel = 100

type UserStats struct {
	UserID        uuid.UUID  `gorm:"type:text;primaryKey" json:"user_id"`
	CurrentStreak int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"not null;default:0" json:"longest_streak"`
	TotalPoints   int        `gorm:"not null;default:0" json:"total_points"`
	TotalEntries  int        `gorm:"not null;default:0" json:"total_entries"`
	LastCheckIn   *time.Time `json:"last_check_in"`
	Level         int        `gorm:"not null;default:1" json:"level"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (UserStats) TableName() string {
	return "user_stats"
}

// LevelForPoints is the level curve applied by the persistence side.
func LevelForPoints(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return 1 + totalPoints/PointsPerLevel
}

func NewUserStats(userID uuid.UUID) UserStats {
	return UserStats{UserID: userID, Level: 1}
}
