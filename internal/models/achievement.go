package models

import (
	"time"

	"github.com/google/uuid"
)

type Achievement struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `gorm:"not null" json:"description"`
	PointsAward    int       `gorm:"not null;default:0" json:"points_award"`
	RequiresStreak *int      `json:"requires_streak"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:text;not null;uniqueIndex:uidx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"type:text;not null;uniqueIndex:uidx_user_achievement" json:"achievement_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
