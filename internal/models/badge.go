package models

import (
	"time"

	"github.com/google/uuid"
)

type BadgeCategory string

const (
	BadgeCategoryStreak  BadgeCategory = "streak"
	BadgeCategoryEntries BadgeCategory = "entries"
	BadgeCategoryPoints  BadgeCategory = "points"
	BadgeCategoryLevel   BadgeCategory = "level"
)

type Badge struct {
	ID          string        `gorm:"type:text;primaryKey" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `gorm:"not null" json:"description"`
	Category    BadgeCategory `gorm:"type:text;not null;index" json:"category"`
	Threshold   int           `gorm:"not null;default:0" json:"threshold"`
	PointsAward int           `gorm:"not null;default:0" json:"points_award"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (Badge) TableName() string {
	return "badges"
}

type UserBadge struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:text;not null;uniqueIndex:uidx_user_badge" json:"user_id"`
	BadgeID   string    `gorm:"type:text;not null;uniqueIndex:uidx_user_badge" json:"badge_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
