package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PushPlatformAndroid = "android"
	PushPlatformIOS     = "ios"
)

type Profile struct {
	ID           uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	DisplayName  string    `gorm:"not null;default:''" json:"display_name"`
	Timezone     string    `gorm:"not null;default:''" json:"timezone"`
	PushToken    string    `gorm:"not null;default:''" json:"-"`
	PushPlatform string    `gorm:"not null;default:''" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileUpdate carries the fields a user may change; nil leaves a field as is.
type ProfileUpdate struct {
	DisplayName  *string `json:"display_name"`
	Timezone     *string `json:"timezone"`
	PushToken    *string `json:"push_token"`
	PushPlatform *string `json:"push_platform"`
}
