package models

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeType string

const (
	ChallengeMood        ChallengeType = "mood"
	ChallengeGratitude   ChallengeType = "gratitude"
	ChallengeMindfulness ChallengeType = "mindfulness"
	ChallengeCreative    ChallengeType = "creative"
)

type ChallengeStatus string

const (
	ChallengeInProgress ChallengeStatus = "in_progress"
	ChallengeCompleted  ChallengeStatus = "completed"
	ChallengeFailed     ChallengeStatus = "failed"
)

type Challenge struct {
	ID          uuid.UUID     `gorm:"type:text;primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"not null" json:"description"`
	Type        ChallengeType `gorm:"type:text;not null" json:"type"`
	PointsAward int           `gorm:"not null;default:0" json:"points_award"`
}

func (Challenge) TableName() string {
	return "challenges"
}

type UserChallenge struct {
	ID          uuid.UUID       `gorm:"type:text;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:text;not null;uniqueIndex:uidx_user_challenge_day" json:"user_id"`
	ChallengeID uuid.UUID       `gorm:"type:text;not null;uniqueIndex:uidx_user_challenge_day" json:"challenge_id"`
	Status      ChallengeStatus `gorm:"type:text;not null;default:in_progress" json:"status"`
	Response    string          `gorm:"not null;default:''" json:"response"`
	CompletedAt *time.Time      `json:"completed_at"`
	CompletedOn string          `gorm:"not null;default:'';uniqueIndex:uidx_user_challenge_day" json:"completed_on"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (UserChallenge) TableName() string {
	return "user_challenges"
}

// CanTransition reports whether a user challenge may move from one status to
// another. Statuses only move forward.
func CanTransition(from ChallengeStatus, to ChallengeStatus) bool {
	if from == to {
		return true
	}
	return from == ChallengeInProgress && (to == ChallengeCompleted || to == ChallengeFailed)
}
