package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
)

type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	AlreadyExists
)

func (outcome InsertOutcome) String() string {
	switch outcome {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

type StreakStore interface {
	LoadStreaks(ctx context.Context, userID uuid.UUID) (models.CheckInStreak, bool, error)
	// InsertStreaks fails with ErrConflict when the row already exists.
	InsertStreaks(ctx context.Context, streaks *models.CheckInStreak) error
	UpdateStreaks(ctx context.Context, streaks *models.CheckInStreak) error
}

type StatsStore interface {
	// LoadStats returns zero-valued stats at level 1 when the user has none yet.
	LoadStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error)
	RecordCheckIn(ctx context.Context, userID uuid.UUID, overallStreak int, at time.Time) (models.UserStats, error)
}

type UnlockStore interface {
	ListUnlockedAchievementIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	InsertUserAchievement(ctx context.Context, userID uuid.UUID, achievementID string, at time.Time) (InsertOutcome, error)
	ListBadges(ctx context.Context) ([]models.Badge, error)
	ListUnlockedBadgeIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	InsertUserBadge(ctx context.Context, userID uuid.UUID, badgeID string, at time.Time) (InsertOutcome, error)
}

type CompletionResult struct {
	Success     bool `json:"success"`
	TotalPoints int  `json:"total_points"`
	Level       int  `json:"level"`
}

type ChallengeStore interface {
	// GetDailyChallenge returns zero or one challenge.
	GetDailyChallenge(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error)
	CompleteChallenge(ctx context.Context, userID uuid.UUID, challengeID uuid.UUID, response string) (CompletionResult, error)
	FindChallenge(ctx context.Context, challengeID uuid.UUID) (models.Challenge, bool, error)
	ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]models.UserChallenge, error)
}

type ProfileStore interface {
	EnsureProfile(ctx context.Context, userID uuid.UUID, timezone string) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, updates models.ProfileUpdate) (models.Profile, error)
	PushTarget(ctx context.Context, userID uuid.UUID) (token string, platform string, err error)
}

// Store is the full Persistence Service surface.
type Store interface {
	StreakStore
	StatsStore
	UnlockStore
	ChallengeStore
	ProfileStore
}

type MilestoneNotifier interface {
	NotifyMilestone(ctx context.Context, userID uuid.UUID, streak int) error
}

type DailyChallengeCache interface {
	GetDailyChallenge(ctx context.Context, userID uuid.UUID, dayKey string) (*models.Challenge, bool, error)
	SetDailyChallenge(ctx context.Context, userID uuid.UUID, dayKey string, challenge *models.Challenge, ttl time.Duration) error
}
