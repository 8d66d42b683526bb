package db

import (
	"time"

	"github.com/terraincognita07/dailyglow/internal/services"
	"gorm.io/gorm"
)

var _ services.Store = (*Store)(nil)

type Repositories struct {
	Profiles   *ProfileRepository
	Streaks    *StreakRepository
	Stats      *StatsRepository
	Unlocks    *UnlockRepository
	Challenges *ChallengeRepository
}

func NewRepositories(database *gorm.DB, location *time.Location, dailyLimit int) *Repositories {
	profiles := NewProfileRepository(database)
	return &Repositories{
		Profiles:   profiles,
		Streaks:    NewStreakRepository(database),
		Stats:      NewStatsRepository(database),
		Unlocks:    NewUnlockRepository(database),
		Challenges: NewChallengeRepository(database, profiles, location, dailyLimit),
	}
}

// Store exposes the repositories as one persistence service.
type Store struct {
	*ProfileRepository
	*StreakRepository
	*StatsRepository
	*UnlockRepository
	*ChallengeRepository
}

func NewStore(database *gorm.DB, location *time.Location, dailyLimit int) *Store {
	repositories := NewRepositories(database, location, dailyLimit)
	return &Store{
		ProfileRepository:   repositories.Profiles,
		StreakRepository:    repositories.Streaks,
		StatsRepository:     repositories.Stats,
		UnlockRepository:    repositories.Unlocks,
		ChallengeRepository: repositories.Challenges,
	}
}
