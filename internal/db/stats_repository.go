package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"gorm.io/gorm"
)

type StatsRepository struct {
	database *gorm.DB
}

func NewStatsRepository(database *gorm.DB) *StatsRepository {
	return &StatsRepository{database: database}
}

func (repo *StatsRepository) LoadStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	return loadStats(repo.database.WithContext(ctx), userID)
}

func loadStats(database *gorm.DB, userID uuid.UUID) (models.UserStats, error) {
	var stats models.UserStats
	err := database.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewUserStats(userID), nil
	}
	if err != nil {
		return models.UserStats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

func saveStats(database *gorm.DB, stats *models.UserStats) error {
	stats.UpdatedAt = time.Now().UTC()
	if err := database.Save(stats).Error; err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

// RecordCheckIn caches the overall streak and counts the entry.
func (repo *StatsRepository) RecordCheckIn(ctx context.Context, userID uuid.UUID, overallStreak int, at time.Time) (models.UserStats, error) {
	var stats models.UserStats
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := loadStats(tx, userID)
		if err != nil {
			return err
		}
		current.CurrentStreak = overallStreak
		if overallStreak > current.LongestStreak {
			current.LongestStreak = overallStreak
		}
		current.TotalEntries++
		checkedInAt := at.UTC()
		current.LastCheckIn = &checkedInAt
		if err := saveStats(tx, &current); err != nil {
			return err
		}
		stats = current
		return nil
	})
	if err != nil {
		return models.UserStats{}, err
	}
	return stats, nil
}
