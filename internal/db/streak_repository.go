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

type StreakRepository struct {
	database *gorm.DB
}

func NewStreakRepository(database *gorm.DB) *StreakRepository {
	return &StreakRepository{database: database}
}

func (repo *StreakRepository) LoadStreaks(ctx context.Context, userID uuid.UUID) (models.CheckInStreak, bool, error) {
	var streaks models.CheckInStreak
	err := repo.database.WithContext(ctx).Where("user_id = ?", userID).First(&streaks).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CheckInStreak{UserID: userID}, false, nil
	}
	if err != nil {
		return models.CheckInStreak{}, false, fmt.Errorf("load streaks: %w", err)
	}
	return streaks, true, nil
}

func (repo *StreakRepository) InsertStreaks(ctx context.Context, streaks *models.CheckInStreak) error {
	streaks.UpdatedAt = time.Now().UTC()
	return wrapWriteError("insert streaks", repo.database.WithContext(ctx).Create(streaks).Error)
}

func (repo *StreakRepository) UpdateStreaks(ctx context.Context, streaks *models.CheckInStreak) error {
	result := repo.database.WithContext(ctx).
		Model(&models.CheckInStreak{}).
		Where("user_id = ?", streaks.UserID).
		Updates(map[string]any{
			"morning":                 streaks.Morning,
			"afternoon":               streaks.Afternoon,
			"evening":                 streaks.Evening,
			"last_morning_check_in":   streaks.LastMorningCheckIn,
			"last_afternoon_check_in": streaks.LastAfternoonCheckIn,
			"last_evening_check_in":   streaks.LastEveningCheckIn,
			"updated_at":              time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("update streaks: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update streaks: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
