package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
	"gorm.io/gorm"
)

type UnlockRepository struct {
	database *gorm.DB
}

func NewUnlockRepository(database *gorm.DB) *UnlockRepository {
	return &UnlockRepository{database: database}
}

func (repo *UnlockRepository) ListUnlockedAchievementIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids := make([]string, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list unlocked achievements: %w", err)
	}
	return ids, nil
}

func (repo *UnlockRepository) InsertUserAchievement(ctx context.Context, userID uuid.UUID, achievementID string, at time.Time) (services.InsertOutcome, error) {
	row := models.UserAchievement{
		ID:            uuid.New(),
		UserID:        userID,
		AchievementID: achievementID,
		CreatedAt:     at.UTC(),
	}
	return insertOutcome("insert user achievement", repo.database.WithContext(ctx).Create(&row).Error)
}

func (repo *UnlockRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	achievements := make([]models.Achievement, 0)
	if err := repo.database.WithContext(ctx).Order("created_at ASC, id ASC").Find(&achievements).Error; err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}

func (repo *UnlockRepository) ListBadges(ctx context.Context) ([]models.Badge, error) {
	badges := make([]models.Badge, 0)
	if err := repo.database.WithContext(ctx).Order("category ASC, threshold ASC, id ASC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return badges, nil
}

func (repo *UnlockRepository) ListUnlockedBadgeIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	ids := make([]string, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list unlocked badges: %w", err)
	}
	return ids, nil
}

func (repo *UnlockRepository) InsertUserBadge(ctx context.Context, userID uuid.UUID, badgeID string, at time.Time) (services.InsertOutcome, error) {
	row := models.UserBadge{
		ID:        uuid.New(),
		UserID:    userID,
		BadgeID:   badgeID,
		CreatedAt: at.UTC(),
	}
	return insertOutcome("insert user badge", repo.database.WithContext(ctx).Create(&row).Error)
}
