package db

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
	"gorm.io/gorm"
)

type ChallengeRepository struct {
	database   *gorm.DB
	profiles   *ProfileRepository
	location   *time.Location
	dailyLimit int
	now        func() time.Time
}

func NewChallengeRepository(database *gorm.DB, profiles *ProfileRepository, location *time.Location, dailyLimit int) *ChallengeRepository {
	if location == nil {
		location = time.UTC
	}
	if dailyLimit <= 0 {
		dailyLimit = services.DefaultDailyChallengeLimit
	}
	return &ChallengeRepository{
		database:   database,
		profiles:   profiles,
		location:   location,
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

func (repo *ChallengeRepository) FindChallenge(ctx context.Context, challengeID uuid.UUID) (models.Challenge, bool, error) {
	var challenge models.Challenge
	err := repo.database.WithContext(ctx).Where("id = ?", challengeID).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Challenge{}, false, nil
	}
	if err != nil {
		return models.Challenge{}, false, fmt.Errorf("find challenge: %w", err)
	}
	return challenge, true, nil
}

func (repo *ChallengeRepository) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	challenges := make([]models.Challenge, 0)
	if err := repo.database.WithContext(ctx).Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return challenges, nil
}

func (repo *ChallengeRepository) ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]models.UserChallenge, error) {
	userChallenges := make([]models.UserChallenge, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&userChallenges).Error; err != nil {
		return nil, fmt.Errorf("list user challenges: %w", err)
	}
	return userChallenges, nil
}

// GetDailyChallenge picks one challenge the user has not completed on the
// current local day. The pick rotates with the local day so every user sees a
// stable challenge for the whole day.
func (repo *ChallengeRepository) GetDailyChallenge(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	location := repo.profiles.locationFor(ctx, userID, repo.location)
	now := repo.now()
	dayKey := services.LocalDayKey(now, location)

	completedIDs := make([]string, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.UserChallenge{}).
		Where("user_id = ? AND completed_on = ? AND status = ?", userID, dayKey, models.ChallengeCompleted).
		Pluck("challenge_id", &completedIDs).Error; err != nil {
		return nil, fmt.Errorf("list completed challenges: %w", err)
	}

	catalog, err := repo.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	candidates := slices.DeleteFunc(catalog, func(challenge models.Challenge) bool {
		return slices.Contains(completedIDs, challenge.ID.String())
	})
	if len(candidates) == 0 {
		return []models.Challenge{}, nil
	}

	index := dayOrdinal(now, location) % len(candidates)
	return []models.Challenge{candidates[index]}, nil
}

func dayOrdinal(now time.Time, location *time.Location) int {
	year, month, day := now.In(location).Date()
	return int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// CompleteChallenge records a completion in one transaction: daily cap,
// insert, points and level. The cap failure carries the same text the hosted
// complete_challenge function raises.
func (repo *ChallengeRepository) CompleteChallenge(ctx context.Context, userID uuid.UUID, challengeID uuid.UUID, response string) (services.CompletionResult, error) {
	location := repo.profiles.locationFor(ctx, userID, repo.location)
	now := repo.now()
	dayKey := services.LocalDayKey(now, location)

	var result services.CompletionResult
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var completedToday int64
		if err := tx.Model(&models.UserChallenge{}).
			Where("user_id = ? AND completed_on = ? AND status = ?", userID, dayKey, models.ChallengeCompleted).
			Count(&completedToday).Error; err != nil {
			return fmt.Errorf("count completions: %w", err)
		}
		if completedToday >= int64(repo.dailyLimit) {
			return errors.New(services.DailyLimitServerMessage)
		}

		var challenge models.Challenge
		if err := tx.Where("id = ?", challengeID).First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrChallengeNotFound
			}
			return fmt.Errorf("load challenge: %w", err)
		}

		completedAt := now.UTC()
		userChallenge := models.UserChallenge{
			ID:          uuid.New(),
			UserID:      userID,
			ChallengeID: challengeID,
			Status:      models.ChallengeCompleted,
			Response:    strings.TrimSpace(response),
			CompletedAt: &completedAt,
			CompletedOn: dayKey,
			CreatedAt:   completedAt,
		}
		if err := tx.Create(&userChallenge).Error; err != nil {
			return wrapWriteError("insert user challenge", err)
		}

		stats, err := loadStats(tx, userID)
		if err != nil {
			return err
		}
		stats.TotalPoints += challenge.PointsAward
		stats.TotalEntries++
		stats.Level = models.LevelForPoints(stats.TotalPoints)
		if err := saveStats(tx, &stats); err != nil {
			return err
		}

		result = services.CompletionResult{Success: true, TotalPoints: stats.TotalPoints, Level: stats.Level}
		return nil
	})
	if err != nil {
		return services.CompletionResult{}, err
	}
	return result, nil
}
