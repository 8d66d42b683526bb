package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindByID(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var profile models.Profile
	if err := repo.database.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// EnsureProfile returns the stored profile, creating it with timezone when
// the user has none yet.
func (repo *ProfileRepository) EnsureProfile(ctx context.Context, userID uuid.UUID, timezone string) (models.Profile, error) {
	profile, err := repo.FindByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	profile = models.Profile{ID: userID, Timezone: strings.TrimSpace(timezone), CreatedAt: time.Now().UTC()}
	if err := repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&profile).Error; err != nil {
		return models.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return repo.FindByID(ctx, userID)
}

func (repo *ProfileRepository) PushTarget(ctx context.Context, userID uuid.UUID) (string, string, error) {
	profile, err := repo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("load push target: %w", err)
	}
	return profile.PushToken, profile.PushPlatform, nil
}

func (repo *ProfileRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, updates models.ProfileUpdate) (models.Profile, error) {
	values := map[string]any{}
	if updates.DisplayName != nil {
		values["display_name"] = strings.TrimSpace(*updates.DisplayName)
	}
	if updates.Timezone != nil {
		values["timezone"] = strings.TrimSpace(*updates.Timezone)
	}
	if updates.PushToken != nil {
		values["push_token"] = strings.TrimSpace(*updates.PushToken)
	}
	if updates.PushPlatform != nil {
		values["push_platform"] = strings.TrimSpace(*updates.PushPlatform)
	}
	if len(values) > 0 {
		if err := repo.database.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", userID).Updates(values).Error; err != nil {
			return models.Profile{}, fmt.Errorf("update profile: %w", err)
		}
	}
	return repo.FindByID(ctx, userID)
}

// locationFor resolves the user's timezone, falling back when the profile is
// missing or its zone is unknown.
func (repo *ProfileRepository) locationFor(ctx context.Context, userID uuid.UUID, fallback *time.Location) *time.Location {
	profile, err := repo.FindByID(ctx, userID)
	if err != nil {
		return fallback
	}
	name := strings.TrimSpace(profile.Timezone)
	if name == "" {
		return fallback
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return fallback
	}
	return location
}
