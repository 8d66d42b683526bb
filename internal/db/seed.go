package db

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/dailyglow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Catalog struct {
	Achievements []models.Achievement
	Badges       []models.Badge
	Challenges   []models.Challenge
}

type SeedResult struct {
	Achievements int64
	Badges       int64
	Challenges   int64
}

// SeedCatalog inserts catalog rows that are not stored yet. Existing rows are
// left untouched.
func SeedCatalog(ctx context.Context, database *gorm.DB, catalog Catalog) (SeedResult, error) {
	var result SeedResult
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		doNothing := clause.OnConflict{DoNothing: true}

		for _, achievement := range catalog.Achievements {
			achievement.CreatedAt = now
			created := tx.Clauses(doNothing).Create(&achievement)
			if created.Error != nil {
				return fmt.Errorf("seed achievement %s: %w", achievement.ID, created.Error)
			}
			result.Achievements += created.RowsAffected
			now = now.Add(time.Millisecond)
		}
		for _, badge := range catalog.Badges {
			badge.CreatedAt = now
			created := tx.Clauses(doNothing).Create(&badge)
			if created.Error != nil {
				return fmt.Errorf("seed badge %s: %w", badge.ID, created.Error)
			}
			result.Badges += created.RowsAffected
		}
		for _, challenge := range catalog.Challenges {
			created := tx.Clauses(doNothing).Create(&challenge)
			if created.Error != nil {
				return fmt.Errorf("seed challenge %s: %w", challenge.ID, created.Error)
			}
			result.Challenges += created.RowsAffected
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return result, nil
}
