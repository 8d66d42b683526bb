package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/dailyglow/internal/models"
)

type SeedResult struct {
	Achievements int64
	Badges       int64
	Challenges   int64
}

// SeedCatalog inserts missing catalog rows. Rows that already exist are
// left as they are.
func SeedCatalog(ctx context.Context, db Querier, achievements []models.Achievement, badges []models.Badge, challenges []models.Challenge) (SeedResult, error) {
	var result SeedResult
	createdAt := time.Now().UTC()

	for _, achievement := range achievements {
		tag, err := db.Exec(ctx, `
INSERT INTO achievements (id, name, description, points_award, requires_streak, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`,
			achievement.ID, achievement.Name, achievement.Description, achievement.PointsAward, achievement.RequiresStreak, createdAt)
		if err != nil {
			return result, fmt.Errorf("seed achievement %s: %w", achievement.ID, err)
		}
		result.Achievements += tag.RowsAffected()
		createdAt = createdAt.Add(time.Millisecond)
	}

	for _, badge := range badges {
		tag, err := db.Exec(ctx, `
INSERT INTO badges (id, name, description, category, threshold, points_award)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`,
			badge.ID, badge.Name, badge.Description, string(badge.Category), badge.Threshold, badge.PointsAward)
		if err != nil {
			return result, fmt.Errorf("seed badge %s: %w", badge.ID, err)
		}
		result.Badges += tag.RowsAffected()
	}

	for _, challenge := range challenges {
		tag, err := db.Exec(ctx, `
INSERT INTO challenges (id, title, description, type, points_award)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`,
			challenge.ID, challenge.Title, challenge.Description, string(challenge.Type), challenge.PointsAward)
		if err != nil {
			return result, fmt.Errorf("seed challenge %s: %w", challenge.ID, err)
		}
		result.Challenges += tag.RowsAffected()
	}
	return result, nil
}
