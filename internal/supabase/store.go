package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store talks to the hosted Supabase Postgres. Daily challenge selection and
// completion run in the database through the get_daily_challenge and
// complete_challenge functions.
type Store struct {
	db         Querier
	dailyLimit int
}

var _ services.Store = (*Store)(nil)

// NewStore passes dailyLimit to complete_challenge so the server cap matches
// the configured one. A non-positive limit falls back to the default.
func NewStore(db Querier, dailyLimit int) *Store {
	if dailyLimit <= 0 {
		dailyLimit = services.DefaultDailyChallengeLimit
	}
	return &Store{db: db, dailyLimit: dailyLimit}
}

func (store *Store) EnsureProfile(ctx context.Context, userID uuid.UUID, timezone string) (models.Profile, error) {
	const query = `
INSERT INTO profiles (id, timezone)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET id = profiles.id
RETURNING id, display_name, timezone, push_token, push_platform, created_at`

	var profile models.Profile
	err := store.db.QueryRow(ctx, query, userID, strings.TrimSpace(timezone)).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Timezone,
		&profile.PushToken,
		&profile.PushPlatform,
		&profile.CreatedAt,
	)
	if err != nil {
		return models.Profile{}, wrapError("ensure profile", err)
	}
	return profile, nil
}

func (store *Store) UpdateProfile(ctx context.Context, userID uuid.UUID, updates models.ProfileUpdate) (models.Profile, error) {
	const query = `
UPDATE profiles SET
  display_name = COALESCE($2, display_name),
  timezone = COALESCE($3, timezone),
  push_token = COALESCE($4, push_token),
  push_platform = COALESCE($5, push_platform)
WHERE id = $1
RETURNING id, display_name, timezone, push_token, push_platform, created_at`

	var profile models.Profile
	err := store.db.QueryRow(ctx, query, userID,
		trimmed(updates.DisplayName),
		trimmed(updates.Timezone),
		trimmed(updates.PushToken),
		trimmed(updates.PushPlatform),
	).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Timezone,
		&profile.PushToken,
		&profile.PushPlatform,
		&profile.CreatedAt,
	)
	if err != nil {
		return models.Profile{}, wrapError("update profile", err)
	}
	return profile, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	result := strings.TrimSpace(*value)
	return &result
}

func (store *Store) PushTarget(ctx context.Context, userID uuid.UUID) (string, string, error) {
	var token, platform string
	err := store.db.QueryRow(ctx, `SELECT push_token, push_platform FROM profiles WHERE id = $1`, userID).Scan(&token, &platform)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", wrapError("load push target", err)
	}
	return token, platform, nil
}

func (store *Store) LoadStreaks(ctx context.Context, userID uuid.UUID) (models.CheckInStreak, bool, error) {
	const query = `
SELECT user_id, morning, afternoon, evening,
       last_morning_check_in, last_afternoon_check_in, last_evening_check_in, updated_at
FROM user_streaks
WHERE user_id = $1`

	var streaks models.CheckInStreak
	err := store.db.QueryRow(ctx, query, userID).Scan(
		&streaks.UserID,
		&streaks.Morning,
		&streaks.Afternoon,
		&streaks.Evening,
		&streaks.LastMorningCheckIn,
		&streaks.LastAfternoonCheckIn,
		&streaks.LastEveningCheckIn,
		&streaks.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CheckInStreak{UserID: userID}, false, nil
	}
	if err != nil {
		return models.CheckInStreak{}, false, wrapError("load streaks", err)
	}
	return streaks, true, nil
}

func (store *Store) InsertStreaks(ctx context.Context, streaks *models.CheckInStreak) error {
	const query = `
INSERT INTO user_streaks (user_id, morning, afternoon, evening,
  last_morning_check_in, last_afternoon_check_in, last_evening_check_in, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

	_, err := store.db.Exec(ctx, query,
		streaks.UserID,
		streaks.Morning,
		streaks.Afternoon,
		streaks.Evening,
		streaks.LastMorningCheckIn,
		streaks.LastAfternoonCheckIn,
		streaks.LastEveningCheckIn,
	)
	return wrapError("insert streaks", err)
}

func (store *Store) UpdateStreaks(ctx context.Context, streaks *models.CheckInStreak) error {
	const query = `
UPDATE user_streaks SET
  morning = $2, afternoon = $3, evening = $4,
  last_morning_check_in = $5, last_afternoon_check_in = $6, last_evening_check_in = $7,
  updated_at = now()
WHERE user_id = $1`

	tag, err := store.db.Exec(ctx, query,
		streaks.UserID,
		streaks.Morning,
		streaks.Afternoon,
		streaks.Evening,
		streaks.LastMorningCheckIn,
		streaks.LastAfternoonCheckIn,
		streaks.LastEveningCheckIn,
	)
	if err != nil {
		return wrapError("update streaks", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update streaks: %w", pgx.ErrNoRows)
	}
	return nil
}

const statsColumns = `user_id, current_streak, longest_streak, total_points, total_entries, last_check_in, level, updated_at`

func scanStats(row pgx.Row) (models.UserStats, error) {
	var stats models.UserStats
	err := row.Scan(
		&stats.UserID,
		&stats.CurrentStreak,
		&stats.LongestStreak,
		&stats.TotalPoints,
		&stats.TotalEntries,
		&stats.LastCheckIn,
		&stats.Level,
		&stats.UpdatedAt,
	)
	return stats, err
}

func (store *Store) LoadStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error) {
	stats, err := scanStats(store.db.QueryRow(ctx, `SELECT `+statsColumns+` FROM user_stats WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewUserStats(userID), nil
	}
	if err != nil {
		return models.UserStats{}, wrapError("load stats", err)
	}
	return stats, nil
}

func (store *Store) RecordCheckIn(ctx context.Context, userID uuid.UUID, overallStreak int, at time.Time) (models.UserStats, error) {
	const query = `
INSERT INTO user_stats (user_id, current_streak, longest_streak, total_entries, last_check_in, level, updated_at)
VALUES ($1, $2, $2, 1, $3, 1, now())
ON CONFLICT (user_id) DO UPDATE SET
  current_streak = EXCLUDED.current_streak,
  longest_streak = GREATEST(user_stats.longest_streak, EXCLUDED.current_streak),
  total_entries = user_stats.total_entries + 1,
  last_check_in = EXCLUDED.last_check_in,
  updated_at = now()
RETURNING ` + statsColumns

	stats, err := scanStats(store.db.QueryRow(ctx, query, userID, overallStreak, at.UTC()))
	if err != nil {
		return models.UserStats{}, wrapError("record check-in", err)
	}
	return stats, nil
}

func (store *Store) ListUnlockedAchievementIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return store.listIDs(ctx, "list unlocked achievements",
		`SELECT achievement_id FROM user_achievements WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (store *Store) ListUnlockedBadgeIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return store.listIDs(ctx, "list unlocked badges",
		`SELECT badge_id FROM user_badges WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (store *Store) listIDs(ctx context.Context, op string, query string, userID uuid.UUID) ([]string, error) {
	rows, err := store.db.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapError(op, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapError(op, err)
	}
	return ids, nil
}

func (store *Store) InsertUserAchievement(ctx context.Context, userID uuid.UUID, achievementID string, at time.Time) (services.InsertOutcome, error) {
	_, err := store.db.Exec(ctx,
		`INSERT INTO user_achievements (id, user_id, achievement_id, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), userID, achievementID, at.UTC(),
	)
	return insertOutcome("insert user achievement", err)
}

func (store *Store) InsertUserBadge(ctx context.Context, userID uuid.UUID, badgeID string, at time.Time) (services.InsertOutcome, error) {
	_, err := store.db.Exec(ctx,
		`INSERT INTO user_badges (id, user_id, badge_id, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), userID, badgeID, at.UTC(),
	)
	return insertOutcome("insert user badge", err)
}

func (store *Store) ListBadges(ctx context.Context) ([]models.Badge, error) {
	rows, err := store.db.Query(ctx, `
SELECT id, name, description, category, threshold, points_award, created_at
FROM badges
ORDER BY category, threshold, id`)
	if err != nil {
		return nil, wrapError("list badges", err)
	}
	badges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Badge, error) {
		var badge models.Badge
		err := row.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Category, &badge.Threshold, &badge.PointsAward, &badge.CreatedAt)
		return badge, err
	})
	if err != nil {
		return nil, wrapError("list badges", err)
	}
	return badges, nil
}

func scanChallenge(row pgx.CollectableRow) (models.Challenge, error) {
	var challenge models.Challenge
	err := row.Scan(&challenge.ID, &challenge.Title, &challenge.Description, &challenge.Type, &challenge.PointsAward)
	return challenge, err
}

func (store *Store) GetDailyChallenge(ctx context.Context, userID uuid.UUID) ([]models.Challenge, error) {
	rows, err := store.db.Query(ctx,
		`SELECT id, title, description, type, points_award FROM get_daily_challenge($1)`, userID)
	if err != nil {
		return nil, wrapError("get daily challenge", err)
	}
	challenges, err := pgx.CollectRows(rows, scanChallenge)
	if err != nil {
		return nil, wrapError("get daily challenge", err)
	}
	if len(challenges) > 1 {
		challenges = challenges[:1]
	}
	return challenges, nil
}

func (store *Store) CompleteChallenge(ctx context.Context, userID uuid.UUID, challengeID uuid.UUID, response string) (services.CompletionResult, error) {
	var result services.CompletionResult
	err := store.db.QueryRow(ctx,
		`SELECT success, total_points, level FROM complete_challenge($1, $2, $3, $4)`,
		userID, challengeID, response, store.dailyLimit,
	).Scan(&result.Success, &result.TotalPoints, &result.Level)
	if err != nil {
		return services.CompletionResult{}, wrapError("complete challenge", err)
	}
	return result, nil
}

func (store *Store) FindChallenge(ctx context.Context, challengeID uuid.UUID) (models.Challenge, bool, error) {
	rows, err := store.db.Query(ctx,
		`SELECT id, title, description, type, points_award FROM challenges WHERE id = $1`, challengeID)
	if err != nil {
		return models.Challenge{}, false, wrapError("find challenge", err)
	}
	challenge, err := pgx.CollectExactlyOneRow(rows, scanChallenge)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Challenge{}, false, nil
	}
	if err != nil {
		return models.Challenge{}, false, wrapError("find challenge", err)
	}
	return challenge, true, nil
}

func (store *Store) ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]models.UserChallenge, error) {
	rows, err := store.db.Query(ctx, `
SELECT id, user_id, challenge_id, status, response, completed_at, completed_on, created_at
FROM user_challenges
WHERE user_id = $1
ORDER BY created_at`, userID)
	if err != nil {
		return nil, wrapError("list user challenges", err)
	}
	userChallenges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserChallenge, error) {
		var userChallenge models.UserChallenge
		err := row.Scan(
			&userChallenge.ID,
			&userChallenge.UserID,
			&userChallenge.ChallengeID,
			&userChallenge.Status,
			&userChallenge.Response,
			&userChallenge.CompletedAt,
			&userChallenge.CompletedOn,
			&userChallenge.CreatedAt,
		)
		return userChallenge, err
	})
	if err != nil {
		return nil, wrapError("list user challenges", err)
	}
	return userChallenges, nil
}
