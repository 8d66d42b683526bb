package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/api"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
)

func RunMigrateCommand(ctx context.Context, backend *Backend, out io.Writer) error {
	versions, err := backend.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", backend.Kind, err)
	}
	fmt.Fprintf(out, "%s schema is up to date (%s)\n", backend.Kind, strings.Join(versions, ", "))
	return nil
}

func RunSeedCommand(ctx context.Context, backend *Backend, out io.Writer) error {
	counts, err := backend.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	fmt.Fprintf(out, "seeded %d achievements, %d badges, %d challenges\n", counts.Achievements, counts.Badges, counts.Challenges)
	return nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.Nil, errors.New("user id is required")
	}
	userID, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	return userID, nil
}

// RunStreakCommand prints the reconciled engagement state of one user.
func RunStreakCommand(ctx context.Context, store services.Store, rawUserID string, location *time.Location, out io.Writer) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}

	session := services.NewSession(userID, services.SessionDeps{Store: store, Location: location})
	snapshot, err := session.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	writeSnapshot(out, snapshot)
	return nil
}

func writeSnapshot(out io.Writer, snapshot services.SessionSnapshot) {
	fmt.Fprintf(out, "user:     %s (%s)\n", snapshot.UserID, snapshot.Timezone)
	fmt.Fprintf(out, "overall:  %d days\n", snapshot.OverallStreak)
	for _, period := range models.Periods {
		fmt.Fprintf(out, "%-9s %d (stored %d)\n", string(period)+":", streakFor(snapshot.LiveStreaks, period), streakFor(snapshot.Streaks, period))
	}
	fmt.Fprintf(out, "points:   %d (level %d)\n", snapshot.Stats.TotalPoints, snapshot.Stats.Level)
	fmt.Fprintf(out, "entries:  %d\n", snapshot.Stats.TotalEntries)
	fmt.Fprintf(out, "unlocked: %d achievements, %d badges\n", len(snapshot.UnlockedAchievementIDs), len(snapshot.UnlockedBadgeIDs))
	fmt.Fprintf(out, "today:    %d/%d challenges\n", snapshot.CompletedToday, snapshot.DailyChallengeLimit)
}

func streakFor(streaks models.CheckInStreak, period models.Period) int {
	switch period {
	case models.PeriodMorning:
		return streaks.Morning
	case models.PeriodAfternoon:
		return streaks.Afternoon
	default:
		return streaks.Evening
	}
}

func RunTokenCommand(secretKey []byte, rawUserID string, ttl time.Duration, out io.Writer) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}
	token, err := api.SignAccessToken(secretKey, userID, time.Now(), ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}
