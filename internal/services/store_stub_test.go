package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
)

var errStubOffline = errors.New("connection refused")

type stubStore struct {
	mu sync.Mutex

	profiles map[uuid.UUID]models.Profile

	streaks         map[uuid.UUID]models.CheckInStreak
	insertStreakErr error
	updateStreakErr error
	// conflictStreak is stored when InsertStreaks is called, simulating another
	// device creating the row first.
	conflictStreak *models.CheckInStreak
	streakUpdates  int

	stats         map[uuid.UUID]models.UserStats
	recordErr     error
	recordedCalls int

	badges              []models.Badge
	achievements        map[uuid.UUID][]string
	userBadges          map[uuid.UUID][]string
	insertUnlockErr     error
	achievementInserts  int
	badgeInserts        int
	alreadyAchievements map[string]bool

	challenges      map[uuid.UUID]models.Challenge
	dailyChallenges []models.Challenge
	dailyCalls      int
	userChallenges  map[uuid.UUID][]models.UserChallenge
	completeResult  CompletionResult
	completeErr     error
	completeCalls   int
	findCalls       int
}

func newStubStore() *stubStore {
	return &stubStore{
		profiles:            map[uuid.UUID]models.Profile{},
		streaks:             map[uuid.UUID]models.CheckInStreak{},
		stats:               map[uuid.UUID]models.UserStats{},
		achievements:        map[uuid.UUID][]string{},
		userBadges:          map[uuid.UUID][]string{},
		alreadyAchievements: map[string]bool{},
		challenges:          map[uuid.UUID]models.Challenge{},
		userChallenges:      map[uuid.UUID][]models.UserChallenge{},
	}
}

func (stub *stubStore) EnsureProfile(_ context.Context, userID uuid.UUID, timezone string) (models.Profile, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if profile, ok := stub.profiles[userID]; ok {
		return profile, nil
	}
	profile := models.Profile{ID: userID, Timezone: timezone}
	stub.profiles[userID] = profile
	return profile, nil
}

func (stub *stubStore) UpdateProfile(_ context.Context, userID uuid.UUID, updates models.ProfileUpdate) (models.Profile, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	profile := stub.profiles[userID]
	profile.ID = userID
	if updates.DisplayName != nil {
		profile.DisplayName = *updates.DisplayName
	}
	if updates.Timezone != nil {
		profile.Timezone = *updates.Timezone
	}
	if updates.PushToken != nil {
		profile.PushToken = *updates.PushToken
	}
	if updates.PushPlatform != nil {
		profile.PushPlatform = *updates.PushPlatform
	}
	stub.profiles[userID] = profile
	return profile, nil
}

func (stub *stubStore) PushTarget(_ context.Context, userID uuid.UUID) (string, string, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	profile := stub.profiles[userID]
	return profile.PushToken, profile.PushPlatform, nil
}

func (stub *stubStore) LoadStreaks(_ context.Context, userID uuid.UUID) (models.CheckInStreak, bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	streaks, ok := stub.streaks[userID]
	return streaks, ok, nil
}

func (stub *stubStore) InsertStreaks(_ context.Context, streaks *models.CheckInStreak) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.conflictStreak != nil {
		stub.streaks[streaks.UserID] = *stub.conflictStreak
		stub.conflictStreak = nil
	}
	if _, exists := stub.streaks[streaks.UserID]; exists {
		return ErrConflict
	}
	if stub.insertStreakErr != nil {
		return stub.insertStreakErr
	}
	stub.streaks[streaks.UserID] = *streaks
	return nil
}

func (stub *stubStore) UpdateStreaks(_ context.Context, streaks *models.CheckInStreak) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.updateStreakErr != nil {
		return stub.updateStreakErr
	}
	stub.streakUpdates++
	stub.streaks[streaks.UserID] = *streaks
	return nil
}

func (stub *stubStore) LoadStats(_ context.Context, userID uuid.UUID) (models.UserStats, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stats, ok := stub.stats[userID]; ok {
		return stats, nil
	}
	return models.NewUserStats(userID), nil
}

func (stub *stubStore) RecordCheckIn(_ context.Context, userID uuid.UUID, overallStreak int, at time.Time) (models.UserStats, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.recordErr != nil {
		return models.UserStats{}, stub.recordErr
	}
	stub.recordedCalls++
	stats, ok := stub.stats[userID]
	if !ok {
		stats = models.NewUserStats(userID)
	}
	stats.CurrentStreak = overallStreak
	if overallStreak > stats.LongestStreak {
		stats.LongestStreak = overallStreak
	}
	stats.TotalEntries++
	checkedInAt := at
	stats.LastCheckIn = &checkedInAt
	stub.stats[userID] = stats
	return stats, nil
}

func (stub *stubStore) ListUnlockedAchievementIDs(_ context.Context, userID uuid.UUID) ([]string, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return append([]string(nil), stub.achievements[userID]...), nil
}

func (stub *stubStore) InsertUserAchievement(_ context.Context, userID uuid.UUID, achievementID string, _ time.Time) (InsertOutcome, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.achievementInserts++
	if stub.insertUnlockErr != nil {
		return Inserted, stub.insertUnlockErr
	}
	if stub.alreadyAchievements[achievementID] {
		return AlreadyExists, nil
	}
	for _, existing := range stub.achievements[userID] {
		if existing == achievementID {
			return AlreadyExists, nil
		}
	}
	stub.achievements[userID] = append(stub.achievements[userID], achievementID)
	return Inserted, nil
}

func (stub *stubStore) ListBadges(context.Context) ([]models.Badge, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return append([]models.Badge(nil), stub.badges...), nil
}

func (stub *stubStore) ListUnlockedBadgeIDs(_ context.Context, userID uuid.UUID) ([]string, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return append([]string(nil), stub.userBadges[userID]...), nil
}

func (stub *stubStore) InsertUserBadge(_ context.Context, userID uuid.UUID, badgeID string, _ time.Time) (InsertOutcome, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.badgeInserts++
	if stub.insertUnlockErr != nil {
		return Inserted, stub.insertUnlockErr
	}
	for _, existing := range stub.userBadges[userID] {
		if existing == badgeID {
			return AlreadyExists, nil
		}
	}
	stub.userBadges[userID] = append(stub.userBadges[userID], badgeID)
	return Inserted, nil
}

func (stub *stubStore) GetDailyChallenge(context.Context, uuid.UUID) ([]models.Challenge, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.dailyCalls++
	return append([]models.Challenge(nil), stub.dailyChallenges...), nil
}

func (stub *stubStore) CompleteChallenge(_ context.Context, userID uuid.UUID, challengeID uuid.UUID, response string) (CompletionResult, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.completeCalls++
	if stub.completeErr != nil {
		return CompletionResult{}, stub.completeErr
	}
	return stub.completeResult, nil
}

func (stub *stubStore) FindChallenge(_ context.Context, challengeID uuid.UUID) (models.Challenge, bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.findCalls++
	challenge, ok := stub.challenges[challengeID]
	return challenge, ok, nil
}

func (stub *stubStore) ListUserChallenges(_ context.Context, userID uuid.UUID) ([]models.UserChallenge, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return append([]models.UserChallenge(nil), stub.userChallenges[userID]...), nil
}

type stubNotifier struct {
	milestones []int
	err        error
}

func (stub *stubNotifier) NotifyMilestone(_ context.Context, _ uuid.UUID, streak int) error {
	stub.milestones = append(stub.milestones, streak)
	return stub.err
}

type stubCache struct {
	entries map[string]*models.Challenge
	ttls    map[string]time.Duration
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]*models.Challenge{}, ttls: map[string]time.Duration{}}
}

func (stub *stubCache) GetDailyChallenge(_ context.Context, userID uuid.UUID, dayKey string) (*models.Challenge, bool, error) {
	challenge, ok := stub.entries[userID.String()+":"+dayKey]
	return challenge, ok, nil
}

func (stub *stubCache) SetDailyChallenge(_ context.Context, userID uuid.UUID, dayKey string, challenge *models.Challenge, ttl time.Duration) error {
	key := userID.String() + ":" + dayKey
	stub.entries[key] = challenge
	stub.ttls[key] = ttl
	return nil
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	location, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return location
}
