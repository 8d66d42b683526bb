package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
)

type challengeFixture struct {
	store     *stubStore
	cache     *stubCache
	service   *ChallengeService
	stats     *StatsTracker
	userID    uuid.UUID
	challenge models.Challenge
	now       time.Time
}

func newChallengeFixture(t *testing.T) challengeFixture {
	t.Helper()
	store := newStubStore()
	cache := newStubCache()
	userID := uuid.New()
	challenge := DefaultChallenges[0]
	store.challenges[challenge.ID] = challenge
	store.dailyChallenges = []models.Challenge{challenge}
	store.completeResult = CompletionResult{Success: true, TotalPoints: 110, Level: 2}

	stats := NewStatsTracker(userID, store, nil, nil)
	service := NewChallengeService(userID, store, stats, cache, 0, nil, nil)
	if err := service.Load(context.Background()); err != nil {
		t.Fatalf("load challenges: %v", err)
	}
	return challengeFixture{
		store:     store,
		cache:     cache,
		service:   service,
		stats:     stats,
		userID:    userID,
		challenge: challenge,
		now:       time.Date(2026, time.May, 10, 15, 0, 0, 0, time.UTC),
	}
}

func TestChallengeServiceCompletesAndMergesStats(t *testing.T) {
	fixture := newChallengeFixture(t)

	state, err := fixture.service.CompleteChallenge(context.Background(), fixture.challenge.ID, "  feeling calm today  ", fixture.now, time.UTC)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if state.UserChallenge == nil || state.UserChallenge.Status != models.ChallengeCompleted {
		t.Fatalf("expected completed user challenge, got %#v", state.UserChallenge)
	}
	if state.UserChallenge.Response != "feeling calm today" || state.UserChallenge.CompletedOn != "2026-05-10" {
		t.Fatalf("unexpected stored completion %#v", state.UserChallenge)
	}
	if state.CompletedToday != 1 || state.AlreadyCompleted {
		t.Fatalf("unexpected state %#v", state)
	}
	if stats := fixture.stats.Stats(); stats.TotalPoints != 110 || stats.Level != 2 || stats.TotalEntries != 1 {
		t.Fatalf("expected stats merged from completion, got %#v", stats)
	}
}

func TestChallengeServiceDailyLimitSkipsPersistence(t *testing.T) {
	fixture := newChallengeFixture(t)
	fixture.store.userChallenges[fixture.userID] = []models.UserChallenge{
		completedChallenge(fixture.now.Add(-time.Hour)),
		completedChallenge(fixture.now.Add(-2 * time.Hour)),
	}
	if err := fixture.service.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	for _, challengeID := range []uuid.UUID{fixture.challenge.ID, uuid.New()} {
		_, err := fixture.service.CompleteChallenge(context.Background(), challengeID, "x", fixture.now, time.UTC)
		if !errors.Is(err, ErrDailyLimitReached) {
			t.Fatalf("expected ErrDailyLimitReached for %s, got %v", challengeID, err)
		}
	}
	if fixture.store.completeCalls != 0 || fixture.store.findCalls != 0 {
		t.Fatalf("expected no persistence calls, got complete=%d find=%d", fixture.store.completeCalls, fixture.store.findCalls)
	}
}

func TestChallengeServiceShortResponseSkipsPersistence(t *testing.T) {
	fixture := newChallengeFixture(t)

	_, err := fixture.service.CompleteChallenge(context.Background(), fixture.challenge.ID, "meh", fixture.now, time.UTC)
	var tooShort *ResponseTooShortError
	if !errors.As(err, &tooShort) || tooShort.MinLength != 10 {
		t.Fatalf("expected ResponseTooShortError with min 10, got %v", err)
	}
	if fixture.store.completeCalls != 0 {
		t.Fatalf("expected no persistence call")
	}
}

func TestChallengeServiceMapsServerLimitMessage(t *testing.T) {
	fixture := newChallengeFixture(t)
	fixture.store.completeErr = fmt.Errorf("rpc complete_challenge: %s", DailyLimitServerMessage)

	_, err := fixture.service.CompleteChallenge(context.Background(), fixture.challenge.ID, "a thoughtful answer", fixture.now, time.UTC)
	if !errors.Is(err, ErrDailyLimitReached) {
		t.Fatalf("expected ErrDailyLimitReached, got %v", err)
	}
}

func TestChallengeServiceFailureLeavesStateUnchanged(t *testing.T) {
	fixture := newChallengeFixture(t)
	fixture.store.completeErr = errStubOffline

	_, err := fixture.service.CompleteChallenge(context.Background(), fixture.challenge.ID, "a thoughtful answer", fixture.now, time.UTC)
	var persistence *PersistenceError
	if !errors.As(err, &persistence) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(fixture.service.UserChallenges()) != 0 || fixture.stats.Stats().TotalPoints != 0 {
		t.Fatalf("expected local state unchanged")
	}
}

func TestChallengeServiceRejectedCompletion(t *testing.T) {
	fixture := newChallengeFixture(t)
	fixture.store.completeResult = CompletionResult{Success: false}

	_, err := fixture.service.CompleteChallenge(context.Background(), fixture.challenge.ID, "a thoughtful answer", fixture.now, time.UTC)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(fixture.service.UserChallenges()) != 0 {
		t.Fatalf("expected no local completion")
	}
}

func TestChallengeServiceConflictAdoptsRemoteCompletion(t *testing.T) {
	fixture := newChallengeFixture(t)
	fixture.store.completeErr = fmt.Errorf("insert user challenge: %w", ErrConflict)
	remote := completedChallenge(fixture.now.Add(-10 * time.Minute))
	remote.ChallengeID = fixture.challenge.ID
	fixture.store.userChallenges[fixture.userID] = []models.UserChallenge{remote}
	fixture.store.stats[fixture.userID] = models.UserStats{UserID: fixture.userID, TotalPoints: 210, Level: 3}

	state, err := fixture.service.CompleteChallenge(context.Background(), fixture.challenge.ID, "a thoughtful answer", fixture.now, time.UTC)
	if err != nil {
		t.Fatalf("expected conflict to be adopted, got %v", err)
	}
	if !state.AlreadyCompleted || state.UserChallenge == nil || state.UserChallenge.ID != remote.ID {
		t.Fatalf("expected remote completion adopted, got %#v", state)
	}
	if state.TotalPoints != 210 || state.Level != 3 || state.CompletedToday != 1 {
		t.Fatalf("expected remote stats adopted, got %#v", state)
	}
}

func TestChallengeServiceUnknownChallenge(t *testing.T) {
	fixture := newChallengeFixture(t)

	_, err := fixture.service.CompleteChallenge(context.Background(), uuid.New(), "a thoughtful answer", fixture.now, time.UTC)
	if !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestChallengeServiceDailyChallengeCachedUntilMidnight(t *testing.T) {
	fixture := newChallengeFixture(t)
	location := mustLocation(t, "Europe/Berlin")
	now := time.Date(2026, time.May, 10, 22, 0, 0, 0, location)

	daily, err := fixture.service.DailyChallenge(context.Background(), now, location)
	if err != nil || daily == nil || daily.ID != fixture.challenge.ID {
		t.Fatalf("expected daily challenge, got %v (%v)", daily, err)
	}
	if ttl := fixture.cache.ttls[fixture.userID.String()+":2026-05-10"]; ttl != 2*time.Hour {
		t.Fatalf("expected ttl until local midnight, got %s", ttl)
	}

	if _, err := fixture.service.DailyChallenge(context.Background(), now.Add(time.Hour), location); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if fixture.store.dailyCalls != 1 {
		t.Fatalf("expected one store call within the day, got %d", fixture.store.dailyCalls)
	}

	fixture.store.dailyChallenges = nil
	next, err := fixture.service.DailyChallenge(context.Background(), now.Add(3*time.Hour), location)
	if err != nil {
		t.Fatalf("next day: %v", err)
	}
	if next != nil || fixture.store.dailyCalls != 2 {
		t.Fatalf("expected refresh on the new day with no challenge, got %v after %d calls", next, fixture.store.dailyCalls)
	}
}

func TestChallengeServiceRefreshBypassesCachedPick(t *testing.T) {
	fixture := newChallengeFixture(t)
	next := DefaultChallenges[1]
	fixture.cache.entries[fixture.userID.String()+":2026-05-10"] = &fixture.challenge
	fixture.store.dailyChallenges = []models.Challenge{next}

	cached, err := fixture.service.DailyChallenge(context.Background(), fixture.now, time.UTC)
	if err != nil || cached == nil || cached.ID != fixture.challenge.ID {
		t.Fatalf("expected cached pick, got %v (%v)", cached, err)
	}
	if fixture.store.dailyCalls != 0 {
		t.Fatalf("expected cache hit without store call, got %d", fixture.store.dailyCalls)
	}

	refreshed, err := fixture.service.RefreshDailyChallenge(context.Background(), fixture.now, time.UTC)
	if err != nil || refreshed == nil || refreshed.ID != next.ID {
		t.Fatalf("expected store pick after refresh, got %v (%v)", refreshed, err)
	}
	if stored := fixture.cache.entries[fixture.userID.String()+":2026-05-10"]; stored == nil || stored.ID != next.ID {
		t.Fatalf("expected cache overwritten, got %v", stored)
	}
}
