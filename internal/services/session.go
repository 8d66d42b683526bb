package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"go.uber.org/zap"
)

type CheckInResult struct {
	Update   StreakUpdate     `json:"update"`
	Stats    models.UserStats `json:"stats"`
	Unlocked []Unlock         `json:"unlocked"`
}

type CompletionOutcome struct {
	ChallengeState
	Unlocked []Unlock `json:"unlocked"`
}

type SessionSnapshot struct {
	UserID                 uuid.UUID            `json:"user_id"`
	Timezone               string               `json:"timezone"`
	Period                 models.Period        `json:"current_period"`
	Streaks                models.CheckInStreak `json:"streaks"`
	LiveStreaks            models.CheckInStreak `json:"live_streaks"`
	OverallStreak          int                  `json:"overall_streak"`
	StreakPending          bool                 `json:"streak_pending"`
	Stats                  models.UserStats     `json:"stats"`
	UnlockedAchievementIDs []string             `json:"unlocked_achievement_ids"`
	UnlockedBadgeIDs       []string             `json:"unlocked_badge_ids"`
	DailyChallenge         *models.Challenge    `json:"daily_challenge"`
	CompletedToday         int                  `json:"completed_today"`
	DailyChallengeLimit    int                  `json:"daily_challenge_limit"`
}

// Session groups the per-user services. Every exported method takes the
// session lock, so mutations for one user apply in the order they arrive.
type Session struct {
	mu       sync.Mutex
	userID   uuid.UUID
	profiles ProfileStore
	fallback *time.Location
	now      func() time.Time
	logger   *zap.Logger

	location *time.Location
	loaded   bool

	Stats      *StatsTracker
	Streaks    *StreakService
	Unlocks    *UnlockService
	Challenges *ChallengeService
}

func NewSession(userID uuid.UUID, deps SessionDeps) *Session {
	deps = deps.withDefaults()
	stats := NewStatsTracker(userID, deps.Store, deps.Metrics, deps.Logger)
	return &Session{
		userID:     userID,
		profiles:   deps.Store,
		fallback:   deps.Location,
		now:        deps.Now,
		logger:     deps.Logger,
		location:   deps.Location,
		Stats:      stats,
		Streaks:    NewStreakService(userID, deps.Store, stats, deps.Notifier, deps.Metrics, deps.Logger),
		Unlocks:    NewUnlockService(userID, deps.Store, deps.Achievements, deps.Metrics, deps.Logger),
		Challenges: NewChallengeService(userID, deps.Store, stats, deps.Cache, deps.DailyChallengeLimit, deps.Metrics, deps.Logger),
	}
}

func (session *Session) UserID() uuid.UUID {
	return session.userID
}

func (session *Session) Location() *time.Location {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.location
}

// Reconcile reloads every service from the persistence side, dropping any
// pending local state, then retries pending unlocks.
func (session *Session) Reconcile(ctx context.Context) error {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.reconcile(ctx)
}

func (session *Session) reconcile(ctx context.Context) error {
	profile, err := session.profiles.EnsureProfile(ctx, session.userID, session.fallback.String())
	if err != nil {
		return newPersistenceError("ensure profile", err)
	}
	session.location = LoadLocation(profile.Timezone, session.fallback)

	if err := errors.Join(
		session.Streaks.Load(ctx),
		session.Stats.Load(ctx),
		session.Unlocks.Load(ctx),
		session.Challenges.Load(ctx),
	); err != nil {
		return err
	}
	session.loaded = true

	now := session.now()
	if session.Unlocks.HasPending() {
		session.Unlocks.Evaluate(ctx, session.Streaks.OverallStreak(now, session.location), session.Stats.Stats(), now)
	}
	return nil
}

// SyncPending retries work left pending by earlier persistence failures: a
// streak save and any unlock inserts. Pending state survives a failed retry.
func (session *Session) SyncPending(ctx context.Context) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.loaded {
		return nil
	}
	return session.syncPending(ctx)
}

func (session *Session) syncPending(ctx context.Context) error {
	now := session.now()
	if session.Streaks.Pending() {
		update, err := session.Streaks.RetryPending(ctx, now, session.location)
		if err != nil {
			return err
		}
		if update.Changed {
			session.Unlocks.Evaluate(ctx, update.OverallStreak, session.Stats.Stats(), now)
		}
	}
	if session.Unlocks.HasPending() {
		session.Unlocks.Evaluate(ctx, session.Streaks.OverallStreak(now, session.location), session.Stats.Stats(), now)
	}
	return nil
}

// HasPending reports whether a streak save or unlock insert awaits a retry.
func (session *Session) HasPending() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.Streaks.Pending() || session.Unlocks.HasPending()
}

func (session *Session) ensureLoaded(ctx context.Context) error {
	if session.loaded {
		return nil
	}
	return session.reconcile(ctx)
}

// CheckIn records a check-in for period, or for the current local period when
// period is nil, and evaluates unlocks against the resulting totals.
func (session *Session) CheckIn(ctx context.Context, period *models.Period) (CheckInResult, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return CheckInResult{}, err
	}

	now := session.now()
	target := CurrentPeriod(now, session.location)
	if period != nil {
		target = *period
	}

	update, err := session.Streaks.CheckIn(ctx, target, now, session.location)
	result := CheckInResult{Update: update, Stats: session.Stats.Stats()}
	if err != nil {
		return result, err
	}
	if update.Changed {
		result.Unlocked = session.Unlocks.Evaluate(ctx, update.OverallStreak, result.Stats, now)
	}
	if result.Unlocked == nil {
		result.Unlocked = []Unlock{}
	}
	return result, nil
}

func (session *Session) CompleteChallenge(ctx context.Context, challengeID uuid.UUID, response string) (CompletionOutcome, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return CompletionOutcome{}, err
	}

	now := session.now()
	state, err := session.Challenges.CompleteChallenge(ctx, challengeID, response, now, session.location)
	if err != nil {
		return CompletionOutcome{}, err
	}

	overall := session.Streaks.OverallStreak(now, session.location)
	return CompletionOutcome{
		ChallengeState: state,
		Unlocked:       session.Unlocks.Evaluate(ctx, overall, session.Stats.Stats(), now),
	}, nil
}

func (session *Session) DailyChallenge(ctx context.Context) (*models.Challenge, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return session.Challenges.DailyChallenge(ctx, session.now(), session.location)
}

func (session *Session) RefreshDailyChallenge(ctx context.Context) (*models.Challenge, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return session.Challenges.RefreshDailyChallenge(ctx, session.now(), session.location)
}

func (session *Session) Snapshot(ctx context.Context) (SessionSnapshot, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return SessionSnapshot{}, err
	}
	if err := session.syncPending(ctx); err != nil {
		session.logger.Warn("pending state still unsaved",
			zap.String("user_id", session.userID.String()),
			zap.Error(err),
		)
	}

	now := session.now()
	daily, err := session.Challenges.DailyChallenge(ctx, now, session.location)
	if err != nil {
		session.logger.Warn("daily challenge unavailable for snapshot",
			zap.String("user_id", session.userID.String()),
			zap.Error(err),
		)
	}

	streaks := session.Streaks.Streaks()
	return SessionSnapshot{
		UserID:                 session.userID,
		Timezone:               session.location.String(),
		Period:                 CurrentPeriod(now, session.location),
		Streaks:                streaks,
		LiveStreaks:            LiveStreaks(streaks, now, session.location),
		OverallStreak:          OverallStreak(streaks, now, session.location),
		StreakPending:          session.Streaks.Pending(),
		Stats:                  session.Stats.Stats(),
		UnlockedAchievementIDs: session.Unlocks.UnlockedAchievementIDs(),
		UnlockedBadgeIDs:       session.Unlocks.UnlockedBadgeIDs(),
		DailyChallenge:         daily,
		CompletedToday:         session.Challenges.CompletedToday(now, session.location),
		DailyChallengeLimit:    session.Challenges.DailyLimit(),
	}, nil
}

func (session *Session) Achievements(ctx context.Context) ([]AchievementView, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return session.Unlocks.Achievements(), nil
}

func (session *Session) Badges(ctx context.Context) ([]BadgeView, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := session.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return session.Unlocks.Badges(), nil
}

// UpdateProfile stores profile changes. A new timezone applies to the next
// operation of this session.
func (session *Session) UpdateProfile(ctx context.Context, updates models.ProfileUpdate) (models.Profile, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if err := ValidateProfileUpdate(updates); err != nil {
		return models.Profile{}, err
	}
	if err := session.ensureLoaded(ctx); err != nil {
		return models.Profile{}, err
	}

	profile, err := session.profiles.UpdateProfile(ctx, session.userID, updates)
	if err != nil {
		return models.Profile{}, newPersistenceError("update profile", err)
	}
	location := LoadLocation(profile.Timezone, session.fallback)
	if location.String() != session.location.String() {
		session.location = location
		session.Challenges.dailyKey = ""
	}
	return profile, nil
}
