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

type SessionDeps struct {
	Store               Store
	Notifier            MilestoneNotifier
	Cache               DailyChallengeCache
	Metrics             *Metrics
	Logger              *zap.Logger
	Location            *time.Location
	DailyChallengeLimit int
	Achievements        []models.Achievement
	Now                 func() time.Time
}

func (deps SessionDeps) withDefaults() SessionDeps {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Location = resolveLocation(deps.Location)
	if deps.DailyChallengeLimit <= 0 {
		deps.DailyChallengeLimit = DefaultDailyChallengeLimit
	}
	if deps.Achievements == nil {
		deps.Achievements = DefaultAchievements
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return deps
}

// SessionRegistry keeps one Session per user, created on first use.
type SessionRegistry struct {
	deps     SessionDeps
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewSessionRegistry(deps SessionDeps) *SessionRegistry {
	return &SessionRegistry{
		deps:     deps.withDefaults(),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Session returns the session for userID. Loading happens on the first
// session call, under the session's own lock.
func (registry *SessionRegistry) Session(userID uuid.UUID) *Session {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if session, ok := registry.sessions[userID]; ok {
		return session
	}
	session := NewSession(userID, registry.deps)
	registry.sessions[userID] = session
	return session
}

func (registry *SessionRegistry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.sessions)
}

func (registry *SessionRegistry) snapshot() []*Session {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	sessions := make([]*Session, 0, len(registry.sessions))
	for _, session := range registry.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// RefreshDailyChallenges refreshes the daily challenge of every live session.
func (registry *SessionRegistry) RefreshDailyChallenges(ctx context.Context) error {
	var errs []error
	for _, session := range registry.snapshot() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := session.RefreshDailyChallenge(ctx); err != nil {
			registry.deps.Logger.Warn("daily challenge refresh failed",
				zap.String("user_id", session.UserID().String()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SyncPending retries pending saves for every live session that has any.
func (registry *SessionRegistry) SyncPending(ctx context.Context) error {
	var errs []error
	for _, session := range registry.snapshot() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !session.HasPending() {
			continue
		}
		if err := session.SyncPending(ctx); err != nil {
			registry.deps.Logger.Warn("pending state retry failed",
				zap.String("user_id", session.UserID().String()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Rollover runs at each local midnight: pending saves first, then new daily
// challenges.
func (registry *SessionRegistry) Rollover(ctx context.Context) error {
	return errors.Join(registry.SyncPending(ctx), registry.RefreshDailyChallenges(ctx))
}
