package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"go.uber.org/zap"
)

type ChallengeState struct {
	Challenge        models.Challenge      `json:"challenge"`
	UserChallenge    *models.UserChallenge `json:"user_challenge,omitempty"`
	TotalPoints      int                   `json:"total_points"`
	Level            int                   `json:"level"`
	CompletedToday   int                   `json:"completed_today"`
	AlreadyCompleted bool                  `json:"already_completed"`
}

type ChallengeService struct {
	userID     uuid.UUID
	store      ChallengeStore
	stats      *StatsTracker
	cache      DailyChallengeCache
	dailyLimit int
	metrics    *Metrics
	logger     *zap.Logger

	daily          *models.Challenge
	dailyKey       string
	userChallenges []models.UserChallenge
}

func NewChallengeService(userID uuid.UUID, store ChallengeStore, stats *StatsTracker, cache DailyChallengeCache, dailyLimit int, metrics *Metrics, logger *zap.Logger) *ChallengeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyChallengeLimit
	}
	return &ChallengeService{
		userID:     userID,
		store:      store,
		stats:      stats,
		cache:      cache,
		dailyLimit: dailyLimit,
		metrics:    metrics,
		logger:     logger,
	}
}

func (service *ChallengeService) Load(ctx context.Context) error {
	defer service.metrics.ObserveStore("list_user_challenges", time.Now())
	userChallenges, err := service.store.ListUserChallenges(ctx, service.userID)
	if err != nil {
		return newPersistenceError("list user challenges", err)
	}
	service.userChallenges = userChallenges
	return nil
}

func (service *ChallengeService) UserChallenges() []models.UserChallenge {
	result := make([]models.UserChallenge, len(service.userChallenges))
	copy(result, service.userChallenges)
	return result
}

func (service *ChallengeService) CompletedToday(now time.Time, location *time.Location) int {
	return CompletedToday(service.userChallenges, now, location)
}

func (service *ChallengeService) DailyLimit() int {
	return service.dailyLimit
}

// DailyChallenge returns the challenge for the local day of now, refreshing it
// when the day has changed since the last fetch.
func (service *ChallengeService) DailyChallenge(ctx context.Context, now time.Time, location *time.Location) (*models.Challenge, error) {
	if service.dailyKey == LocalDayKey(now, location) {
		return service.daily, nil
	}
	return service.loadDailyChallenge(ctx, now, location, true)
}

// RefreshDailyChallenge always asks the store, so a completed pick is
// replaced, and overwrites the shared cache entry.
func (service *ChallengeService) RefreshDailyChallenge(ctx context.Context, now time.Time, location *time.Location) (*models.Challenge, error) {
	return service.loadDailyChallenge(ctx, now, location, false)
}

func (service *ChallengeService) loadDailyChallenge(ctx context.Context, now time.Time, location *time.Location, readCache bool) (*models.Challenge, error) {
	dayKey := LocalDayKey(now, location)

	if readCache && service.cache != nil {
		cached, found, err := service.cache.GetDailyChallenge(ctx, service.userID, dayKey)
		if err != nil {
			service.logger.Warn("daily challenge cache read failed",
				zap.String("user_id", service.userID.String()),
				zap.Error(err),
			)
		} else if found {
			service.daily = cached
			service.dailyKey = dayKey
			return cached, nil
		}
	}

	challenges, err := service.getDailyChallenge(ctx)
	if err != nil {
		return nil, classifyRemoteError("get daily challenge", err)
	}

	var daily *models.Challenge
	if len(challenges) > 0 {
		challenge := challenges[0]
		daily = &challenge
	}
	service.daily = daily
	service.dailyKey = dayKey

	if service.cache != nil {
		ttl := NextLocalMidnight(now, location).Sub(now)
		if err := service.cache.SetDailyChallenge(ctx, service.userID, dayKey, daily, ttl); err != nil {
			service.logger.Warn("daily challenge cache write failed",
				zap.String("user_id", service.userID.String()),
				zap.Error(err),
			)
		}
	}
	return daily, nil
}

func (service *ChallengeService) getDailyChallenge(ctx context.Context) ([]models.Challenge, error) {
	defer service.metrics.ObserveStore("get_daily_challenge", time.Now())
	return service.store.GetDailyChallenge(ctx, service.userID)
}

// CompleteChallenge validates and records a completion. The daily limit is
// checked before anything touches the store. Local state changes only once
// the persistence side has accepted the completion.
func (service *ChallengeService) CompleteChallenge(ctx context.Context, challengeID uuid.UUID, response string, now time.Time, location *time.Location) (ChallengeState, error) {
	if err := CheckDailyLimit(service.userChallenges, now, location, service.dailyLimit); err != nil {
		service.metrics.Completion(completionOutcome(err))
		return ChallengeState{}, err
	}

	challenge, err := service.findChallenge(ctx, challengeID)
	if err != nil {
		service.metrics.Completion(completionOutcome(err))
		return ChallengeState{}, err
	}
	if err := ValidateResponse(challenge.Type, response); err != nil {
		service.metrics.Completion(completionOutcome(err))
		return ChallengeState{}, err
	}

	result, err := service.completeChallenge(ctx, challengeID, response)
	if err != nil {
		err = classifyRemoteError("complete challenge", err)
		if errors.Is(err, ErrConflict) {
			return service.adoptRemoteCompletion(ctx, challenge, now, location)
		}
		service.metrics.Completion(completionOutcome(err))
		return ChallengeState{}, err
	}
	if !result.Success {
		service.metrics.Completion("rejected")
		return ChallengeState{}, &PersistenceError{Op: "complete challenge", Message: "completion was not accepted"}
	}

	completedAt := now
	userChallenge := models.UserChallenge{
		ID:          uuid.New(),
		UserID:      service.userID,
		ChallengeID: challengeID,
		Status:      models.ChallengeCompleted,
		Response:    strings.TrimSpace(response),
		CompletedAt: &completedAt,
		CompletedOn: LocalDayKey(now, location),
		CreatedAt:   now,
	}
	service.userChallenges = append(service.userChallenges, userChallenge)
	if service.stats != nil {
		service.stats.MergeCompletion(result)
	}
	service.metrics.Completion("completed")

	return ChallengeState{
		Challenge:      challenge,
		UserChallenge:  &userChallenge,
		TotalPoints:    result.TotalPoints,
		Level:          result.Level,
		CompletedToday: service.CompletedToday(now, location),
	}, nil
}

func (service *ChallengeService) completeChallenge(ctx context.Context, challengeID uuid.UUID, response string) (CompletionResult, error) {
	defer service.metrics.ObserveStore("complete_challenge", time.Now())
	return service.store.CompleteChallenge(ctx, service.userID, challengeID, response)
}

// adoptRemoteCompletion handles a completion another device already stored
// for today.
func (service *ChallengeService) adoptRemoteCompletion(ctx context.Context, challenge models.Challenge, now time.Time, location *time.Location) (ChallengeState, error) {
	service.logger.Debug("challenge already completed elsewhere, adopting remote",
		zap.String("user_id", service.userID.String()),
		zap.String("challenge_id", challenge.ID.String()),
	)
	if err := service.Load(ctx); err != nil {
		service.metrics.Completion("error")
		return ChallengeState{}, err
	}

	state := ChallengeState{Challenge: challenge, AlreadyCompleted: true}
	if service.stats != nil {
		if err := service.stats.Load(ctx); err != nil {
			service.metrics.Completion("error")
			return ChallengeState{}, err
		}
		stats := service.stats.Stats()
		state.TotalPoints = stats.TotalPoints
		state.Level = stats.Level
	}

	dayKey := LocalDayKey(now, location)
	for index := range service.userChallenges {
		candidate := service.userChallenges[index]
		if candidate.ChallengeID == challenge.ID && candidate.Status == models.ChallengeCompleted && candidate.CompletedAt != nil && LocalDayKey(*candidate.CompletedAt, location) == dayKey {
			state.UserChallenge = &candidate
			break
		}
	}
	state.CompletedToday = service.CompletedToday(now, location)
	service.metrics.Completion("already_completed")
	return state, nil
}

func (service *ChallengeService) findChallenge(ctx context.Context, challengeID uuid.UUID) (models.Challenge, error) {
	if service.daily != nil && service.daily.ID == challengeID {
		return *service.daily, nil
	}
	challenge, found, err := service.store.FindChallenge(ctx, challengeID)
	if err != nil {
		return models.Challenge{}, newPersistenceError("find challenge", err)
	}
	if !found {
		return models.Challenge{}, ErrChallengeNotFound
	}
	return challenge, nil
}

func completionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrDailyLimitReached):
		return "limit_reached"
	case errors.Is(err, ErrValidation):
		return "too_short"
	case errors.Is(err, ErrChallengeNotFound):
		return "not_found"
	default:
		return "error"
	}
}
