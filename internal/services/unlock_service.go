package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
	"go.uber.org/zap"
)

type UnlockKind string

const (
	UnlockAchievement UnlockKind = "achievement"
	UnlockBadge       UnlockKind = "badge"
)

// Unlock is a newly unlocked achievement or badge. Pending marks an unlock
// shown locally whose row has not been stored yet.
type Unlock struct {
	Kind        UnlockKind  `json:"kind"`
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PointsAward int         `json:"points_award"`
	Style       *BadgeStyle `json:"style,omitempty"`
	Pending     bool        `json:"pending"`
}

type AchievementView struct {
	models.Achievement
	Unlocked bool `json:"unlocked"`
	Pending  bool `json:"pending"`
}

type BadgeView struct {
	models.Badge
	Style    BadgeStyle `json:"style"`
	Unlocked bool       `json:"unlocked"`
	Pending  bool       `json:"pending"`
}

type UnlockService struct {
	userID  uuid.UUID
	store   UnlockStore
	catalog []models.Achievement
	metrics *Metrics
	logger  *zap.Logger

	badges               []models.Badge
	unlockedAchievements idSet
	unlockedBadges       idSet
	pendingAchievements  idSet
	pendingBadges        idSet
}

func NewUnlockService(userID uuid.UUID, store UnlockStore, catalog []models.Achievement, metrics *Metrics, logger *zap.Logger) *UnlockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = DefaultAchievements
	}
	return &UnlockService{
		userID:               userID,
		store:                store,
		catalog:              catalog,
		metrics:              metrics,
		logger:               logger,
		unlockedAchievements: idSet{},
		unlockedBadges:       idSet{},
		pendingAchievements:  idSet{},
		pendingBadges:        idSet{},
	}
}

// Load reads the badge catalog and both unlocked sets. Pending unlocks are
// kept so the next Evaluate retries them.
func (service *UnlockService) Load(ctx context.Context) error {
	defer service.metrics.ObserveStore("load_unlocks", time.Now())

	achievementIDs, err := service.store.ListUnlockedAchievementIDs(ctx, service.userID)
	if err != nil {
		return newPersistenceError("list unlocked achievements", err)
	}
	badges, err := service.store.ListBadges(ctx)
	if err != nil {
		return newPersistenceError("list badges", err)
	}
	badgeIDs, err := service.store.ListUnlockedBadgeIDs(ctx, service.userID)
	if err != nil {
		return newPersistenceError("list unlocked badges", err)
	}

	service.badges = badges
	service.unlockedAchievements = newIDSet(achievementIDs)
	service.unlockedBadges = newIDSet(badgeIDs)
	for id := range service.pendingAchievements {
		if service.unlockedAchievements.has(id) {
			delete(service.pendingAchievements, id)
		}
	}
	for id := range service.pendingBadges {
		if service.unlockedBadges.has(id) {
			delete(service.pendingBadges, id)
		}
	}
	return nil
}

// Evaluate unlocks every achievement and badge the given totals qualify for.
// Only unlocks the caller has not been shown before are returned.
func (service *UnlockService) Evaluate(ctx context.Context, overallStreak int, stats models.UserStats, now time.Time) []Unlock {
	unlocked := make([]Unlock, 0)

	for _, achievement := range CheckForPossibleAchievements(overallStreak, service.catalog, service.unlockedAchievements) {
		retry := service.pendingAchievements.has(achievement.ID)
		outcome, err := service.insertAchievement(ctx, achievement.ID, now)
		pending := service.settle(UnlockAchievement, achievement.ID, outcome, err, service.unlockedAchievements, service.pendingAchievements)
		if retry || (err == nil && outcome == AlreadyExists) {
			continue
		}
		unlocked = append(unlocked, Unlock{
			Kind:        UnlockAchievement,
			ID:          achievement.ID,
			Name:        achievement.Name,
			Description: achievement.Description,
			PointsAward: achievement.PointsAward,
			Pending:     pending,
		})
	}

	metrics := BadgeMetricsFor(overallStreak, stats)
	for _, badge := range CheckForPossibleBadges(metrics, service.badges, service.unlockedBadges) {
		retry := service.pendingBadges.has(badge.ID)
		outcome, err := service.insertBadge(ctx, badge.ID, now)
		pending := service.settle(UnlockBadge, badge.ID, outcome, err, service.unlockedBadges, service.pendingBadges)
		if retry || (err == nil && outcome == AlreadyExists) {
			continue
		}
		style := BadgeStyleFor(badge.Category)
		unlocked = append(unlocked, Unlock{
			Kind:        UnlockBadge,
			ID:          badge.ID,
			Name:        badge.Name,
			Description: badge.Description,
			PointsAward: badge.PointsAward,
			Style:       &style,
			Pending:     pending,
		})
	}

	return unlocked
}

// settle records the insert result in the known sets and reports whether the
// unlock is still pending.
func (service *UnlockService) settle(kind UnlockKind, id string, outcome InsertOutcome, err error, unlocked idSet, pending idSet) bool {
	if err != nil {
		pending.add(id)
		service.metrics.Unlock(string(kind), "pending")
		service.logger.Warn("unlock not persisted",
			zap.String("user_id", service.userID.String()),
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
		return true
	}

	delete(pending, id)
	unlocked.add(id)
	service.metrics.Unlock(string(kind), outcome.String())
	if outcome == AlreadyExists {
		service.logger.Debug("unlock already stored",
			zap.String("user_id", service.userID.String()),
			zap.String("kind", string(kind)),
			zap.String("id", id),
		)
	}
	return false
}

func (service *UnlockService) insertAchievement(ctx context.Context, id string, now time.Time) (InsertOutcome, error) {
	defer service.metrics.ObserveStore("insert_user_achievement", time.Now())
	return service.store.InsertUserAchievement(ctx, service.userID, id, now)
}

func (service *UnlockService) insertBadge(ctx context.Context, id string, now time.Time) (InsertOutcome, error) {
	defer service.metrics.ObserveStore("insert_user_badge", time.Now())
	return service.store.InsertUserBadge(ctx, service.userID, id, now)
}

func (service *UnlockService) UnlockedAchievementIDs() []string {
	return sortedIDs(service.unlockedAchievements, service.pendingAchievements)
}

func (service *UnlockService) UnlockedBadgeIDs() []string {
	return sortedIDs(service.unlockedBadges, service.pendingBadges)
}

func (service *UnlockService) HasPending() bool {
	return len(service.pendingAchievements) > 0 || len(service.pendingBadges) > 0
}

func (service *UnlockService) Achievements() []AchievementView {
	views := make([]AchievementView, 0, len(service.catalog))
	for _, achievement := range service.catalog {
		pending := service.pendingAchievements.has(achievement.ID)
		views = append(views, AchievementView{
			Achievement: achievement,
			Unlocked:    pending || service.unlockedAchievements.has(achievement.ID),
			Pending:     pending,
		})
	}
	return views
}

func (service *UnlockService) Badges() []BadgeView {
	views := make([]BadgeView, 0, len(service.badges))
	for _, badge := range service.badges {
		pending := service.pendingBadges.has(badge.ID)
		views = append(views, BadgeView{
			Badge:    badge,
			Style:    BadgeStyleFor(badge.Category),
			Unlocked: pending || service.unlockedBadges.has(badge.ID),
			Pending:  pending,
		})
	}
	return views
}

func sortedIDs(sets ...idSet) []string {
	merged := idSet{}
	for _, set := range sets {
		for id := range set {
			merged.add(id)
		}
	}
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
