package services

import "github.com/terraincognita07/dailyglow/internal/models"

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (set idSet) has(id string) bool {
	_, ok := set[id]
	return ok
}

func (set idSet) add(id string) {
	set[id] = struct{}{}
}

// CheckForPossibleAchievements returns catalog entries whose streak
// requirement is met by overallStreak and that are not already unlocked, in
// catalog order.
func CheckForPossibleAchievements(overallStreak int, catalog []models.Achievement, alreadyUnlocked map[string]struct{}) []models.Achievement {
	eligible := make([]models.Achievement, 0)
	for _, achievement := range catalog {
		if achievement.RequiresStreak == nil || *achievement.RequiresStreak > overallStreak {
			continue
		}
		if _, unlocked := alreadyUnlocked[achievement.ID]; unlocked {
			continue
		}
		eligible = append(eligible, achievement)
	}
	return eligible
}

type BadgeMetrics struct {
	OverallStreak int
	TotalEntries  int
	TotalPoints   int
	Level         int
}

func BadgeMetricsFor(overallStreak int, stats models.UserStats) BadgeMetrics {
	return BadgeMetrics{
		OverallStreak: overallStreak,
		TotalEntries:  stats.TotalEntries,
		TotalPoints:   stats.TotalPoints,
		Level:         stats.Level,
	}
}

func (metrics BadgeMetrics) ValueFor(category models.BadgeCategory) (int, bool) {
	switch category {
	case models.BadgeCategoryStreak:
		return metrics.OverallStreak, true
	case models.BadgeCategoryEntries:
		return metrics.TotalEntries, true
	case models.BadgeCategoryPoints:
		return metrics.TotalPoints, true
	case models.BadgeCategoryLevel:
		return metrics.Level, true
	default:
		return 0, false
	}
}

func CheckForPossibleBadges(metrics BadgeMetrics, catalog []models.Badge, alreadyUnlocked map[string]struct{}) []models.Badge {
	eligible := make([]models.Badge, 0)
	for _, badge := range catalog {
		value, known := metrics.ValueFor(badge.Category)
		if !known || badge.Threshold > value {
			continue
		}
		if _, unlocked := alreadyUnlocked[badge.ID]; unlocked {
			continue
		}
		eligible = append(eligible, badge)
	}
	return eligible
}

type BadgeStyle struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var defaultBadgeStyle = BadgeStyle{Color: "#8E8E93", Icon: "ribbon"}

var badgeStyles = map[models.BadgeCategory]BadgeStyle{
	models.BadgeCategoryStreak:  {Color: "#FF9500", Icon: "flame"},
	models.BadgeCategoryEntries: {Color: "#34C759", Icon: "book"},
	models.BadgeCategoryPoints:  {Color: "#FFD60A", Icon: "star"},
	models.BadgeCategoryLevel:   {Color: "#AF52DE", Icon: "trophy"},
}

func BadgeStyleFor(category models.BadgeCategory) BadgeStyle {
	if style, ok := badgeStyles[category]; ok {
		return style
	}
	return defaultBadgeStyle
}
