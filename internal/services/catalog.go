package services

import (
	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
)

func streakRequirement(days int) *int {
	return &days
}

// DefaultAchievements is the in-process achievement catalog.
var DefaultAchievements = []models.Achievement{
	{ID: "first-glow", Name: "First Glow", Description: "Complete your first check-in", PointsAward: 10, RequiresStreak: streakRequirement(1)},
	{ID: "streak-3", Name: "Warming Up", Description: "Keep a 3 day streak", PointsAward: 15, RequiresStreak: streakRequirement(3)},
	{ID: "streak-7", Name: "Week of Light", Description: "Keep a 7 day streak", PointsAward: 30, RequiresStreak: streakRequirement(7)},
	{ID: "streak-14", Name: "Steady Glow", Description: "Keep a 14 day streak", PointsAward: 50, RequiresStreak: streakRequirement(14)},
	{ID: "streak-30", Name: "Monthly Radiance", Description: "Keep a 30 day streak", PointsAward: 100, RequiresStreak: streakRequirement(30)},
	{ID: "streak-60", Name: "Bright Habit", Description: "Keep a 60 day streak", PointsAward: 150, RequiresStreak: streakRequirement(60)},
	{ID: "streak-90", Name: "Inner Sun", Description: "Keep a 90 day streak", PointsAward: 250, RequiresStreak: streakRequirement(90)},
	{ID: "reflective-soul", Name: "Reflective Soul", Description: "Awarded by the team for thoughtful journaling", PointsAward: 50},
}

var DefaultBadges = []models.Badge{
	{ID: "streak-starter", Name: "Streak Starter", Description: "Reach a 3 day streak", Category: models.BadgeCategoryStreak, Threshold: 3, PointsAward: 5},
	{ID: "streak-keeper", Name: "Streak Keeper", Description: "Reach a 7 day streak", Category: models.BadgeCategoryStreak, Threshold: 7, PointsAward: 10},
	{ID: "streak-legend", Name: "Streak Legend", Description: "Reach a 30 day streak", Category: models.BadgeCategoryStreak, Threshold: 30, PointsAward: 25},
	{ID: "journal-10", Name: "Journaler", Description: "Log 10 check-ins", Category: models.BadgeCategoryEntries, Threshold: 10, PointsAward: 5},
	{ID: "journal-50", Name: "Storyteller", Description: "Log 50 check-ins", Category: models.BadgeCategoryEntries, Threshold: 50, PointsAward: 20},
	{ID: "points-100", Name: "Centurion", Description: "Earn 100 points", Category: models.BadgeCategoryPoints, Threshold: 100, PointsAward: 0},
	{ID: "points-500", Name: "Glow Getter", Description: "Earn 500 points", Category: models.BadgeCategoryPoints, Threshold: 500, PointsAward: 0},
	{ID: "level-5", Name: "Rising Star", Description: "Reach level 5", Category: models.BadgeCategoryLevel, Threshold: 5, PointsAward: 0},
}

var DefaultChallenges = []models.Challenge{
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a01"), Title: "Name the feeling", Description: "Describe how you feel right now in one sentence.", Type: models.ChallengeMood, PointsAward: 10},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a02"), Title: "Three good things", Description: "List three things you are grateful for today.", Type: models.ChallengeGratitude, PointsAward: 15},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a03"), Title: "One minute of breath", Description: "Breathe slowly for a minute and note what you noticed.", Type: models.ChallengeMindfulness, PointsAward: 10},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a04"), Title: "Tiny poem", Description: "Write a short poem about your morning.", Type: models.ChallengeCreative, PointsAward: 20},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a05"), Title: "Weather report", Description: "Describe your mood as if it were the weather.", Type: models.ChallengeMood, PointsAward: 10},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a06"), Title: "Thank someone", Description: "Write a thank-you note to someone who helped you.", Type: models.ChallengeGratitude, PointsAward: 15},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a07"), Title: "Body scan", Description: "Scan from head to toe and write where you hold tension.", Type: models.ChallengeMindfulness, PointsAward: 10},
	{ID: uuid.MustParse("7b0f9a52-3f5e-4c61-9a55-1d0c6a4e0a08"), Title: "Six word story", Description: "Tell the story of your week in six words and explain them.", Type: models.ChallengeCreative, PointsAward: 20},
}
