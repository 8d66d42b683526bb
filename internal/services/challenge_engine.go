package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/dailyglow/internal/models"
)

const (
	DefaultDailyChallengeLimit = 2
	creativeMinResponseLength  = 20
	defaultMinResponseLength   = 10
)

func MinResponseLength(challengeType models.ChallengeType) int {
	if challengeType == models.ChallengeCreative {
		return creativeMinResponseLength
	}
	return defaultMinResponseLength
}

func ResponseLength(response string) int {
	return utf8.RuneCountInString(strings.TrimSpace(response))
}

func ValidateResponse(challengeType models.ChallengeType, response string) error {
	minLength := MinResponseLength(challengeType)
	if length := ResponseLength(response); length < minLength {
		return &ResponseTooShortError{MinLength: minLength, Length: length}
	}
	return nil
}

// CompletedToday counts completed user challenges whose completion falls on
// the local calendar day of now.
func CompletedToday(userChallenges []models.UserChallenge, now time.Time, location *time.Location) int {
	count := 0
	for _, userChallenge := range userChallenges {
		if userChallenge.Status != models.ChallengeCompleted || userChallenge.CompletedAt == nil {
			continue
		}
		if IsSameLocalDay(*userChallenge.CompletedAt, now, location) {
			count++
		}
	}
	return count
}

// CheckDailyLimit fails with ErrDailyLimitReached once dailyLimit challenges
// were completed on the local day of now.
func CheckDailyLimit(userChallenges []models.UserChallenge, now time.Time, location *time.Location, dailyLimit int) error {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyChallengeLimit
	}
	if CompletedToday(userChallenges, now, location) >= dailyLimit {
		return ErrDailyLimitReached
	}
	return nil
}

// ValidateCompletion applies the completion preconditions in order: daily
// limit first, then response length.
func ValidateCompletion(challenge models.Challenge, response string, userChallenges []models.UserChallenge, now time.Time, location *time.Location, dailyLimit int) error {
	if err := CheckDailyLimit(userChallenges, now, location, dailyLimit); err != nil {
		return err
	}
	return ValidateResponse(challenge.Type, response)
}
