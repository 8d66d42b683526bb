package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/dailyglow/internal/models"
)

const (
	morningStartHour   = 5
	afternoonStartHour = 12
	eveningStartHour   = 17
)

func resolveLocation(location *time.Location) *time.Location {
	if location == nil {
		return time.UTC
	}
	return location
}

// LoadLocation resolves an IANA zone name, returning fallback when the name is
// empty or unknown.
func LoadLocation(name string, fallback *time.Location) *time.Location {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return resolveLocation(fallback)
	}
	location, err := time.LoadLocation(trimmed)
	if err != nil {
		return resolveLocation(fallback)
	}
	return location
}

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	location = resolveLocation(location)
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// NextLocalMidnight returns the first instant of the next local calendar day.
// Calendar arithmetic keeps the result on midnight across DST changes.
func NextLocalMidnight(now time.Time, location *time.Location) time.Time {
	_, end := DayRange(now, location)
	return end
}

func LocalDayKey(value time.Time, location *time.Location) string {
	return value.In(resolveLocation(location)).Format("2006-01-02")
}

func CurrentPeriod(now time.Time, location *time.Location) models.Period {
	hour := now.In(resolveLocation(location)).Hour()
	switch {
	case hour >= morningStartHour && hour < afternoonStartHour:
		return models.PeriodMorning
	case hour >= afternoonStartHour && hour < eveningStartHour:
		return models.PeriodAfternoon
	default:
		return models.PeriodEvening
	}
}

func IsSameLocalDay(a time.Time, b time.Time, location *time.Location) bool {
	location = resolveLocation(location)
	ay, am, ad := a.In(location).Date()
	by, bm, bd := b.In(location).Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetweenLocal counts calendar days from from to to in location. The
// result is negative when to falls on an earlier local day.
func DaysBetweenLocal(from time.Time, to time.Time, location *time.Location) int {
	location = resolveLocation(location)
	fy, fm, fd := from.In(location).Date()
	ty, tm, td := to.In(location).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func ParsePeriod(raw string) (models.Period, error) {
	normalized := models.Period(strings.ToLower(strings.TrimSpace(raw)))
	for _, period := range models.Periods {
		if period == normalized {
			return period, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
}
