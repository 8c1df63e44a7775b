// Package stats is the aggregation core: day splitting, range totals,
// competition ranking, streaks and goal progress. Everything here is a
// pure function of session data plus an injected "now", so the session
// invariants can be tested without a database.
package stats

import (
	"time"

	"studyroom-backend/internal/models"
)

// Bounds for the "all" range. Practically infinite, same convention as
// the range the leaderboard has always used.
var (
	allTimeStartYear = 2000
	allTimeEndYear   = 2100
)

// DayStart truncates t to local midnight in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NextDay returns the following local midnight. AddDate is DST-safe
// where adding 24h is not.
func NextDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1)
}

// RangeBounds resolves a named range to the half-open interval
// [start, end) relative to asOf, in loc. weekStart selects which
// weekday opens the "week" range.
func RangeBounds(name models.RangeName, asOf time.Time, loc *time.Location, weekStart time.Weekday) (time.Time, time.Time) {
	today := DayStart(asOf, loc)

	switch name {
	case models.RangeToday:
		return today, NextDay(today)
	case models.RangeWeek:
		offset := (int(asOf.In(loc).Weekday()) - int(weekStart) + 7) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case models.RangeMonth:
		t := asOf.In(loc)
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	case models.RangeAll:
		return time.Date(allTimeStartYear, 1, 1, 0, 0, 0, 0, loc),
			time.Date(allTimeEndYear, 1, 1, 0, 0, 0, 0, loc)
	}

	// Callers validate the name first; an unknown range yields an
	// empty interval rather than a panic.
	return today, today
}
