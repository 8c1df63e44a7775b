package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"studyroom-backend/internal/models"
)

func sealed(user uuid.UUID, checkin, checkout string) models.Session {
	ci, co := at(checkin), at(checkout)
	return models.Session{
		UserID:      user,
		CheckinAt:   ci,
		CheckoutAt:  &co,
		DurationSec: int(co.Sub(ci) / time.Second),
	}
}

func open(user uuid.UUID, checkin string) models.Session {
	return models.Session{UserID: user, CheckinAt: at(checkin)}
}

func TestTotalsByUser_ClampsToRange(t *testing.T) {
	// Session starts before the range and ends inside it; only the
	// inside portion counts.
	sessions := []models.Session{
		sealed(userA, "2024-01-01T22:00:00", "2024-01-02T01:00:00"),
	}
	start, end := at("2024-01-02T00:00:00"), at("2024-01-03T00:00:00")

	totals := TotalsByUser(sessions, start, end, at("2024-01-02T12:00:00"))

	if totals[userA] != 3600 {
		t.Errorf("Expected 3600s inside range, got %d", totals[userA])
	}
}

func TestTotalsByUser_IncludesLiveSession(t *testing.T) {
	now := at("2024-01-02T10:30:00")
	sessions := []models.Session{
		open(userA, "2024-01-02T10:00:00"),
	}
	start, end := at("2024-01-02T00:00:00"), at("2024-01-03T00:00:00")

	totals := TotalsByUser(sessions, start, end, now)

	if totals[userA] != 1800 {
		t.Errorf("Expected 1800s provisional, got %d", totals[userA])
	}
}

func TestTotalForUser_CoincidesWithSealedTotal(t *testing.T) {
	// Once the session closes, the recomputed total must equal the
	// provisional total at the same instant: no double counting.
	closeAt := "2024-01-02T10:30:00"
	now := at(closeAt)
	start, end := at("2024-01-02T00:00:00"), at("2024-01-03T00:00:00")

	live := TotalForUser([]models.Session{open(userA, "2024-01-02T10:00:00")}, userA, start, end, now)
	closed := TotalForUser([]models.Session{sealed(userA, "2024-01-02T10:00:00", closeAt)}, userA, start, end, now)

	if live != closed {
		t.Errorf("Live total %d != closed total %d", live, closed)
	}
}

func TestTotalForUser_AllTimeMonotonic(t *testing.T) {
	loc := tokyo
	start, end := RangeBounds(models.RangeAll, at("2024-06-01T12:00:00"), loc, time.Monday)

	sessions := []models.Session{}
	prev := 0
	closings := []struct{ ci, co string }{
		{"2024-01-01T10:00:00", "2024-01-01T11:00:00"},
		{"2024-02-01T10:00:00", "2024-02-01T10:00:30"},
		{"2024-03-01T23:00:00", "2024-03-02T03:00:00"},
	}
	for _, c := range closings {
		sessions = append(sessions, sealed(userA, c.ci, c.co))
		total := TotalForUser(sessions, userA, start, end, at("2024-06-01T12:00:00"))
		if total < prev {
			t.Fatalf("All-time total decreased: %d → %d", prev, total)
		}
		prev = total
	}
}

func TestDailyBuckets_MatchesSplit(t *testing.T) {
	sessions := []models.Session{
		sealed(userA, "2024-01-01T23:30:00", "2024-01-02T00:45:00"),
	}
	start, end := at("2024-01-01T00:00:00"), at("2024-01-04T00:00:00")

	days, perUser := DailyBuckets(sessions, start, end, at("2024-01-03T00:00:00"), tokyo)

	if len(days) != 3 {
		t.Fatalf("Expected 3 day bins, got %d", len(days))
	}
	secs := perUser[userA]
	if secs[0] != 1800 || secs[1] != 2700 || secs[2] != 0 {
		t.Errorf("Expected [1800 2700 0], got %v", secs)
	}
}

func TestPersonalBest(t *testing.T) {
	sessions := []models.Session{
		sealed(userA, "2024-01-01T10:00:00", "2024-01-01T11:00:00"), // 3600
		sealed(userA, "2024-01-02T10:00:00", "2024-01-02T14:00:00"), // 14400
		sealed(userB, "2024-01-02T10:00:00", "2024-01-02T20:00:00"), // other user
		open(userA, "2024-01-03T00:00:00"),                          // active, excluded
	}

	if got := PersonalBest(sessions, userA); got != 14400 {
		t.Errorf("Expected 14400, got %d", got)
	}
	if got := PersonalBest(sessions, userD); got != 0 {
		t.Errorf("Expected 0 for user with no sessions, got %d", got)
	}
}

func TestRangeBounds(t *testing.T) {
	// Wednesday 2024-01-10, Monday week start
	asOf := at("2024-01-10T15:00:00")

	tests := []struct {
		name       string
		rng        models.RangeName
		start, end string
	}{
		{"today", models.RangeToday, "2024-01-10T00:00:00", "2024-01-11T00:00:00"},
		{"week starts monday", models.RangeWeek, "2024-01-08T00:00:00", "2024-01-15T00:00:00"},
		{"month", models.RangeMonth, "2024-01-01T00:00:00", "2024-02-01T00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := RangeBounds(tc.rng, asOf, tokyo, time.Monday)
			if !start.Equal(at(tc.start)) {
				t.Errorf("start: expected %s, got %s", tc.start, start)
			}
			if !end.Equal(at(tc.end)) {
				t.Errorf("end: expected %s, got %s", tc.end, end)
			}
		})
	}
}

func TestRangeBounds_WeekOnWeekStartDay(t *testing.T) {
	// Monday itself opens the week.
	start, end := RangeBounds(models.RangeWeek, at("2024-01-08T09:00:00"), tokyo, time.Monday)
	if !start.Equal(at("2024-01-08T00:00:00")) || !end.Equal(at("2024-01-15T00:00:00")) {
		t.Errorf("Week bounds wrong: %s – %s", start, end)
	}
}

func TestRangeBounds_MonthAcrossYear(t *testing.T) {
	start, end := RangeBounds(models.RangeMonth, at("2024-12-15T09:00:00"), tokyo, time.Monday)
	if !start.Equal(at("2024-12-01T00:00:00")) || !end.Equal(at("2025-01-01T00:00:00")) {
		t.Errorf("December bounds wrong: %s – %s", start, end)
	}
}
