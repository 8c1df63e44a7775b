package stats

import (
	"time"

	"github.com/google/uuid"

	"studyroom-backend/internal/models"
)

// sessionEnd resolves the effective end of a session: checkout if
// sealed, otherwise "now" (the live, provisional portion). Recomputing
// against now on every call is what keeps live and closed totals from
// drifting apart.
func sessionEnd(s models.Session, now time.Time) time.Time {
	if s.CheckoutAt != nil {
		return *s.CheckoutAt
	}
	return now
}

// TotalsByUser sums each user's presence seconds overlapping
// [start, end). Sessions entirely outside the range contribute zero.
func TotalsByUser(sessions []models.Session, start, end, now time.Time) map[uuid.UUID]int {
	totals := make(map[uuid.UUID]int)
	for _, s := range sessions {
		sec := OverlapSec(s.CheckinAt, sessionEnd(s, now), start, end)
		if sec > 0 {
			totals[s.UserID] += sec
		}
	}
	return totals
}

// TotalForUser is TotalsByUser restricted to one user.
func TotalForUser(sessions []models.Session, userID uuid.UUID, start, end, now time.Time) int {
	total := 0
	for _, s := range sessions {
		if s.UserID != userID {
			continue
		}
		total += OverlapSec(s.CheckinAt, sessionEnd(s, now), start, end)
	}
	return total
}

// DailyBuckets distributes each user's presence into one bucket per day
// of [start, end). Index i corresponds to start + i days. The per-day
// split uses the same interval arithmetic as SplitByDay, so a sealed
// session's buckets sum to its duration.
func DailyBuckets(sessions []models.Session, start, end, now time.Time, loc *time.Location) (days []time.Time, perUser map[uuid.UUID][]int) {
	for d := DayStart(start, loc); d.Before(end); d = NextDay(d) {
		days = append(days, d)
	}

	perUser = make(map[uuid.UUID][]int)
	for _, s := range sessions {
		segStart := s.CheckinAt
		segEnd := sessionEnd(s, now)

		for i, d := range days {
			sec := OverlapSec(segStart, segEnd, d, NextDay(d))
			if sec == 0 {
				continue
			}
			if perUser[s.UserID] == nil {
				perUser[s.UserID] = make([]int, len(days))
			}
			perUser[s.UserID][i] += sec
		}
	}

	return days, perUser
}

// PersonalBest returns the longest single sealed session in seconds.
// Active sessions are excluded until they close.
func PersonalBest(sessions []models.Session, userID uuid.UUID) int {
	best := 0
	for _, s := range sessions {
		if s.UserID != userID || s.CheckoutAt == nil {
			continue
		}
		if s.DurationSec > best {
			best = s.DurationSec
		}
	}
	return best
}
