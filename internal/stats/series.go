package stats

import (
	"time"

	"github.com/google/uuid"

	"studyroom-backend/internal/models"
)

const dateLayout = "2006-01-02"

// DailySeries produces one point per day of [start, end) for a user:
// that day's seconds plus the user's rank on a leaderboard built from
// that day's totals alone. The whole series is recomputed per call;
// there is no stored rank history.
func DailySeries(sessions []models.Session, userID uuid.UUID, start, end, now time.Time, loc *time.Location) []models.DailyPoint {
	days, perUser := DailyBuckets(sessions, start, end, now, loc)

	// The user must be part of each day's universe even with no
	// presence, so their rank is defined on empty days.
	if perUser[userID] == nil {
		perUser[userID] = make([]int, len(days))
	}

	series := make([]models.DailyPoint, 0, len(days))
	for i, d := range days {
		dayTotals := make(map[uuid.UUID]int, len(perUser))
		for id, secs := range perUser {
			dayTotals[id] = secs[i]
		}
		series = append(series, models.DailyPoint{
			Date:       d.Format(dateLayout),
			Sec:        dayTotals[userID],
			Rank:       RankOf(dayTotals, userID),
			TotalUsers: len(dayTotals),
		})
	}
	return series
}

// Cumulative folds a daily series into a running total, for the
// dashboard's stacked trend chart.
func Cumulative(series []models.DailyPoint) []models.CumulativePoint {
	out := make([]models.CumulativePoint, 0, len(series))
	cum := 0
	for _, p := range series {
		cum += p.Sec
		out = append(out, models.CumulativePoint{Date: p.Date, CumSec: cum})
	}
	return out
}
