package stats

import (
	"time"
)

// DailyContribution is the portion of a session attributed to one local
// calendar day. Day is midnight in the configured zone.
type DailyContribution struct {
	Day time.Time
	Sec int
}

// SplitByDay decomposes [checkin, checkout) into per-day contributions.
// The contributions' seconds always sum to checkout-checkin exactly; a
// session that never crosses midnight yields a single entry.
func SplitByDay(checkin, checkout time.Time, loc *time.Location) []DailyContribution {
	if !checkout.After(checkin) {
		return nil
	}

	var out []DailyContribution
	cursor := checkin.In(loc)
	end := checkout.In(loc)

	for cursor.Before(end) {
		day := DayStart(cursor, loc)
		dayEnd := NextDay(day)
		segEnd := dayEnd
		if end.Before(segEnd) {
			segEnd = end
		}
		out = append(out, DailyContribution{
			Day: day,
			Sec: int(segEnd.Sub(cursor) / time.Second),
		})
		cursor = segEnd
	}

	return out
}

// OverlapSec returns the overlap in seconds between [a0,a1) and [b0,b1).
func OverlapSec(a0, a1, b0, b1 time.Time) int {
	start := a0
	if b0.After(start) {
		start = b0
	}
	end := a1
	if b1.Before(end) {
		end = b1
	}
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Second)
}
