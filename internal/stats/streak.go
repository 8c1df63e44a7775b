package stats

import (
	"time"

	"github.com/google/uuid"

	"studyroom-backend/internal/models"
)

// Streak counts consecutive days with presence, walking backwards from
// today. A zero today does not break the streak before cutoffHour local
// time (the user may simply not have arrived yet); after the cutoff, or
// whenever yesterday is also empty, the streak is over.
func Streak(sessions []models.Session, userID uuid.UUID, now time.Time, loc *time.Location, cutoffHour int) int {
	daySec := make(map[time.Time]int)
	for _, s := range sessions {
		if s.UserID != userID {
			continue
		}
		for _, c := range SplitByDay(s.CheckinAt, sessionEnd(s, now), loc) {
			daySec[c.Day] += c.Sec
		}
	}

	day := DayStart(now, loc)
	if daySec[day] == 0 {
		if now.In(loc).Hour() >= cutoffHour {
			return 0
		}
		// grace: start counting from yesterday
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for daySec[day] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// GoalProgress computes weekly goal completion. A goal of zero or less
// reports zero progress with GoalSet false; there is no division in
// that path.
func GoalProgress(weekSec, goalMin int) models.GoalProgress {
	p := models.GoalProgress{
		GoalMinutes: goalMin,
		WeekMinutes: weekSec / 60,
	}
	if goalMin <= 0 {
		return p
	}
	p.GoalSet = true
	pct := (100*p.WeekMinutes + goalMin/2) / goalMin
	if pct > 100 {
		pct = 100
	}
	p.ProgressPercent = pct
	return p
}
