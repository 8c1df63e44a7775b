package models

import (
	"time"

	"github.com/google/uuid"
)

// RangeName selects the aggregation window for totals and rankings.
type RangeName string

const (
	RangeToday RangeName = "today"
	RangeWeek  RangeName = "week"
	RangeMonth RangeName = "month"
	RangeAll   RangeName = "all"
)

func (r RangeName) Valid() bool {
	switch r {
	case RangeToday, RangeWeek, RangeMonth, RangeAll:
		return true
	}
	return false
}

type RangeTotals struct {
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
	All   int `json:"all"`
}

type RankInfo struct {
	Rank       int `json:"rank"`
	TotalUsers int `json:"total_users"`
	TotalSec   int `json:"total_sec"`
}

type RangeRanks struct {
	Today RankInfo `json:"today"`
	Week  RankInfo `json:"week"`
	Month RankInfo `json:"month"`
	All   RankInfo `json:"all"`
}

type DailyPoint struct {
	Date       string `json:"date"`
	Sec        int    `json:"sec"`
	Rank       int    `json:"rank"`
	TotalUsers int    `json:"total_users"`
}

type CumulativePoint struct {
	Date   string `json:"date"`
	CumSec int    `json:"cum_sec"`
}

type LeaderboardItem struct {
	UserID   uuid.UUID `json:"user_id"`
	Nickname string    `json:"nickname"`
	TotalSec int       `json:"total_sec"`
	Rank     int       `json:"rank"`
}

type Leaderboard struct {
	Range      RangeName         `json:"range"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	Occupancy  int               `json:"occupancy"`
	TotalUsers int               `json:"total_users"`
	Items      []LeaderboardItem `json:"items"`
}

type GoalProgress struct {
	GoalSet         bool `json:"goal_set"`
	GoalMinutes     int  `json:"goal_minutes"`
	WeekMinutes     int  `json:"week_minutes"`
	ProgressPercent int  `json:"progress_percent"`
}

type DashboardStats struct {
	StreakDays      int          `json:"streak_days"`
	PersonalBestSec int          `json:"personal_best_sec"`
	WeeklyGoal      GoalProgress `json:"weekly_goal"`
}

type PresenceStatus struct {
	State      string     `json:"state"` // "IN" or "OUT"
	CheckinAt  *time.Time `json:"checkin_at,omitempty"`
	ElapsedSec int        `json:"elapsed_sec"`
}
