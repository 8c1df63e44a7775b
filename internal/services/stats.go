package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studyroom-backend/internal/models"
	"studyroom-backend/internal/stats"
)

const (
	historyLimit        = 30
	dailyWindowDays     = 21
	maxLeaderboardTop   = 100
	leaderboardCacheTTL = 5 * time.Second
)

// sessionReader is the read side of the session store the aggregation
// engine pulls from; everything is recomputed per query.
type sessionReader interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Session, error)
	ListSealedByUser(ctx context.Context, userID uuid.UUID) ([]models.Session, error)
	Occupancy(ctx context.Context) (int, error)
}

type userReader interface {
	AllIDs(ctx context.Context) ([]uuid.UUID, error)
	Nicknames(ctx context.Context) (map[uuid.UUID]string, error)
}

type StatsService struct {
	sessions  sessionReader
	users     userReader
	redis     *redis.Client
	loc       *time.Location
	weekStart time.Weekday
	cutoff    int
	now       func() time.Time
}

func NewStatsService(sessions sessionReader, users userReader, redisClient *redis.Client, loc *time.Location, weekStart time.Weekday, streakCutoffHour int) *StatsService {
	return &StatsService{
		sessions:  sessions,
		users:     users,
		redis:     redisClient,
		loc:       loc,
		weekStart: weekStart,
		cutoff:    streakCutoffHour,
		now:       time.Now,
	}
}

// loadAll fetches every session that can contribute to any range; the
// per-range arithmetic then happens in memory over one consistent read.
func (s *StatsService) loadAll(ctx context.Context) ([]models.Session, error) {
	start, end := stats.RangeBounds(models.RangeAll, s.now(), s.loc, s.weekStart)
	return s.sessions.ListOverlapping(ctx, start, end)
}

// Totals computes the per-range presence seconds for one user,
// including the provisional portion of an active session.
func (s *StatsService) Totals(ctx context.Context, userID uuid.UUID) (models.RangeTotals, error) {
	sessions, err := s.loadAll(ctx)
	if err != nil {
		return models.RangeTotals{}, fmt.Errorf("failed to load sessions: %w", err)
	}

	now := s.now()
	total := func(rng models.RangeName) int {
		start, end := stats.RangeBounds(rng, now, s.loc, s.weekStart)
		return stats.TotalForUser(sessions, userID, start, end, now)
	}

	return models.RangeTotals{
		Today: total(models.RangeToday),
		Week:  total(models.RangeWeek),
		Month: total(models.RangeMonth),
		All:   total(models.RangeAll),
	}, nil
}

// Ranks computes the user's competition rank per range over the full
// universe of registered users, zero totals included.
func (s *StatsService) Ranks(ctx context.Context, userID uuid.UUID) (models.RangeRanks, error) {
	sessions, err := s.loadAll(ctx)
	if err != nil {
		return models.RangeRanks{}, fmt.Errorf("failed to load sessions: %w", err)
	}
	ids, err := s.users.AllIDs(ctx)
	if err != nil {
		return models.RangeRanks{}, fmt.Errorf("failed to load users: %w", err)
	}

	now := s.now()
	rankFor := func(rng models.RangeName) models.RankInfo {
		start, end := stats.RangeBounds(rng, now, s.loc, s.weekStart)
		totals := stats.TotalsByUser(sessions, start, end, now)
		for _, id := range ids {
			if _, ok := totals[id]; !ok {
				totals[id] = 0
			}
		}
		return models.RankInfo{
			Rank:       stats.RankOf(totals, userID),
			TotalUsers: len(totals),
			TotalSec:   totals[userID],
		}
	}

	return models.RangeRanks{
		Today: rankFor(models.RangeToday),
		Week:  rankFor(models.RangeWeek),
		Month: rankFor(models.RangeMonth),
		All:   rankFor(models.RangeAll),
	}, nil
}

// Daily builds the dashboard trend: windowDays points ending today,
// each with that day's seconds and rank, plus the cumulative series.
func (s *StatsService) Daily(ctx context.Context, userID uuid.UUID, windowDays int) ([]models.DailyPoint, []models.CumulativePoint, error) {
	if windowDays <= 0 {
		windowDays = dailyWindowDays
	}

	now := s.now()
	end := stats.NextDay(stats.DayStart(now, s.loc))
	start := end.AddDate(0, 0, -windowDays)

	sessions, err := s.sessions.ListOverlapping(ctx, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	series := stats.DailySeries(sessions, userID, start, end, now, s.loc)
	return series, stats.Cumulative(series), nil
}

// Dashboard derives streak, personal best and weekly-goal progress.
func (s *StatsService) Dashboard(ctx context.Context, user *models.User) (models.DashboardStats, error) {
	now := s.now()

	// A year of history bounds the streak scan.
	streakStart := stats.DayStart(now, s.loc).AddDate(-1, 0, 0)
	recent, err := s.sessions.ListOverlapping(ctx, streakStart, stats.NextDay(stats.DayStart(now, s.loc)))
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to load sessions: %w", err)
	}

	sealed, err := s.sessions.ListSealedByUser(ctx, user.ID)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to load sessions: %w", err)
	}

	weekStart, weekEnd := stats.RangeBounds(models.RangeWeek, now, s.loc, s.weekStart)
	all, err := s.loadAll(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to load sessions: %w", err)
	}
	weekSec := stats.TotalForUser(all, user.ID, weekStart, weekEnd, now)

	return models.DashboardStats{
		StreakDays:      stats.Streak(recent, user.ID, now, s.loc, s.cutoff),
		PersonalBestSec: stats.PersonalBest(sealed, user.ID),
		WeeklyGoal:      stats.GoalProgress(weekSec, user.WeeklyGoalMin),
	}, nil
}

// History returns the user's most recent sessions, newest first.
func (s *StatsService) History(ctx context.Context, userID uuid.UUID) ([]models.SessionHistoryItem, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	items := make([]models.SessionHistoryItem, 0, len(sessions))
	for _, sess := range sessions {
		items = append(items, models.SessionHistoryItem{
			ID:          sess.ID,
			CheckinAt:   sess.CheckinAt,
			CheckoutAt:  sess.CheckoutAt,
			DurationSec: sess.DurationSec,
			IsActive:    sess.IsActive(),
		})
	}
	return items, nil
}

// Leaderboard ranks all users over the range and applies the display
// policy: top-N cut and optional anonymization. Range and topN are
// validated before the store is touched.
func (s *StatsService) Leaderboard(ctx context.Context, rng models.RangeName, topN int, anonymize bool) (*models.Leaderboard, error) {
	if !rng.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"range": "must be today, week, month, or all"}}
	}
	if topN < 1 {
		return nil, &ValidationError{Fields: map[string]string{"top": "must be positive"}}
	}
	if topN > maxLeaderboardTop {
		topN = maxLeaderboardTop
	}

	board, err := s.cachedBoard(ctx, rng)
	if err != nil {
		return nil, err
	}

	view := *board
	view.Items = make([]models.LeaderboardItem, 0, topN)
	for i, item := range board.Items {
		if i >= topN {
			break
		}
		if anonymize {
			item.Nickname = fmt.Sprintf("Member %d", i+1)
		}
		view.Items = append(view.Items, item)
	}
	return &view, nil
}

// cachedBoard serves the full ranked board from the short-lived redis
// cache when possible; any cache trouble falls back to recompute.
func (s *StatsService) cachedBoard(ctx context.Context, rng models.RangeName) (*models.Leaderboard, error) {
	var key string
	if s.redis != nil {
		day := stats.DayStart(s.now(), s.loc).Format("2006-01-02")
		key = leaderboardCacheKey(rng, day)
		if raw, err := s.redis.Get(ctx, key).Result(); err == nil {
			var cached models.Leaderboard
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	board, err := s.computeBoard(ctx, rng)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(board); err == nil {
			s.redis.Set(ctx, key, raw, leaderboardCacheTTL)
		}
	}
	return board, nil
}

func (s *StatsService) computeBoard(ctx context.Context, rng models.RangeName) (*models.Leaderboard, error) {
	now := s.now()
	start, end := stats.RangeBounds(rng, now, s.loc, s.weekStart)

	sessions, err := s.sessions.ListOverlapping(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	ids, err := s.users.AllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	nicks, err := s.users.Nicknames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	occupancy, err := s.sessions.Occupancy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy: %w", err)
	}

	totals := stats.TotalsByUser(sessions, start, end, now)
	for _, id := range ids {
		if _, ok := totals[id]; !ok {
			totals[id] = 0
		}
	}

	entries := stats.Rank(totals)
	items := make([]models.LeaderboardItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.LeaderboardItem{
			UserID:   e.UserID,
			Nickname: nicks[e.UserID],
			TotalSec: e.TotalSec,
			Rank:     e.Rank,
		})
	}

	return &models.Leaderboard{
		Range:      rng,
		Start:      start,
		End:        end,
		Occupancy:  occupancy,
		TotalUsers: len(totals),
		Items:      items,
	}, nil
}

func leaderboardCacheKey(rng models.RangeName, day string) string {
	return fmt.Sprintf("lb:%s:%s", rng, day)
}
