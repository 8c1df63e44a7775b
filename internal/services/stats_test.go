package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"studyroom-backend/internal/models"
)

type memStatsStore struct {
	sessions  []models.Session
	occupancy int
}

func (m *memStatsStore) ListOverlapping(_ context.Context, start, end time.Time) ([]models.Session, error) {
	var out []models.Session
	for _, s := range m.sessions {
		if s.CheckinAt.Before(end) && (s.CheckoutAt == nil || s.CheckoutAt.After(start)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStatsStore) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]models.Session, error) {
	var out []models.Session
	for i := len(m.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.sessions[i].UserID == userID {
			out = append(out, m.sessions[i])
		}
	}
	return out, nil
}

func (m *memStatsStore) ListSealedByUser(_ context.Context, userID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID && s.CheckoutAt != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStatsStore) Occupancy(_ context.Context) (int, error) {
	return m.occupancy, nil
}

type memUsers struct {
	nicknames map[uuid.UUID]string
}

func (m *memUsers) AllIDs(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(m.nicknames))
	for id := range m.nicknames {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memUsers) Nicknames(_ context.Context) (map[uuid.UUID]string, error) {
	return m.nicknames, nil
}

func statsFixture() (*memStatsStore, *memUsers, []uuid.UUID, time.Time) {
	now := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{
		uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		uuid.MustParse("00000000-0000-0000-0000-000000000003"),
	}
	sealedAt := func(id uuid.UUID, start time.Time, d time.Duration) models.Session {
		end := start.Add(d)
		return models.Session{
			ID: uuid.New(), UserID: id, CheckinAt: start,
			CheckoutAt: &end, DurationSec: int(d / time.Second),
		}
	}
	store := &memStatsStore{
		sessions: []models.Session{
			sealedAt(ids[0], now.Add(-5*time.Hour), time.Hour),   // today, 3600
			sealedAt(ids[1], now.Add(-5*time.Hour), time.Hour),   // today, 3600
			sealedAt(ids[2], now.Add(-4*time.Hour), 30*time.Minute), // today, 1800
			sealedAt(ids[0], now.AddDate(0, 0, -10), 2*time.Hour),   // outside today
		},
		occupancy: 0,
	}
	users := &memUsers{nicknames: map[uuid.UUID]string{
		ids[0]: "aki", ids[1]: "ben", ids[2]: "cho",
	}}
	return store, users, ids, now
}

func newTestStats(store *memStatsStore, users *memUsers, now time.Time) *StatsService {
	svc := NewStatsService(store, users, nil, time.UTC, time.Monday, 18)
	svc.now = func() time.Time { return now }
	return svc
}

func TestLeaderboardCompetitionRanks(t *testing.T) {
	store, users, _, now := statsFixture()
	svc := newTestStats(store, users, now)

	board, err := svc.Leaderboard(context.Background(), models.RangeToday, 10, false)
	if err != nil {
		t.Fatalf("leaderboard errored: %v", err)
	}
	if board.TotalUsers != 3 {
		t.Errorf("total_users = %d, want 3", board.TotalUsers)
	}
	if len(board.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(board.Items))
	}

	// Two tied at 3600 share rank 1, the next is rank 3.
	wantRanks := []int{1, 1, 3}
	wantSec := []int{3600, 3600, 1800}
	for i, item := range board.Items {
		if item.Rank != wantRanks[i] || item.TotalSec != wantSec[i] {
			t.Errorf("item %d: rank=%d sec=%d, want rank=%d sec=%d",
				i, item.Rank, item.TotalSec, wantRanks[i], wantSec[i])
		}
	}
}

func TestLeaderboardAnonymize(t *testing.T) {
	store, users, _, now := statsFixture()
	svc := newTestStats(store, users, now)

	board, err := svc.Leaderboard(context.Background(), models.RangeToday, 2, true)
	if err != nil {
		t.Fatalf("leaderboard errored: %v", err)
	}
	if len(board.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(board.Items))
	}
	for i, item := range board.Items {
		want := fmt.Sprintf("Member %d", i+1)
		if item.Nickname != want {
			t.Errorf("item %d nickname = %q, want %q", i, item.Nickname, want)
		}
	}
}

func TestLeaderboardValidation(t *testing.T) {
	store, users, _, now := statsFixture()
	svc := newTestStats(store, users, now)

	var vErr *ValidationError
	if _, err := svc.Leaderboard(context.Background(), "decade", 10, false); !errors.As(err, &vErr) {
		t.Errorf("bad range: got %v, want ValidationError", err)
	}
	if _, err := svc.Leaderboard(context.Background(), models.RangeWeek, 0, false); !errors.As(err, &vErr) {
		t.Errorf("zero top: got %v, want ValidationError", err)
	}

	// Oversized top is clamped, not rejected.
	board, err := svc.Leaderboard(context.Background(), models.RangeWeek, 10000, false)
	if err != nil {
		t.Fatalf("clamped top errored: %v", err)
	}
	if len(board.Items) > maxLeaderboardTop {
		t.Errorf("items = %d, exceeds cap %d", len(board.Items), maxLeaderboardTop)
	}
}

func TestRanksIncludeZeroUsers(t *testing.T) {
	store, users, _, now := statsFixture()
	// A fourth registered user with no sessions still occupies a slot.
	idle := uuid.MustParse("00000000-0000-0000-0000-000000000004")
	users.nicknames[idle] = "dan"
	svc := newTestStats(store, users, now)

	ranks, err := svc.Ranks(context.Background(), idle)
	if err != nil {
		t.Fatalf("ranks errored: %v", err)
	}
	if ranks.Today.TotalUsers != 4 {
		t.Errorf("total_users = %d, want 4", ranks.Today.TotalUsers)
	}
	if ranks.Today.Rank != 4 {
		t.Errorf("idle user rank = %d, want 4", ranks.Today.Rank)
	}
	if ranks.Today.TotalSec != 0 {
		t.Errorf("idle user total = %d, want 0", ranks.Today.TotalSec)
	}
}

func TestTotalsPerRange(t *testing.T) {
	store, users, ids, now := statsFixture()
	svc := newTestStats(store, users, now)

	totals, err := svc.Totals(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("totals errored: %v", err)
	}
	if totals.Today != 3600 {
		t.Errorf("today = %d, want 3600", totals.Today)
	}
	// The 10-day-old session lands outside today and this week but in
	// the all-time total.
	if totals.All != 3600+7200 {
		t.Errorf("all = %d, want %d", totals.All, 3600+7200)
	}
	if totals.All < totals.Month || totals.Month < totals.Week || totals.Week < totals.Today {
		t.Errorf("range totals not monotonic: %+v", totals)
	}
}

func TestDashboardZeroGoal(t *testing.T) {
	store, users, ids, now := statsFixture()
	svc := newTestStats(store, users, now)

	user := &models.User{ID: ids[0], WeeklyGoalMin: 0}
	dash, err := svc.Dashboard(context.Background(), user)
	if err != nil {
		t.Fatalf("dashboard errored: %v", err)
	}
	if dash.WeeklyGoal.GoalSet {
		t.Error("goal_set = true with zero goal")
	}
	if dash.WeeklyGoal.ProgressPercent != 0 {
		t.Errorf("progress = %d with zero goal, want 0", dash.WeeklyGoal.ProgressPercent)
	}
}

func TestDashboardGoalProgress(t *testing.T) {
	store, users, ids, now := statsFixture()
	svc := newTestStats(store, users, now)

	// 60 minutes this week against a 120 minute goal.
	user := &models.User{ID: ids[0], WeeklyGoalMin: 120}
	dash, err := svc.Dashboard(context.Background(), user)
	if err != nil {
		t.Fatalf("dashboard errored: %v", err)
	}
	if !dash.WeeklyGoal.GoalSet {
		t.Error("goal_set = false with a goal configured")
	}
	if dash.WeeklyGoal.ProgressPercent != 50 {
		t.Errorf("progress = %d, want 50", dash.WeeklyGoal.ProgressPercent)
	}
	if dash.PersonalBestSec != 7200 {
		t.Errorf("personal best = %d, want 7200", dash.PersonalBestSec)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store, users, ids, now := statsFixture()
	svc := newTestStats(store, users, now)

	items, err := svc.History(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("history errored: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].CheckinAt.Before(items[1].CheckinAt) {
		t.Error("history not newest first")
	}
}

func TestDailySeriesWindow(t *testing.T) {
	store, users, ids, now := statsFixture()
	svc := newTestStats(store, users, now)

	series, cumulative, err := svc.Daily(context.Background(), ids[0], 21)
	if err != nil {
		t.Fatalf("daily errored: %v", err)
	}
	if len(series) != 21 {
		t.Fatalf("series length = %d, want 21", len(series))
	}
	if len(cumulative) != 21 {
		t.Fatalf("cumulative length = %d, want 21", len(cumulative))
	}

	last := series[len(series)-1]
	if last.Sec != 3600 {
		t.Errorf("today's point = %d sec, want 3600", last.Sec)
	}
	if cumulative[len(cumulative)-1].CumSec != 3600+7200 {
		t.Errorf("cumulative end = %d, want %d", cumulative[len(cumulative)-1].CumSec, 3600+7200)
	}
}
