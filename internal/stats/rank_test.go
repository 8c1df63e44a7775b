package stats

import (
	"testing"

	"github.com/google/uuid"
)

// Fixed ids so tie display order is deterministic in assertions.
var (
	userA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	userB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	userC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	userD = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func TestRank_CompetitionTies(t *testing.T) {
	// 3600, 3600, 1800 → ranks 1, 1, 3 (not 1, 1, 2)
	totals := map[uuid.UUID]int{
		userA: 3600,
		userB: 3600,
		userC: 1800,
	}

	entries := Rank(totals)

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Rank != 1 || entries[1].Rank != 1 {
		t.Errorf("Expected tied rank 1, got %d and %d", entries[0].Rank, entries[1].Rank)
	}
	if entries[2].Rank != 3 {
		t.Errorf("Expected rank 3 after tie, got %d", entries[2].Rank)
	}
	// tie order by ascending user id
	if entries[0].UserID != userA || entries[1].UserID != userB {
		t.Errorf("Tie display order not by user id: %v, %v", entries[0].UserID, entries[1].UserID)
	}
}

func TestRank_PermutationLaw(t *testing.T) {
	totals := map[uuid.UUID]int{
		userA: 100,
		userB: 200,
		userC: 200,
		userD: 0,
	}

	entries := Rank(totals)

	// Descending totals, ranks start at 1, and every rank equals
	// 1 + number of strictly greater totals.
	for i, e := range entries {
		if i > 0 && e.TotalSec > entries[i-1].TotalSec {
			t.Errorf("Entries not sorted descending at %d", i)
		}
		greater := 0
		for _, other := range entries {
			if other.TotalSec > e.TotalSec {
				greater++
			}
		}
		if e.Rank != greater+1 {
			t.Errorf("Entry %v: rank %d, want %d", e.UserID, e.Rank, greater+1)
		}
	}
}

func TestRankOf(t *testing.T) {
	totals := map[uuid.UUID]int{
		userA: 500,
		userB: 900,
		userC: 500,
	}

	tests := []struct {
		name     string
		user     uuid.UUID
		expected int
	}{
		{"top", userB, 1},
		{"tied second", userA, 2},
		{"tied second other", userC, 2},
		{"absent user ranks below everyone", userD, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RankOf(totals, tc.user); got != tc.expected {
				t.Errorf("Expected rank %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestTopN(t *testing.T) {
	totals := map[uuid.UUID]int{userA: 3, userB: 2, userC: 1}
	entries := Rank(totals)

	if got := TopN(entries, 2); len(got) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(got))
	}
	// asking beyond the board returns everything, never an error
	if got := TopN(entries, 10); len(got) != 3 {
		t.Errorf("Expected all 3 entries, got %d", len(got))
	}
	if got := TopN(entries, 0); len(got) != 0 {
		t.Errorf("Expected empty slice, got %d entries", len(got))
	}
}
