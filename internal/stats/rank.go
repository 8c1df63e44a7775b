package stats

import (
	"sort"

	"github.com/google/uuid"
)

type RankedEntry struct {
	UserID   uuid.UUID
	TotalSec int
	Rank     int
}

// Rank orders totals descending and assigns competition ranks: equal
// totals share a rank number and the next distinct total skips past the
// tie (1,1,3). Within a tie, display order is ascending user id so the
// output never depends on map iteration order. The totals map defines
// the ranking universe; callers seed it with every registered user
// (zero included) so new users rank last rather than "unranked".
func Rank(totals map[uuid.UUID]int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(totals))
	for id, sec := range totals {
		entries = append(entries, RankedEntry{UserID: id, TotalSec: sec})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalSec != entries[j].TotalSec {
			return entries[i].TotalSec > entries[j].TotalSec
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})

	for i := range entries {
		if i > 0 && entries[i].TotalSec == entries[i-1].TotalSec {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}

	return entries
}

// RankOf computes one user's competition rank without sorting:
// 1 + count of users with a strictly greater total. A user missing from
// the map ranks as zero presence.
func RankOf(totals map[uuid.UUID]int, userID uuid.UUID) int {
	mySec := totals[userID]
	greater := 0
	for _, sec := range totals {
		if sec > mySec {
			greater++
		}
	}
	return greater + 1
}

// TopN returns the first n ranked entries; short boards are returned
// whole, never an error.
func TopN(entries []RankedEntry, n int) []RankedEntry {
	if n >= len(entries) {
		return entries
	}
	return entries[:n]
}
