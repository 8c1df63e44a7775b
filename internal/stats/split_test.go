package stats

import (
	"testing"
	"time"
)

var tokyo, _ = time.LoadLocation("Asia/Tokyo")

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, tokyo)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSplitByDay_SingleDay(t *testing.T) {
	contribs := SplitByDay(at("2024-01-01T10:00:00"), at("2024-01-01T12:30:00"), tokyo)

	if len(contribs) != 1 {
		t.Fatalf("Expected 1 contribution, got %d", len(contribs))
	}
	if contribs[0].Sec != 9000 {
		t.Errorf("Expected 9000s, got %d", contribs[0].Sec)
	}
	if contribs[0].Day.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("Expected day 2024-01-01, got %s", contribs[0].Day.Format("2006-01-02"))
	}
}

func TestSplitByDay_MidnightCrossing(t *testing.T) {
	// 23:30 → 00:45 next day: 1800s + 2700s = 4500s
	contribs := SplitByDay(at("2024-01-01T23:30:00"), at("2024-01-02T00:45:00"), tokyo)

	if len(contribs) != 2 {
		t.Fatalf("Expected 2 contributions, got %d", len(contribs))
	}
	if contribs[0].Day.Format("2006-01-02") != "2024-01-01" || contribs[0].Sec != 1800 {
		t.Errorf("First contribution wrong: %s %d", contribs[0].Day.Format("2006-01-02"), contribs[0].Sec)
	}
	if contribs[1].Day.Format("2006-01-02") != "2024-01-02" || contribs[1].Sec != 2700 {
		t.Errorf("Second contribution wrong: %s %d", contribs[1].Day.Format("2006-01-02"), contribs[1].Sec)
	}
}

func TestSplitByDay_Lossless(t *testing.T) {
	tests := []struct {
		name     string
		checkin  string
		checkout string
		days     int
	}{
		{"no crossing", "2024-03-01T09:15:00", "2024-03-01T17:45:30", 1},
		{"one crossing", "2024-03-01T22:00:00", "2024-03-02T02:00:00", 2},
		{"two crossings", "2024-03-01T23:59:00", "2024-03-03T00:01:00", 3},
		{"three crossings", "2024-03-01T12:00:00", "2024-03-04T12:00:00", 4},
		{"exactly at midnight", "2024-03-01T00:00:00", "2024-03-02T00:00:00", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ci, co := at(tc.checkin), at(tc.checkout)
			contribs := SplitByDay(ci, co, tokyo)

			if len(contribs) != tc.days {
				t.Fatalf("Expected %d contributions, got %d", tc.days, len(contribs))
			}

			sum := 0
			for _, c := range contribs {
				if c.Sec <= 0 {
					t.Errorf("Contribution for %s is %d, want > 0", c.Day.Format("2006-01-02"), c.Sec)
				}
				sum += c.Sec
			}
			want := int(co.Sub(ci) / time.Second)
			if sum != want {
				t.Errorf("Contributions sum to %d, session duration is %d", sum, want)
			}
		})
	}
}

func TestSplitByDay_EmptyInterval(t *testing.T) {
	if got := SplitByDay(at("2024-01-01T10:00:00"), at("2024-01-01T10:00:00"), tokyo); got != nil {
		t.Errorf("Expected nil for zero-length interval, got %v", got)
	}
	if got := SplitByDay(at("2024-01-01T10:00:00"), at("2024-01-01T09:00:00"), tokyo); got != nil {
		t.Errorf("Expected nil for inverted interval, got %v", got)
	}
}

func TestOverlapSec(t *testing.T) {
	tests := []struct {
		name                   string
		a0, a1, b0, b1         string
		expected               int
	}{
		{"full containment", "2024-01-01T10:00:00", "2024-01-01T11:00:00", "2024-01-01T00:00:00", "2024-01-02T00:00:00", 3600},
		{"partial left", "2024-01-01T23:00:00", "2024-01-02T01:00:00", "2024-01-02T00:00:00", "2024-01-03T00:00:00", 3600},
		{"disjoint", "2024-01-01T10:00:00", "2024-01-01T11:00:00", "2024-01-02T00:00:00", "2024-01-03T00:00:00", 0},
		{"touching ends", "2024-01-01T23:00:00", "2024-01-02T00:00:00", "2024-01-02T00:00:00", "2024-01-03T00:00:00", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := OverlapSec(at(tc.a0), at(tc.a1), at(tc.b0), at(tc.b1))
			if got != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, got)
			}
		})
	}
}
