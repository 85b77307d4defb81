package domain

import (
	"testing"
	"time"
)

func TestPoints(t *testing.T) {
	t.Parallel()
	tests := []struct {
		seconds, want int
	}{
		{seconds: 0, want: 0},
		{seconds: 19, want: 0},
		{seconds: 20, want: 1},
		{seconds: 25, want: 1},
		{seconds: 45, want: 2},
		{seconds: 100, want: 5},
		{seconds: 130, want: 5},
		{seconds: -4, want: 0},
	}
	for _, tt := range tests {
		if got := Points(tt.seconds); got != tt.want {
			t.Fatalf("Points(%d) = %d, want %d", tt.seconds, got, tt.want)
		}
	}
}

func TestNewEngagementRecordSkipsShortIntervals(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 23, 59, 59, 0, time.FixedZone("IST", 5*3600+1800))
	if _, ok := NewEngagementRecord("u", "gita", 3, 0, at); ok {
		t.Fatalf("zero seconds must not be recorded")
	}
	rec, ok := NewEngagementRecord("u", "gita", 3, 45, at)
	if !ok {
		t.Fatalf("expected record")
	}
	if rec.PointsEarned != 2 || rec.PageNumber != 3 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Date != "2026-03-01" {
		t.Fatalf("expected UTC day, got %s", rec.Date)
	}
}

func TestMergeCapsPointsPerPageAndDay(t *testing.T) {
	t.Parallel()
	stored := EngagementRecord{SecondsSpent: 80, PointsEarned: 4}
	merged, delta := Merge(stored, EngagementRecord{SecondsSpent: 60, PointsEarned: 3})
	if merged.SecondsSpent != 140 || merged.PointsEarned != 5 || delta != 1 {
		t.Fatalf("unexpected merge %+v delta=%d", merged, delta)
	}
	merged, delta = Merge(merged, EngagementRecord{SecondsSpent: 100, PointsEarned: 5})
	if merged.PointsEarned != 5 || delta != 0 {
		t.Fatalf("cap exceeded: %+v delta=%d", merged, delta)
	}
}

func TestProgressCompletion(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		current, total int
		pct            float64
		done           bool
	}{
		{current: 95, total: 100, pct: 95, done: true},
		{current: 94, total: 100, pct: 94, done: false},
		{current: 120, total: 100, pct: 100, done: true},
		{current: 1, total: 4, pct: 25, done: false},
		{current: 3, total: 0, pct: 0, done: false},
	}
	for _, tt := range tests {
		rec := NewProgressRecord("u", "gita", tt.current, tt.total, at)
		if rec.CompletionPercentage != tt.pct || rec.IsCompleted != tt.done {
			t.Fatalf("%d/%d: got %.2f completed=%v", tt.current, tt.total, rec.CompletionPercentage, rec.IsCompleted)
		}
	}
}
