package domain

import (
	"math"
	"time"

	"granth/internal/platform/clock"
)

const (
	SchemaVersion = 1

	// MaxPointsPerPage caps the points one page can earn per user per day.
	MaxPointsPerPage = 5
	SecondsPerPoint  = 20
	// MinTrackedSeconds drops accidental page flips.
	MinTrackedSeconds   = 1
	CompletionThreshold = 95.0
	RecentWindow        = 30 * 24 * time.Hour
)

// ReadingSession is the tracker's view of one open book.
type ReadingSession struct {
	ID                 string
	UserID             string
	BookID             string
	OpenedAt           time.Time
	StartedAt          time.Time
	LastPageRead       int
	AccumulatedSeconds int
	PointsEarned       int
	PagesVisited       []int
}

// EngagementRecord is the time spent on one page. Date is the UTC calendar
// day the interval ended on.
type EngagementRecord struct {
	UserID       string
	BookID       string
	PageNumber   int
	SecondsSpent int
	PointsEarned int
	Date         string
	RecordedAt   time.Time
}

// Points converts dwell seconds on a page into points.
func Points(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return min(MaxPointsPerPage, seconds/SecondsPerPoint)
}

// NewEngagementRecord returns false when the interval is too short to record.
func NewEngagementRecord(userID, bookID string, page, seconds int, at time.Time) (EngagementRecord, bool) {
	if seconds < MinTrackedSeconds || page < 1 {
		return EngagementRecord{}, false
	}
	return EngagementRecord{
		UserID:       userID,
		BookID:       bookID,
		PageNumber:   page,
		SecondsSpent: seconds,
		PointsEarned: Points(seconds),
		Date:         clock.Day(at),
		RecordedAt:   at.UTC(),
	}, true
}

// Merge folds incoming into the stored record for the same page and day.
// It returns the merged record and how much the user's running total grows.
func Merge(existing, incoming EngagementRecord) (EngagementRecord, int) {
	merged := existing
	merged.SecondsSpent += incoming.SecondsSpent
	merged.PointsEarned = min(MaxPointsPerPage, existing.PointsEarned+incoming.PointsEarned)
	return merged, merged.PointsEarned - existing.PointsEarned
}

// ProgressRecord is a reader's position in one book. CompletedAt is zero
// until the book first reaches the completion threshold.
type ProgressRecord struct {
	UserID               string
	BookID               string
	CurrentPage          int
	TotalPages           int
	CompletionPercentage float64
	IsCompleted          bool
	LastReadAt           time.Time
	CompletedAt          time.Time
}

func NewProgressRecord(userID, bookID string, current, total int, at time.Time) ProgressRecord {
	pct := CompletionPercentage(current, total)
	return ProgressRecord{
		UserID:               userID,
		BookID:               bookID,
		CurrentPage:          current,
		TotalPages:           total,
		CompletionPercentage: pct,
		IsCompleted:          pct >= CompletionThreshold,
		LastReadAt:           at,
	}
}

// CompletionPercentage is current/total as a percentage clamped to [0, 100].
func CompletionPercentage(current, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(current) / float64(total) * 100
	return math.Max(0, math.Min(100, pct))
}

// Profile aggregates a reader's standing.
type Profile struct {
	UserID          string
	TotalPoints     int
	BooksCompleted  int
	BooksInProgress int
}

// SessionSummary is what the journal keeps for a closed reading session.
type SessionSummary struct {
	SessionID string
	UserID    string
	BookID    string
	StartedAt time.Time
	EndedAt   time.Time
	Pages     []int
	Seconds   int
	Points    int
}
