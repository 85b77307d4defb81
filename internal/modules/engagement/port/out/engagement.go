package out

import (
	"context"
	"time"

	"granth/internal/modules/engagement/domain"
)

type Store interface {
	// RecordEngagement merges rec into the page's daily row and returns how
	// many points the user's total grew by.
	RecordEngagement(ctx context.Context, rec domain.EngagementRecord) (int, error)
	UpsertProgress(ctx context.Context, rec domain.ProgressRecord) error
	MarkCompleted(ctx context.Context, userID, bookID string, at time.Time) error
	ListProgress(ctx context.Context, userID string, completed bool) ([]domain.ProgressRecord, error)
	// ListRecent returns progress for books with engagement on or after sinceDay.
	ListRecent(ctx context.Context, userID, sinceDay string) ([]domain.ProgressRecord, error)
	Profile(ctx context.Context, userID string) (domain.Profile, error)
}

type Journal interface {
	Append(ctx context.Context, summary domain.SessionSummary) (string, error)
}
