package in

import (
	"context"

	"granth/internal/modules/engagement/dto"
)

type Usecase interface {
	BeginSession(ctx context.Context, input dto.BeginSessionInput) (SessionTracker, error)
	RecordEngagement(ctx context.Context, input dto.RecordEngagementInput) (dto.EngagementOutput, error)
	UpdateProgress(ctx context.Context, input dto.UpdateProgressInput) (dto.ProgressOutput, error)
	MarkCompleted(ctx context.Context, input dto.BookRefInput) error
	ListInProgress(ctx context.Context, userID string) ([]dto.ProgressOutput, error)
	ListCompleted(ctx context.Context, userID string) ([]dto.ProgressOutput, error)
	ListRecent(ctx context.Context, userID string) ([]dto.ProgressOutput, error)
	Profile(ctx context.Context, userID string) (dto.ProfileOutput, error)
}

// SessionTracker records time spent in one open book. Calls never block on
// persistence and never fail; writes happen in the background.
type SessionTracker interface {
	SessionID() string
	PageChanged(page, totalPages int)
	Close(page int)
}
