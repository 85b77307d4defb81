package usecase

import (
	"context"

	"granth/internal/modules/engagement/domain"
	"granth/internal/modules/engagement/dto"
	engagementin "granth/internal/modules/engagement/port/in"
	"granth/internal/modules/engagement/service"
	"granth/internal/platform/identity"
)

type Interactor struct {
	svc      *service.EngagementService
	trackers *service.TrackerFactory
}

func NewInteractor(svc *service.EngagementService, trackers *service.TrackerFactory) engagementin.Usecase {
	return &Interactor{svc: svc, trackers: trackers}
}

func (i *Interactor) BeginSession(_ context.Context, input dto.BeginSessionInput) (engagementin.SessionTracker, error) {
	t, err := i.trackers.Open(identity.User{ID: input.UserID}, input.BookID, input.Page)
	if err != nil {
		return nil, err
	}
	return sessionTracker{t: t}, nil
}

func (i *Interactor) RecordEngagement(ctx context.Context, input dto.RecordEngagementInput) (dto.EngagementOutput, error) {
	rec, ok, err := i.svc.RecordEngagement(ctx, input.UserID, input.BookID, input.Page, input.Seconds)
	if err != nil {
		return dto.EngagementOutput{}, err
	}
	if !ok {
		return dto.EngagementOutput{BookID: input.BookID, Page: input.Page, Seconds: input.Seconds}, nil
	}
	return dto.EngagementOutput{
		Recorded:     true,
		BookID:       rec.BookID,
		Page:         rec.PageNumber,
		Seconds:      rec.SecondsSpent,
		PointsEarned: rec.PointsEarned,
		Date:         rec.Date,
	}, nil
}

func (i *Interactor) UpdateProgress(ctx context.Context, input dto.UpdateProgressInput) (dto.ProgressOutput, error) {
	rec, err := i.svc.UpdateProgress(ctx, input.UserID, input.BookID, input.CurrentPage, input.TotalPages)
	if err != nil {
		return dto.ProgressOutput{}, err
	}
	return toProgressOutput(rec), nil
}

func (i *Interactor) MarkCompleted(ctx context.Context, input dto.BookRefInput) error {
	return i.svc.MarkCompleted(ctx, input.UserID, input.BookID)
}

func (i *Interactor) ListInProgress(ctx context.Context, userID string) ([]dto.ProgressOutput, error) {
	return toProgressOutputs(i.svc.ListInProgress(ctx, userID))
}

func (i *Interactor) ListCompleted(ctx context.Context, userID string) ([]dto.ProgressOutput, error) {
	return toProgressOutputs(i.svc.ListCompleted(ctx, userID))
}

func (i *Interactor) ListRecent(ctx context.Context, userID string) ([]dto.ProgressOutput, error) {
	return toProgressOutputs(i.svc.ListRecent(ctx, userID))
}

func (i *Interactor) Profile(ctx context.Context, userID string) (dto.ProfileOutput, error) {
	p, err := i.svc.Profile(ctx, userID)
	if err != nil {
		return dto.ProfileOutput{}, err
	}
	return dto.ProfileOutput{
		UserID:          p.UserID,
		TotalPoints:     p.TotalPoints,
		BooksCompleted:  p.BooksCompleted,
		BooksInProgress: p.BooksInProgress,
	}, nil
}

// sessionTracker hides the writer handles the service returns.
type sessionTracker struct {
	t *service.Tracker
}

func (s sessionTracker) SessionID() string                { return s.t.Session().ID }
func (s sessionTracker) PageChanged(page, totalPages int) { s.t.PageChanged(page, totalPages) }
func (s sessionTracker) Close(page int)                   { s.t.Close(page) }

func toProgressOutputs(recs []domain.ProgressRecord, err error) ([]dto.ProgressOutput, error) {
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProgressOutput, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toProgressOutput(rec))
	}
	return out, nil
}

func toProgressOutput(rec domain.ProgressRecord) dto.ProgressOutput {
	return dto.ProgressOutput{
		BookID:               rec.BookID,
		CurrentPage:          rec.CurrentPage,
		TotalPages:           rec.TotalPages,
		CompletionPercentage: rec.CompletionPercentage,
		IsCompleted:          rec.IsCompleted,
		LastReadAt:           rec.LastReadAt,
		CompletedAt:          rec.CompletedAt,
	}
}
