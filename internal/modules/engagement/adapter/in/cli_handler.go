package in

import (
	"context"

	"granth/internal/modules/engagement/dto"
	engagementin "granth/internal/modules/engagement/port/in"
)

// CLIHandler acts for the single reader resolved at startup.
type CLIHandler struct {
	usecase engagementin.Usecase
	userID  string
}

func NewCLIHandler(usecase engagementin.Usecase, userID string) CLIHandler {
	return CLIHandler{usecase: usecase, userID: userID}
}

func (h CLIHandler) UserID() string { return h.userID }

func (h CLIHandler) RecordEngagement(ctx context.Context, bookID string, page, seconds int) (dto.EngagementOutput, error) {
	return h.usecase.RecordEngagement(ctx, dto.RecordEngagementInput{UserID: h.userID, BookID: bookID, Page: page, Seconds: seconds})
}

func (h CLIHandler) UpdateProgress(ctx context.Context, bookID string, current, total int) (dto.ProgressOutput, error) {
	return h.usecase.UpdateProgress(ctx, dto.UpdateProgressInput{UserID: h.userID, BookID: bookID, CurrentPage: current, TotalPages: total})
}

func (h CLIHandler) MarkCompleted(ctx context.Context, bookID string) error {
	return h.usecase.MarkCompleted(ctx, dto.BookRefInput{UserID: h.userID, BookID: bookID})
}

func (h CLIHandler) ListInProgress(ctx context.Context) ([]dto.ProgressOutput, error) {
	return h.usecase.ListInProgress(ctx, h.userID)
}

func (h CLIHandler) ListCompleted(ctx context.Context) ([]dto.ProgressOutput, error) {
	return h.usecase.ListCompleted(ctx, h.userID)
}

func (h CLIHandler) ListRecent(ctx context.Context) ([]dto.ProgressOutput, error) {
	return h.usecase.ListRecent(ctx, h.userID)
}

func (h CLIHandler) Profile(ctx context.Context) (dto.ProfileOutput, error) {
	return h.usecase.Profile(ctx, h.userID)
}
