package service

import (
	"context"
	"fmt"
	"strings"

	"granth/internal/modules/engagement/domain"
	engagementout "granth/internal/modules/engagement/port/out"
	"granth/internal/platform/clock"
	apperrors "granth/internal/platform/errors"
)

type EngagementService struct {
	clock clock.Clock
	store engagementout.Store
}

func NewEngagementService(clock clock.Clock, store engagementout.Store) *EngagementService {
	return &EngagementService{clock: clock, store: store}
}

// RecordEngagement stores seconds spent on page now. Intervals under a second
// are dropped and reported as not recorded.
func (s *EngagementService) RecordEngagement(ctx context.Context, userID, bookID string, page, seconds int) (domain.EngagementRecord, bool, error) {
	if err := requireRef(userID, bookID); err != nil {
		return domain.EngagementRecord{}, false, err
	}
	rec, ok := domain.NewEngagementRecord(userID, bookID, page, seconds, s.clock.Now())
	if !ok {
		return domain.EngagementRecord{}, false, nil
	}
	if err := s.SaveEngagement(ctx, rec); err != nil {
		return domain.EngagementRecord{}, false, err
	}
	return rec, true, nil
}

func (s *EngagementService) SaveEngagement(ctx context.Context, rec domain.EngagementRecord) error {
	if _, err := s.store.RecordEngagement(ctx, rec); err != nil {
		return err
	}
	return nil
}

func (s *EngagementService) UpdateProgress(ctx context.Context, userID, bookID string, current, total int) (domain.ProgressRecord, error) {
	if err := requireRef(userID, bookID); err != nil {
		return domain.ProgressRecord{}, err
	}
	if total <= 0 || current < 1 {
		return domain.ProgressRecord{}, fmt.Errorf("%w: page %d of %d", apperrors.ErrInvalidInput, current, total)
	}
	rec := domain.NewProgressRecord(userID, bookID, current, total, s.clock.Now())
	if err := s.SaveProgress(ctx, rec); err != nil {
		return domain.ProgressRecord{}, err
	}
	return rec, nil
}

func (s *EngagementService) SaveProgress(ctx context.Context, rec domain.ProgressRecord) error {
	return s.store.UpsertProgress(ctx, rec)
}

func (s *EngagementService) MarkCompleted(ctx context.Context, userID, bookID string) error {
	if err := requireRef(userID, bookID); err != nil {
		return err
	}
	return s.store.MarkCompleted(ctx, userID, bookID, s.clock.Now())
}

func (s *EngagementService) ListInProgress(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.ListProgress(ctx, userID, false)
}

func (s *EngagementService) ListCompleted(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.ListProgress(ctx, userID, true)
}

// ListRecent covers books read in the last thirty days.
func (s *EngagementService) ListRecent(ctx context.Context, userID string) ([]domain.ProgressRecord, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	since := clock.Day(s.clock.Now().Add(-domain.RecentWindow))
	return s.store.ListRecent(ctx, userID, since)
}

func (s *EngagementService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	if err := requireUser(userID); err != nil {
		return domain.Profile{}, err
	}
	return s.store.Profile(ctx, userID)
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	return nil
}

func requireRef(userID, bookID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if strings.TrimSpace(bookID) == "" {
		return fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	return nil
}
