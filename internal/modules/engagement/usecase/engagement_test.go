package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"granth/internal/modules/engagement/domain"
	"granth/internal/modules/engagement/dto"
	engagementin "granth/internal/modules/engagement/port/in"
	"granth/internal/modules/engagement/service"
	"granth/internal/modules/engagement/usecase"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/logging"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeIDs struct{}

func (fakeIDs) New() string { return "session-1" }

type fakeStore struct {
	engagements []domain.EngagementRecord
	progress    map[string]domain.ProgressRecord
	sinceDay    string
}

func newFakeStore() *fakeStore { return &fakeStore{progress: map[string]domain.ProgressRecord{}} }

func (f *fakeStore) RecordEngagement(_ context.Context, rec domain.EngagementRecord) (int, error) {
	f.engagements = append(f.engagements, rec)
	return rec.PointsEarned, nil
}

func (f *fakeStore) UpsertProgress(_ context.Context, rec domain.ProgressRecord) error {
	f.progress[rec.BookID] = rec
	return nil
}

func (f *fakeStore) MarkCompleted(_ context.Context, userID, bookID string, at time.Time) error {
	rec := f.progress[bookID]
	rec.UserID, rec.BookID = userID, bookID
	rec.IsCompleted, rec.CompletionPercentage, rec.CompletedAt = true, 100, at
	f.progress[bookID] = rec
	return nil
}

func (f *fakeStore) ListProgress(_ context.Context, _ string, completed bool) ([]domain.ProgressRecord, error) {
	var out []domain.ProgressRecord
	for _, rec := range f.progress {
		if rec.IsCompleted == completed {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ListRecent(_ context.Context, _ string, sinceDay string) ([]domain.ProgressRecord, error) {
	f.sinceDay = sinceDay
	return nil, nil
}

func (f *fakeStore) Profile(_ context.Context, userID string) (domain.Profile, error) {
	p := domain.Profile{UserID: userID}
	for _, rec := range f.engagements {
		p.TotalPoints += rec.PointsEarned
	}
	return p, nil
}

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newInteractor(t *testing.T, clk *fakeClock, store *fakeStore) (engagementin.Usecase, *service.Writer) {
	t.Helper()
	w := service.NewWriter(logging.Discard(), time.Second)
	t.Cleanup(func() { _ = w.Close(context.Background()) })
	svc := service.NewEngagementService(clk, store)
	trackers := service.NewTrackerFactory(clk, fakeIDs{}, svc, w, nil, logging.Discard())
	return usecase.NewInteractor(svc, trackers), w
}

func TestRecordEngagementDropsShortIntervals(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	uc, _ := newInteractor(t, &fakeClock{now}, store)
	ctx := context.Background()

	out, err := uc.RecordEngagement(ctx, dto.RecordEngagementInput{UserID: "reader-1", BookID: "gita", Page: 2, Seconds: 0})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.Recorded || len(store.engagements) != 0 {
		t.Fatalf("zero-second interval recorded: %+v", out)
	}

	out, err = uc.RecordEngagement(ctx, dto.RecordEngagementInput{UserID: "reader-1", BookID: "gita", Page: 2, Seconds: 45})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !out.Recorded || out.PointsEarned != 2 || out.Date != "2026-03-01" {
		t.Fatalf("unexpected output %+v", out)
	}

	if _, err := uc.RecordEngagement(ctx, dto.RecordEngagementInput{BookID: "gita", Page: 2, Seconds: 45}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestUpdateProgressValidatesAndMarksCompletion(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	uc, _ := newInteractor(t, &fakeClock{now}, store)
	ctx := context.Background()

	if _, err := uc.UpdateProgress(ctx, dto.UpdateProgressInput{UserID: "reader-1", BookID: "gita", CurrentPage: 3, TotalPages: 0}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unknown total: %v", err)
	}
	out, err := uc.UpdateProgress(ctx, dto.UpdateProgressInput{UserID: "reader-1", BookID: "gita", CurrentPage: 19, TotalPages: 20})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !out.IsCompleted || out.CompletionPercentage != 95 {
		t.Fatalf("19 of 20 should complete: %+v", out)
	}

	if err := uc.MarkCompleted(ctx, dto.BookRefInput{UserID: "reader-1", BookID: "upanishads"}); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	completed, err := uc.ListCompleted(ctx, "reader-1")
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("completed = %+v", completed)
	}
	inProgress, err := uc.ListInProgress(ctx, "reader-1")
	if err != nil || len(inProgress) != 0 {
		t.Fatalf("in progress = %+v, %v", inProgress, err)
	}
}

func TestListRecentLooksBackThirtyDays(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	uc, _ := newInteractor(t, &fakeClock{now}, store)
	if _, err := uc.ListRecent(context.Background(), "reader-1"); err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if store.sinceDay != "2026-01-30" {
		t.Fatalf("since day = %q", store.sinceDay)
	}
}

func TestBeginSessionFlushesOnClose(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	clk := &fakeClock{now}
	uc, w := newInteractor(t, clk, store)
	ctx := context.Background()

	tracker, err := uc.BeginSession(ctx, dto.BeginSessionInput{UserID: "reader-1", BookID: "gita", Page: 1})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if tracker.SessionID() != "session-1" {
		t.Fatalf("session id = %q", tracker.SessionID())
	}
	clk.now = now.Add(40 * time.Second)
	tracker.PageChanged(2, 10)
	clk.now = now.Add(70 * time.Second)
	tracker.Close(2)
	if err := w.Close(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if len(store.engagements) != 2 {
		t.Fatalf("engagements = %+v", store.engagements)
	}
	if store.engagements[0].PageNumber != 1 || store.engagements[1].PageNumber != 2 || store.engagements[1].SecondsSpent != 30 {
		t.Fatalf("engagements = %+v", store.engagements)
	}
	if got := store.progress["gita"]; got.CurrentPage != 2 || got.TotalPages != 10 {
		t.Fatalf("progress = %+v", got)
	}

	profile, err := uc.Profile(ctx, "reader-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.TotalPoints != 3 {
		t.Fatalf("total points = %d", profile.TotalPoints)
	}

	if _, err := uc.BeginSession(ctx, dto.BeginSessionInput{UserID: "reader-1", Page: 1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("missing book: %v", err)
	}
}
