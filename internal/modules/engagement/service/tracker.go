package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"granth/internal/modules/engagement/domain"
	engagementout "granth/internal/modules/engagement/port/out"
	"granth/internal/platform/clock"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/id"
	"granth/internal/platform/identity"
)

type trackerState int

const (
	trackerIdle trackerState = iota
	trackerActive
	trackerTerminal
)

// Flush is what one page change or close handed to the writer. Result is nil
// when there was nothing to persist.
type Flush struct {
	Engagement *domain.EngagementRecord
	Progress   *domain.ProgressRecord
	Result     *Result
}

// Tracker accumulates dwell time for one open book. It is driven from the UI
// goroutine only; persistence goes through the shared Writer.
type Tracker struct {
	user    identity.User
	clock   clock.Clock
	ids     id.Generator
	svc     *EngagementService
	writer  *Writer
	journal engagementout.Journal
	log     *slog.Logger

	state   trackerState
	session domain.ReadingSession
}

func NewTracker(user identity.User, clk clock.Clock, ids id.Generator, svc *EngagementService, writer *Writer, journal engagementout.Journal, log *slog.Logger) *Tracker {
	return &Tracker{
		user:    user,
		clock:   clk,
		ids:     ids,
		svc:     svc,
		writer:  writer,
		journal: journal,
		log:     log.With(slog.String("component", "tracker"), slog.String("user_id", user.ID)),
	}
}

func (t *Tracker) Open(bookID string, page int) error {
	switch t.state {
	case trackerActive:
		return fmt.Errorf("%w: tracker already open for %s", apperrors.ErrInvalidInput, t.session.BookID)
	case trackerTerminal:
		return apperrors.ErrSessionClosed
	}
	if bookID == "" {
		return fmt.Errorf("%w: book id is required", apperrors.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}
	now := t.clock.Now()
	t.session = domain.ReadingSession{
		ID:           t.ids.New(),
		UserID:       t.user.ID,
		BookID:       bookID,
		OpenedAt:     now,
		StartedAt:    now,
		LastPageRead: page,
		PagesVisited: []int{page},
	}
	t.state = trackerActive
	t.log.Debug("reading_session_opened", slog.String("session_id", t.session.ID), slog.String("book_id", bookID), slog.Int("page", page))
	return nil
}

func (t *Tracker) Session() domain.ReadingSession { return t.session }

func (t *Tracker) Closed() bool { return t.state == trackerTerminal }

// PageChanged credits the time since the last change to the page being left
// and records the new position. Same-page calls credit nothing and keep the
// running interval.
func (t *Tracker) PageChanged(page, totalPages int) Flush {
	if t.state != trackerActive {
		return Flush{}
	}
	now := t.clock.Now()
	var f Flush
	if page != t.session.LastPageRead {
		f.Engagement = t.engagement(now)
	}
	if totalPages > 0 {
		rec := domain.NewProgressRecord(t.user.ID, t.session.BookID, page, totalPages, now)
		f.Progress = &rec
	}
	f.Result = t.submit("page_changed", f, nil)
	if page == t.session.LastPageRead {
		return f
	}

	t.session.StartedAt = now
	t.session.LastPageRead = page
	if !slices.Contains(t.session.PagesVisited, page) {
		t.session.PagesVisited = append(t.session.PagesVisited, page)
	}
	return f
}

// Close credits the last page read and ends the session. Progress is not
// written; page is only noted in the journal. Later calls do nothing.
func (t *Tracker) Close(page int) Flush {
	switch t.state {
	case trackerIdle:
		t.state = trackerTerminal
		return Flush{}
	case trackerTerminal:
		return Flush{}
	}
	t.state = trackerTerminal
	now := t.clock.Now()

	f := Flush{Engagement: t.engagement(now)}
	pages := slices.Clone(t.session.PagesVisited)
	if page >= 1 && !slices.Contains(pages, page) {
		pages = append(pages, page)
	}
	summary := domain.SessionSummary{
		SessionID: t.session.ID,
		UserID:    t.user.ID,
		BookID:    t.session.BookID,
		StartedAt: t.session.OpenedAt,
		EndedAt:   now,
		Pages:     pages,
		Seconds:   t.session.AccumulatedSeconds,
		Points:    t.session.PointsEarned,
	}
	f.Result = t.submit("session_closed", f, &summary)
	t.log.Debug("reading_session_closed",
		slog.String("session_id", t.session.ID),
		slog.Int("seconds", summary.Seconds),
		slog.Int("points", summary.Points),
	)
	return f
}

func (t *Tracker) engagement(now time.Time) *domain.EngagementRecord {
	seconds := int(now.Sub(t.session.StartedAt).Seconds())
	rec, ok := domain.NewEngagementRecord(t.user.ID, t.session.BookID, t.session.LastPageRead, seconds, now)
	if !ok {
		return nil
	}
	t.session.AccumulatedSeconds += rec.SecondsSpent
	t.session.PointsEarned += rec.PointsEarned
	return &rec
}

func (t *Tracker) submit(name string, f Flush, summary *domain.SessionSummary) *Result {
	if f.Engagement == nil && f.Progress == nil && (summary == nil || t.journal == nil) {
		return nil
	}
	eng, prog := f.Engagement, f.Progress
	journal := t.journal
	return t.writer.Submit(name, func(ctx context.Context) error {
		var errs []error
		if eng != nil {
			if err := t.svc.SaveEngagement(ctx, *eng); err != nil {
				errs = append(errs, &apperrors.PersistenceError{Op: "engagement", Cause: err})
			}
		}
		if prog != nil {
			if err := t.svc.SaveProgress(ctx, *prog); err != nil {
				errs = append(errs, &apperrors.PersistenceError{Op: "progress", Cause: err})
			}
		}
		if summary != nil && journal != nil {
			if _, err := journal.Append(ctx, *summary); err != nil {
				errs = append(errs, &apperrors.PersistenceError{Op: "journal", Cause: err})
			}
		}
		return errors.Join(errs...)
	})
}

// TrackerFactory opens trackers that share one writer and journal.
type TrackerFactory struct {
	clock   clock.Clock
	ids     id.Generator
	svc     *EngagementService
	writer  *Writer
	journal engagementout.Journal
	log     *slog.Logger
}

func NewTrackerFactory(clk clock.Clock, ids id.Generator, svc *EngagementService, writer *Writer, journal engagementout.Journal, log *slog.Logger) *TrackerFactory {
	return &TrackerFactory{clock: clk, ids: ids, svc: svc, writer: writer, journal: journal, log: log}
}

func (f *TrackerFactory) Open(user identity.User, bookID string, page int) (*Tracker, error) {
	t := NewTracker(user, f.clock, f.ids, f.svc, f.writer, f.journal, f.log)
	if err := t.Open(bookID, page); err != nil {
		return nil, err
	}
	return t, nil
}
