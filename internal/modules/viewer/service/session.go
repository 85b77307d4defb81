package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"granth/internal/modules/viewer/domain"
	"granth/internal/modules/viewer/dto"
	viewerin "granth/internal/modules/viewer/port/in"
	viewerout "granth/internal/modules/viewer/port/out"
	apperrors "granth/internal/platform/errors"
)

// Session is one open document: the loaded PDF, its viewport, the gesture
// recognizer feeding it and the engagement tracking behind page changes.
type Session struct {
	book    domain.BookRef
	url     string
	loader  viewerout.DocumentLoader
	timeout time.Duration
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	recognizer *domain.Recognizer
	viewport   *domain.Viewport
	tracking   viewerout.TrackingSession

	phase    dto.Phase
	progress int
	doc      viewerout.Document
	loadErr  *apperrors.LoadError
}

var _ viewerin.Reader = (*Session)(nil)

func newSession(book domain.BookRef, url string, startPage int, gestures domain.GestureConfig, loader viewerout.DocumentLoader, timeout time.Duration, tracking viewerout.TrackingSession, log *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		book:       book,
		url:        url,
		loader:     loader,
		timeout:    timeout,
		log:        log.With(slog.String("component", "viewer_session"), slog.String("book_id", book.ID)),
		ctx:        ctx,
		cancel:     cancel,
		recognizer: domain.NewRecognizer(gestures),
		viewport:   domain.NewViewport(startPage),
		tracking:   tracking,
		phase:      dto.PhaseLoading,
	}
}

// Load fetches the document under the session's lifetime and ctx, whichever
// ends first. It touches no mutable session state.
func (s *Session) Load(ctx context.Context, progress func(percent int)) viewerin.LoadResult {
	if s.url == "" {
		return viewerin.LoadResult{Err: apperrors.NewLoadError(apperrors.LoadMissingURL, nil, "no pdf link for %q", s.book.Title)}
	}
	loadCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	doc, err := s.loader.Load(loadCtx, s.url, progress)
	if err == nil {
		return viewerin.LoadResult{Document: doc}
	}
	if _, ok := apperrors.IsLoadError(err); ok {
		return viewerin.LoadResult{Err: err}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return viewerin.LoadResult{Err: apperrors.NewLoadError(apperrors.LoadNetwork, err, "timed out after %s", s.timeout)}
	case errors.Is(err, context.Canceled):
		return viewerin.LoadResult{Err: apperrors.NewLoadError(apperrors.LoadCanceled, err, "loading was cancelled")}
	}
	return viewerin.LoadResult{Err: apperrors.NewLoadError(apperrors.LoadNetwork, err, "%v", err)}
}

func (s *Session) ReportProgress(percent int) {
	if s.phase != dto.PhaseLoading {
		return
	}
	s.progress = max(s.progress, min(100, percent))
}

// FinishLoad applies a load result. Results arriving after Close are dropped.
func (s *Session) FinishLoad(res viewerin.LoadResult) dto.ViewState {
	if s.phase == dto.PhaseClosed {
		return s.State()
	}
	if res.Err != nil {
		le, ok := apperrors.IsLoadError(res.Err)
		if !ok {
			le = apperrors.NewLoadError(apperrors.LoadNetwork, res.Err, "%v", res.Err)
		}
		s.phase = dto.PhaseFailed
		s.loadErr = le
		s.log.Warn("document_load_failed", slog.String("kind", string(le.Kind)), slog.Any("error", res.Err))
		return s.State()
	}
	if res.Document == nil {
		s.phase = dto.PhaseFailed
		s.loadErr = apperrors.NewLoadError(apperrors.LoadMalformed, nil, "document is empty")
		return s.State()
	}
	if res.Document.PageCount() < 1 {
		s.phase = dto.PhaseFailed
		s.loadErr = apperrors.NewLoadError(apperrors.LoadMalformed, nil, "document has no pages")
		s.log.Warn("document_load_failed", slog.String("kind", string(apperrors.LoadMalformed)), slog.String("error", "no pages"))
		return s.State()
	}
	s.doc = res.Document
	s.phase = dto.PhaseReady
	s.progress = 100
	s.loadErr = nil

	before := s.viewport.State().PageNumber
	s.viewport.SetPageCount(s.doc.PageCount())
	s.log.Info("document_loaded", slog.Int("pages", s.doc.PageCount()))
	if s.viewport.State().PageNumber != before {
		s.pageChanged()
	}
	return s.State()
}

// Retry puts a failed or dismissed session back into loading; the caller
// runs Load again.
func (s *Session) Retry() bool {
	if s.phase != dto.PhaseFailed && s.phase != dto.PhaseEmpty {
		return false
	}
	s.phase = dto.PhaseLoading
	s.progress = 0
	s.loadErr = nil
	return true
}

func (s *Session) DismissError() {
	if s.phase != dto.PhaseFailed {
		return
	}
	s.phase = dto.PhaseEmpty
	s.loadErr = nil
}

// Pointer feeds one raw event through the recognizer and applies whatever
// actions it yields. Input is ignored until a document is showing.
func (s *Session) Pointer(ev dto.PointerInput) dto.ViewState {
	if s.phase != dto.PhaseReady {
		return s.State()
	}
	vs := s.viewport.State()
	actions := s.recognizer.Handle(toPointerEvent(ev), domain.ViewSnapshot{Scale: vs.Scale, ScrollX: vs.ScrollX, ScrollY: vs.ScrollY})
	for _, a := range actions {
		s.apply(a)
	}
	return s.State()
}

func (s *Session) apply(a domain.Action) {
	switch a.Kind {
	case domain.ActionSetScale:
		s.viewport.SetScale(a.Scale)
	case domain.ActionScroll:
		s.viewport.ScrollTo(a.ScrollX, a.ScrollY)
	case domain.ActionNextPage:
		s.NextPage()
	case domain.ActionPreviousPage:
		s.PreviousPage()
	case domain.ActionToggleUI:
		s.viewport.ToggleUI()
	case domain.ActionZoomToggle:
		s.viewport.ToggleZoom()
	}
}

func (s *Session) NextPage() bool     { return s.navigate(s.viewport.NextPage) }
func (s *Session) PreviousPage() bool { return s.navigate(s.viewport.PreviousPage) }

func (s *Session) GoToPage(page int) bool {
	return s.navigate(func() bool { return s.viewport.GoToPage(page) })
}

func (s *Session) navigate(move func() bool) bool {
	if s.phase != dto.PhaseReady || !move() {
		return false
	}
	s.pageChanged()
	return true
}

func (s *Session) pageChanged() {
	if s.tracking == nil {
		return
	}
	vs := s.viewport.State()
	s.tracking.PageChanged(vs.PageNumber, vs.PageCount)
}

func (s *Session) ZoomIn()     { s.whenOpen(s.viewport.ZoomIn) }
func (s *Session) ZoomOut()    { s.whenOpen(s.viewport.ZoomOut) }
func (s *Session) ToggleZoom() { s.whenOpen(s.viewport.ToggleZoom) }
func (s *Session) Rotate()     { s.whenOpen(s.viewport.Rotate) }
func (s *Session) ToggleUI()   { s.whenOpen(s.viewport.ToggleUI) }

func (s *Session) ScrollBy(dx, dy float64) {
	s.whenOpen(func() {
		vs := s.viewport.State()
		s.viewport.ScrollTo(vs.ScrollX+dx, vs.ScrollY+dy)
	})
}

func (s *Session) whenOpen(f func()) {
	if s.phase == dto.PhaseClosed {
		return
	}
	f()
}

func (s *Session) State() dto.ViewState {
	vs := s.viewport.State()
	out := dto.ViewState{
		BookID:    s.book.ID,
		Title:     s.book.Title,
		Phase:     s.phase,
		Progress:  s.progress,
		Page:      vs.PageNumber,
		PageCount: vs.PageCount,
		Scale:     vs.Scale,
		Rotation:  vs.Rotation,
		UIHidden:  vs.UIHidden,
		ScrollX:   vs.ScrollX,
		ScrollY:   vs.ScrollY,
	}
	if s.loadErr != nil {
		out.Error = s.loadErr.Error()
		out.ErrorKind = string(s.loadErr.Kind)
	}
	return out
}

func (s *Session) PageText() (string, error) {
	if s.phase != dto.PhaseReady || s.doc == nil {
		return "", fmt.Errorf("%w: document is not loaded", apperrors.ErrInvalidInput)
	}
	return s.doc.PageText(s.viewport.State().PageNumber)
}

// Close cancels any load in flight and ends tracking on the current page.
// It does not wait for persistence and is safe to call more than once.
func (s *Session) Close() {
	if s.phase == dto.PhaseClosed {
		return
	}
	s.phase = dto.PhaseClosed
	s.cancel()
	s.recognizer.Reset()
	if s.tracking != nil {
		s.tracking.End(s.viewport.State().PageNumber)
	}
	s.doc = nil
	s.log.Debug("viewer_session_closed")
}

func toPointerEvent(ev dto.PointerInput) domain.PointerEvent {
	target := domain.TargetPage
	if ev.OnControl {
		target |= domain.TargetControl
	}
	if ev.NoToggle {
		target |= domain.TargetNoToggle
	}
	out := domain.PointerEvent{PointerID: ev.PointerID, X: ev.X, Y: ev.Y, Target: target, At: ev.At}
	switch ev.Kind {
	case dto.PointerDown:
		out.Kind = domain.PointerDown
	case dto.PointerMove:
		out.Kind = domain.PointerMove
	case dto.PointerUp:
		out.Kind = domain.PointerUp
	default:
		out.Kind = domain.PointerCancel
	}
	return out
}
