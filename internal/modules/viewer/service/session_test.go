package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"granth/internal/modules/viewer/domain"
	"granth/internal/modules/viewer/dto"
	viewerin "granth/internal/modules/viewer/port/in"
	viewerout "granth/internal/modules/viewer/port/out"
	"granth/internal/modules/viewer/service"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/logging"
)

type fakeDoc struct{ pages int }

func (d fakeDoc) PageCount() int { return d.pages }

func (d fakeDoc) PageText(page int) (string, error) {
	return fmt.Sprintf("text of page %d", page), nil
}

type fakeLoader struct {
	doc   viewerout.Document
	err   error
	block bool
	urls  []string
}

func (l *fakeLoader) Load(ctx context.Context, url string, progress func(int)) (viewerout.Document, error) {
	l.urls = append(l.urls, url)
	if l.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if progress != nil {
		progress(50)
		progress(100)
	}
	return l.doc, l.err
}

type pageChange struct{ page, total int }

type fakeTracking struct {
	changes []pageChange
	ends    []int
}

func (f *fakeTracking) PageChanged(page, total int) {
	f.changes = append(f.changes, pageChange{page, total})
}
func (f *fakeTracking) End(page int) { f.ends = append(f.ends, page) }

type fakeTracker struct {
	session *fakeTracking
	err     error
	begun   []string
}

func (f *fakeTracker) Begin(_ context.Context, bookID string, _ int) (viewerout.TrackingSession, error) {
	f.begun = append(f.begun, bookID)
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeBooks map[string]domain.BookRef

func (f fakeBooks) Resolve(_ context.Context, slug string) (domain.BookRef, error) {
	b, ok := f[slug]
	if !ok {
		return domain.BookRef{}, apperrors.ErrNotFound
	}
	return b, nil
}

var books = fakeBooks{
	"gita":    {ID: "gita", Title: "Bhagavad Gita", URL: "https://www.dropbox.com/s/abc/gita.pdf?dl=0", Pages: 10},
	"no-link": {ID: "no-link", Title: "Unscanned"},
}

func newService(loader viewerout.DocumentLoader, tracker viewerout.ReadingTracker) *service.ViewerService {
	return service.NewViewerService(service.Config{Gestures: domain.DefaultGestureConfig(), LoadTimeout: time.Second}, books, loader, tracker, logging.Discard())
}

func openLoaded(t *testing.T, pages, start int) (*service.Session, *fakeTracking, *fakeLoader) {
	t.Helper()
	tracking := &fakeTracking{}
	loader := &fakeLoader{doc: fakeDoc{pages: pages}}
	sess, err := newService(loader, &fakeTracker{session: tracking}).Open(context.Background(), "gita", "", start)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(sess.Close)
	state := sess.FinishLoad(sess.Load(context.Background(), sess.ReportProgress))
	if state.Phase != dto.PhaseReady {
		t.Fatalf("phase = %s, error %q", state.Phase, state.Error)
	}
	return sess, tracking, loader
}

func TestSessionLoadsResolvedURL(t *testing.T) {
	t.Parallel()
	sess, _, loader := openLoaded(t, 10, 1)
	if len(loader.urls) != 1 || loader.urls[0] != "https://www.dropbox.com/s/abc/gita.pdf?dl=1" {
		t.Fatalf("loader urls = %v", loader.urls)
	}
	st := sess.State()
	if st.PageCount != 10 || st.Progress != 100 || st.Title != "Bhagavad Gita" {
		t.Fatalf("unexpected state %+v", st)
	}
	text, err := sess.PageText()
	if err != nil || text != "text of page 1" {
		t.Fatalf("page text = %q, %v", text, err)
	}
}

func TestSessionNavigationNotifiesTracker(t *testing.T) {
	t.Parallel()
	sess, tracking, _ := openLoaded(t, 3, 1)

	if !sess.NextPage() || !sess.NextPage() {
		t.Fatalf("expected to reach page 3")
	}
	if sess.NextPage() {
		t.Fatalf("moved past the last page")
	}
	if sess.GoToPage(3) || sess.GoToPage(0) || sess.GoToPage(4) {
		t.Fatalf("no-op navigation reported a change")
	}
	if !sess.PreviousPage() {
		t.Fatalf("previous page failed")
	}
	want := []pageChange{{2, 3}, {3, 3}, {2, 3}}
	if fmt.Sprint(tracking.changes) != fmt.Sprint(want) {
		t.Fatalf("tracker changes = %v, want %v", tracking.changes, want)
	}
}

func TestSessionSwipeTurnsPage(t *testing.T) {
	t.Parallel()
	sess, tracking, _ := openLoaded(t, 5, 1)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	sess.Pointer(dto.PointerInput{Kind: dto.PointerDown, PointerID: 1, X: 300, Y: 200, At: at})
	sess.Pointer(dto.PointerInput{Kind: dto.PointerMove, PointerID: 1, X: 250, Y: 198, At: at.Add(50 * time.Millisecond)})
	st := sess.Pointer(dto.PointerInput{Kind: dto.PointerUp, PointerID: 1, X: 220, Y: 195, At: at.Add(100 * time.Millisecond)})
	if st.Page != 2 || st.UIHidden {
		t.Fatalf("swipe left: %+v", st)
	}
	if len(tracking.changes) != 1 {
		t.Fatalf("tracker changes = %v", tracking.changes)
	}

	sess.Pointer(dto.PointerInput{Kind: dto.PointerDown, PointerID: 2, X: 10, Y: 10, OnControl: true, At: at.Add(time.Second)})
	st = sess.Pointer(dto.PointerInput{Kind: dto.PointerUp, PointerID: 2, X: 200, Y: 10, OnControl: true, At: at.Add(time.Second)})
	if st.Page != 2 {
		t.Fatalf("gesture on a control turned the page: %+v", st)
	}
}

func TestSessionPinchAndTap(t *testing.T) {
	t.Parallel()
	sess, _, _ := openLoaded(t, 5, 1)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	sess.Pointer(dto.PointerInput{Kind: dto.PointerDown, PointerID: 1, X: 100, Y: 100, At: at})
	sess.Pointer(dto.PointerInput{Kind: dto.PointerDown, PointerID: 2, X: 200, Y: 100, At: at})
	st := sess.Pointer(dto.PointerInput{Kind: dto.PointerMove, PointerID: 2, X: 300, Y: 100, At: at})
	if st.Scale != 2 {
		t.Fatalf("pinch scale = %v", st.Scale)
	}
	sess.Pointer(dto.PointerInput{Kind: dto.PointerUp, PointerID: 2, X: 300, Y: 100, At: at})
	st = sess.Pointer(dto.PointerInput{Kind: dto.PointerUp, PointerID: 1, X: 100, Y: 100, At: at})
	if st.UIHidden || st.Page != 1 {
		t.Fatalf("pinch release acted: %+v", st)
	}

	tap := at.Add(time.Second)
	sess.Pointer(dto.PointerInput{Kind: dto.PointerDown, PointerID: 3, X: 50, Y: 50, At: tap})
	st = sess.Pointer(dto.PointerInput{Kind: dto.PointerUp, PointerID: 3, X: 52, Y: 51, At: tap})
	if !st.UIHidden {
		t.Fatalf("tap did not toggle chrome")
	}
	sess.Pointer(dto.PointerInput{Kind: dto.PointerDown, PointerID: 3, X: 50, Y: 50, At: tap.Add(200 * time.Millisecond)})
	st = sess.Pointer(dto.PointerInput{Kind: dto.PointerUp, PointerID: 3, X: 50, Y: 50, At: tap.Add(200 * time.Millisecond)})
	if st.UIHidden || st.Scale != 1 {
		t.Fatalf("double tap from 2.0 should show chrome and reset zoom: %+v", st)
	}
}

func TestSessionLoadFailureAndDismiss(t *testing.T) {
	t.Parallel()
	tracking := &fakeTracking{}
	sess, err := newService(&fakeLoader{}, &fakeTracker{session: tracking}).Open(context.Background(), "no-link", "", 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st := sess.FinishLoad(sess.Load(context.Background(), nil))
	if st.Phase != dto.PhaseFailed || st.ErrorKind != string(apperrors.LoadMissingURL) || st.Error == "" {
		t.Fatalf("unexpected state %+v", st)
	}
	if sess.NextPage() {
		t.Fatalf("navigated without a document")
	}
	if _, err := sess.PageText(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("page text without document: %v", err)
	}
	sess.DismissError()
	if st := sess.State(); st.Phase != dto.PhaseEmpty || st.Error != "" {
		t.Fatalf("dismiss left %+v", st)
	}
	if !sess.Retry() || sess.State().Phase != dto.PhaseLoading {
		t.Fatalf("retry did not restart loading")
	}
	sess.Close()
	if len(tracking.ends) != 1 || tracking.ends[0] != 1 {
		t.Fatalf("tracking ends = %v", tracking.ends)
	}
}

func TestSessionRejectsDocumentWithoutPages(t *testing.T) {
	t.Parallel()
	tracking := &fakeTracking{}
	loader := &fakeLoader{doc: fakeDoc{pages: 0}}
	sess, err := newService(loader, &fakeTracker{session: tracking}).Open(context.Background(), "gita", "", 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(sess.Close)
	st := sess.FinishLoad(sess.Load(context.Background(), sess.ReportProgress))
	if st.Phase != dto.PhaseFailed || st.ErrorKind != string(apperrors.LoadMalformed) {
		t.Fatalf("unexpected state %+v", st)
	}
	if sess.GoToPage(500) {
		t.Fatalf("navigated inside a document with no pages")
	}
	if st := sess.State(); st.Page != 1 {
		t.Fatalf("page = %d, want 1", st.Page)
	}
	if len(tracking.changes) != 0 {
		t.Fatalf("tracker changes = %v", tracking.changes)
	}
}

func TestSessionCloseCancelsLoadAndDropsResult(t *testing.T) {
	t.Parallel()
	tracking := &fakeTracking{}
	sess, err := newService(&fakeLoader{block: true}, &fakeTracker{session: tracking}).Open(context.Background(), "gita", "", 4)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		res := sess.Load(context.Background(), nil)
		if le, ok := apperrors.IsLoadError(res.Err); !ok || le.Kind != apperrors.LoadCanceled {
			t.Errorf("load after close = %v", res.Err)
		}
	}()
	sess.Close()
	<-done

	st := sess.FinishLoad(viewerin.LoadResult{Document: fakeDoc{pages: 10}})
	if st.Phase != dto.PhaseClosed || st.PageCount != 0 {
		t.Fatalf("late load result applied: %+v", st)
	}
	sess.Close()
	if len(tracking.ends) != 1 || tracking.ends[0] != 4 {
		t.Fatalf("tracking ends = %v", tracking.ends)
	}
}

func TestViewerServiceResolve(t *testing.T) {
	t.Parallel()
	svc := newService(&fakeLoader{}, nil)
	ctx := context.Background()

	book, src, err := svc.Resolve(ctx, "", "https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing")
	if err != nil {
		t.Fatalf("resolve url: %v", err)
	}
	if book.ID != "view" || src != "https://drive.google.com/uc?export=download&id=1AbC_d-9" {
		t.Fatalf("book %+v src %q", book, src)
	}

	book, _, err = svc.Resolve(ctx, "", "https://example.org/books/Śrīmad Bhāgavatam.pdf")
	if err != nil || book.ID != "srimad-bhagavatam" {
		t.Fatalf("derived id %q, %v", book.ID, err)
	}

	book, src, err = svc.Resolve(ctx, "gita", "https://example.org/mirror.pdf")
	if err != nil || book.ID != "gita" || src != "https://example.org/mirror.pdf" {
		t.Fatalf("url override: %+v %q %v", book, src, err)
	}

	if _, _, err := svc.Resolve(ctx, "missing", ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("unknown slug: %v", err)
	}
	if _, _, err := svc.Resolve(ctx, " ", ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("empty input: %v", err)
	}
}

func TestViewerServiceOpensWithoutTracking(t *testing.T) {
	t.Parallel()
	tracker := &fakeTracker{err: errors.New("store offline")}
	svc := newService(&fakeLoader{doc: fakeDoc{pages: 2}}, tracker)
	sess, err := svc.Open(context.Background(), "gita", "", 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sess.Close()
	sess.FinishLoad(sess.Load(context.Background(), nil))
	if !sess.NextPage() {
		t.Fatalf("navigation should work without tracking")
	}
	if len(tracker.begun) != 1 {
		t.Fatalf("begin calls = %v", tracker.begun)
	}
}

func TestViewerServiceReadPage(t *testing.T) {
	t.Parallel()
	tracker := &fakeTracker{session: &fakeTracking{}}
	svc := newService(&fakeLoader{doc: fakeDoc{pages: 7}}, tracker)

	page, total, book, err := svc.ReadPage(context.Background(), "gita", "", 9)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if page.Number != 7 || total != 7 || page.Text != "text of page 7" || book.ID != "gita" {
		t.Fatalf("page %+v total %d book %+v", page, total, book)
	}
	if len(tracker.begun) != 0 {
		t.Fatalf("read page must not track")
	}

	_, _, _, err = svc.ReadPage(context.Background(), "no-link", "", 1)
	if le, ok := apperrors.IsLoadError(err); !ok || le.Kind != apperrors.LoadMissingURL {
		t.Fatalf("missing link: %v", err)
	}
}
