package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"granth/internal/modules/viewer/domain"
	viewerout "granth/internal/modules/viewer/port/out"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/slug"
)

const defaultLoadTimeout = 2 * time.Minute

type Config struct {
	Gestures    domain.GestureConfig
	LoadTimeout time.Duration
}

type ViewerService struct {
	cfg     Config
	books   viewerout.BookResolver
	loader  viewerout.DocumentLoader
	tracker viewerout.ReadingTracker
	log     *slog.Logger
}

// NewViewerService wires the viewer. books and tracker may be nil: without a
// resolver only direct URLs open, without a tracker reading is not recorded.
func NewViewerService(cfg Config, books viewerout.BookResolver, loader viewerout.DocumentLoader, tracker viewerout.ReadingTracker, log *slog.Logger) *ViewerService {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}
	return &ViewerService{cfg: cfg, books: books, loader: loader, tracker: tracker, log: log}
}

// Resolve finds the book and the direct-download URL the loader will fetch.
func (s *ViewerService) Resolve(ctx context.Context, bookSlug, rawURL string) (domain.BookRef, string, error) {
	bookSlug = strings.TrimSpace(bookSlug)
	rawURL = strings.TrimSpace(rawURL)
	var book domain.BookRef
	switch {
	case bookSlug != "":
		if s.books == nil {
			return domain.BookRef{}, "", fmt.Errorf("%w: no catalog configured to look up %q", apperrors.ErrInvalidInput, bookSlug)
		}
		found, err := s.books.Resolve(ctx, bookSlug)
		if err != nil {
			return domain.BookRef{}, "", fmt.Errorf("resolve book %s: %w", bookSlug, err)
		}
		book = found
	case rawURL != "":
		name := sourceName(rawURL)
		book = domain.BookRef{ID: slug.Make(strings.TrimSuffix(name, path.Ext(name))), Title: name}
	default:
		return domain.BookRef{}, "", fmt.Errorf("%w: a book slug or url is required", apperrors.ErrInvalidInput)
	}
	if rawURL != "" {
		book.URL = rawURL
	}
	return book, domain.ResolveSourceURL(book.URL), nil
}

// Open resolves the book and returns a session that has not started loading.
func (s *ViewerService) Open(ctx context.Context, bookSlug, rawURL string, page int) (*Session, error) {
	book, src, err := s.Resolve(ctx, bookSlug, rawURL)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	var tracking viewerout.TrackingSession
	if s.tracker != nil {
		tracking, err = s.tracker.Begin(ctx, book.ID, page)
		if err != nil {
			s.log.Warn("reading_tracking_unavailable", slog.String("book_id", book.ID), slog.Any("error", err))
			tracking = nil
		}
	}
	return newSession(book, src, page, s.cfg.Gestures, s.loader, s.cfg.LoadTimeout, tracking, s.log), nil
}

// ReadPage loads the document synchronously and returns one page's text.
// Nothing is tracked.
func (s *ViewerService) ReadPage(ctx context.Context, bookSlug, rawURL string, page int) (domain.Page, int, domain.BookRef, error) {
	book, src, err := s.Resolve(ctx, bookSlug, rawURL)
	if err != nil {
		return domain.Page{}, 0, domain.BookRef{}, err
	}
	sess := newSession(book, src, max(page, 1), s.cfg.Gestures, s.loader, s.cfg.LoadTimeout, nil, s.log)
	defer sess.Close()

	state := sess.FinishLoad(sess.Load(ctx, nil))
	if sess.loadErr != nil {
		return domain.Page{}, 0, book, sess.loadErr
	}
	text, err := sess.PageText()
	if err != nil {
		return domain.Page{}, state.PageCount, book, err
	}
	return domain.Page{Number: state.Page, Text: text}, state.PageCount, book, nil
}

func sourceName(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
	}
	return raw
}
