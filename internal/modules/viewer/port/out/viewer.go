package out

import (
	"context"

	"granth/internal/modules/viewer/domain"
)

// Document is a loaded PDF. Pages are numbered from 1.
type Document interface {
	PageCount() int
	PageText(page int) (string, error)
}

// DocumentLoader fetches and parses a document. progress receives
// non-decreasing percentages in [0, 100] and may be nil.
type DocumentLoader interface {
	Load(ctx context.Context, url string, progress func(percent int)) (Document, error)
}

type BookResolver interface {
	Resolve(ctx context.Context, slug string) (domain.BookRef, error)
}

// ReadingTracker starts engagement tracking for an opened book.
type ReadingTracker interface {
	Begin(ctx context.Context, bookID string, page int) (TrackingSession, error)
}

// TrackingSession must not block; persistence happens elsewhere.
type TrackingSession interface {
	PageChanged(page, totalPages int)
	End(page int)
}
