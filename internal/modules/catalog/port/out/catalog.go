package out

import (
	"context"

	"granth/internal/modules/catalog/domain"
)

type BookStore interface {
	Save(ctx context.Context, book domain.Book) error
	FindBySlug(ctx context.Context, slug string) (domain.Book, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Book, error)
}

// BookCache fronts the store for slug lookups. A miss is (zero, false, nil).
type BookCache interface {
	Get(ctx context.Context, slug string) (domain.Book, bool, error)
	Put(ctx context.Context, book domain.Book) error
	Invalidate(ctx context.Context, slug string) error
}
