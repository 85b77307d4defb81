package out

import (
	"context"

	catalogin "granth/internal/modules/catalog/port/in"
	"granth/internal/modules/viewer/domain"
	viewerout "granth/internal/modules/viewer/port/out"
)

type CatalogResolver struct {
	catalog catalogin.Usecase
}

func NewCatalogResolver(catalog catalogin.Usecase) viewerout.BookResolver {
	return &CatalogResolver{catalog: catalog}
}

func (a *CatalogResolver) Resolve(ctx context.Context, slug string) (domain.BookRef, error) {
	book, err := a.catalog.GetBookBySlug(ctx, slug)
	if err != nil {
		return domain.BookRef{}, err
	}
	return domain.BookRef{
		ID:    book.Slug,
		Title: book.Title,
		URL:   book.PDFURL,
		Pages: book.Pages,
	}, nil
}
