package usecase

import (
	"context"

	"granth/internal/modules/viewer/dto"
	viewerin "granth/internal/modules/viewer/port/in"
	"granth/internal/modules/viewer/service"
)

type Interactor struct {
	svc *service.ViewerService
}

func NewInteractor(svc *service.ViewerService) viewerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Open(ctx context.Context, input dto.OpenInput) (viewerin.Reader, error) {
	sess, err := i.svc.Open(ctx, input.BookSlug, input.URL, input.Page)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (i *Interactor) Resolve(ctx context.Context, input dto.OpenInput) (dto.ResolveOutput, error) {
	book, src, err := i.svc.Resolve(ctx, input.BookSlug, input.URL)
	if err != nil {
		return dto.ResolveOutput{}, err
	}
	return dto.ResolveOutput{BookID: book.ID, Title: book.Title, SourceURL: book.URL, URL: src}, nil
}

func (i *Interactor) ReadPage(ctx context.Context, input dto.ReadPageInput) (dto.PageOutput, error) {
	page, total, book, err := i.svc.ReadPage(ctx, input.BookSlug, input.URL, input.Page)
	if err != nil {
		return dto.PageOutput{}, err
	}
	return dto.PageOutput{BookID: book.ID, Title: book.Title, Page: page.Number, PageCount: total, Text: page.Text}, nil
}
