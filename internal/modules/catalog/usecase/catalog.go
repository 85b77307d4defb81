package usecase

import (
	"context"

	"granth/internal/modules/catalog/domain"
	"granth/internal/modules/catalog/dto"
	catalogin "granth/internal/modules/catalog/port/in"
	"granth/internal/modules/catalog/service"
)

type Interactor struct {
	svc *service.BookService
}

func NewInteractor(svc *service.BookService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error) {
	book, err := i.svc.AddBook(ctx, domain.Book{
		Slug:     input.Slug,
		Title:    input.Title,
		Author:   input.Author,
		PDFURL:   input.PDFURL,
		Pages:    input.Pages,
		Language: input.Language,
	})
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) GetBookBySlug(ctx context.Context, slug string) (dto.BookOutput, error) {
	book, err := i.svc.GetBookBySlug(ctx, slug)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func (i *Interactor) ListBooks(ctx context.Context, input dto.ListBooksInput) ([]dto.BookOutput, error) {
	books, err := i.svc.ListBooks(ctx, input.IncludeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BookOutput, 0, len(books))
	for _, book := range books {
		out = append(out, toOutput(book))
	}
	return out, nil
}

func (i *Interactor) SetActive(ctx context.Context, input dto.SetActiveInput) (dto.BookOutput, error) {
	book, err := i.svc.SetActive(ctx, input.Slug, input.Active)
	if err != nil {
		return dto.BookOutput{}, err
	}
	return toOutput(book), nil
}

func toOutput(book domain.Book) dto.BookOutput {
	return dto.BookOutput{
		Slug:     book.Slug,
		Title:    book.Title,
		Author:   book.Author,
		PDFURL:   book.PDFURL,
		Pages:    book.Pages,
		Language: book.Language,
		Active:   book.Active,
	}
}
