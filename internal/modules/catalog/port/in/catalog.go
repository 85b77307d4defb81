package in

import (
	"context"

	"granth/internal/modules/catalog/dto"
)

type Usecase interface {
	AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error)
	GetBookBySlug(ctx context.Context, slug string) (dto.BookOutput, error)
	ListBooks(ctx context.Context, input dto.ListBooksInput) ([]dto.BookOutput, error)
	SetActive(ctx context.Context, input dto.SetActiveInput) (dto.BookOutput, error)
}
