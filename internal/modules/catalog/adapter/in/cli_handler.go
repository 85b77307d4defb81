package in

import (
	"context"

	"granth/internal/modules/catalog/dto"
	catalogin "granth/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddBook(ctx context.Context, input dto.AddBookInput) (dto.BookOutput, error) {
	return h.usecase.AddBook(ctx, input)
}

func (h CLIHandler) ShowBook(ctx context.Context, slug string) (dto.BookOutput, error) {
	return h.usecase.GetBookBySlug(ctx, slug)
}

func (h CLIHandler) ListBooks(ctx context.Context, includeInactive bool) ([]dto.BookOutput, error) {
	return h.usecase.ListBooks(ctx, dto.ListBooksInput{IncludeInactive: includeInactive})
}

func (h CLIHandler) SetActive(ctx context.Context, slug string, active bool) (dto.BookOutput, error) {
	return h.usecase.SetActive(ctx, dto.SetActiveInput{Slug: slug, Active: active})
}
