package in

import (
	"context"

	"granth/internal/modules/viewer/dto"
	viewerin "granth/internal/modules/viewer/port/in"
)

type CLIHandler struct {
	usecase viewerin.Usecase
}

func NewCLIHandler(usecase viewerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Resolve(ctx context.Context, bookSlug, url string) (dto.ResolveOutput, error) {
	return h.usecase.Resolve(ctx, dto.OpenInput{BookSlug: bookSlug, URL: url})
}

func (h CLIHandler) ReadPage(ctx context.Context, bookSlug, url string, page int) (dto.PageOutput, error) {
	return h.usecase.ReadPage(ctx, dto.ReadPageInput{BookSlug: bookSlug, URL: url, Page: page})
}
