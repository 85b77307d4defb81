package in

import (
	"context"

	"granth/internal/modules/viewer/dto"
	viewerin "granth/internal/modules/viewer/port/in"
)

type TUIHandler struct {
	usecase viewerin.Usecase
}

func NewTUIHandler(usecase viewerin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Open(ctx context.Context, bookSlug, url string, page int) (viewerin.Reader, error) {
	return h.usecase.Open(ctx, dto.OpenInput{BookSlug: bookSlug, URL: url, Page: page})
}
