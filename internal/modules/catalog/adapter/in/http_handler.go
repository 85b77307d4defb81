package in

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"granth/internal/modules/catalog/dto"
	catalogin "granth/internal/modules/catalog/port/in"
	"granth/internal/platform/httpserver"
)

// HTTPHandler serves the read-only catalog under /books.
type HTTPHandler struct {
	usecase catalogin.Usecase
}

func NewHTTPHandler(usecase catalogin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Get("/{slug}", h.get)
	return r
}

func (h HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.usecase.ListBooks(r.Context(), dto.ListBooksInput{})
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, books)
}

func (h HTTPHandler) get(w http.ResponseWriter, r *http.Request) {
	book, err := h.usecase.GetBookBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, book)
}
