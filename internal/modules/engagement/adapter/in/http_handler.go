package in

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"granth/internal/modules/engagement/dto"
	engagementin "granth/internal/modules/engagement/port/in"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/httpserver"
	"granth/internal/platform/identity"
)

// HTTPHandler exposes the reader's engagement and progress. The reader comes
// from the request context set by the authentication middleware.
type HTTPHandler struct {
	usecase engagementin.Usecase
}

func NewHTTPHandler(usecase engagementin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/profile", h.profile)
	r.Post("/engagement", h.recordEngagement)
	r.Route("/progress", func(r chi.Router) {
		r.Get("/", h.listProgress)
		r.Get("/recent", h.listRecent)
		r.Put("/{bookID}", h.updateProgress)
		r.Post("/{bookID}/complete", h.markCompleted)
	})
	return r
}

type engagementRequest struct {
	BookID  string `json:"book_id"`
	Page    int    `json:"page"`
	Seconds int    `json:"seconds"`
}

type progressRequest struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

func (h HTTPHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(w, r)
	if !ok {
		return
	}
	out, err := h.usecase.Profile(r.Context(), user.ID)
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, out)
}

func (h HTTPHandler) recordEngagement(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(w, r)
	if !ok {
		return
	}
	var req engagementRequest
	if err := httpserver.Decode(r, &req); err != nil {
		httpserver.Error(w, err)
		return
	}
	out, err := h.usecase.RecordEngagement(r.Context(), dto.RecordEngagementInput{
		UserID:  user.ID,
		BookID:  req.BookID,
		Page:    req.Page,
		Seconds: req.Seconds,
	})
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, out)
}

func (h HTTPHandler) listProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(w, r)
	if !ok {
		return
	}
	var (
		out []dto.ProgressOutput
		err error
	)
	switch state := r.URL.Query().Get("state"); state {
	case "", "in-progress":
		out, err = h.usecase.ListInProgress(r.Context(), user.ID)
	case "completed":
		out, err = h.usecase.ListCompleted(r.Context(), user.ID)
	default:
		err = fmt.Errorf("%w: unknown state %q", apperrors.ErrInvalidInput, state)
	}
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, out)
}

func (h HTTPHandler) listRecent(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(w, r)
	if !ok {
		return
	}
	out, err := h.usecase.ListRecent(r.Context(), user.ID)
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, out)
}

func (h HTTPHandler) updateProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(w, r)
	if !ok {
		return
	}
	var req progressRequest
	if err := httpserver.Decode(r, &req); err != nil {
		httpserver.Error(w, err)
		return
	}
	out, err := h.usecase.UpdateProgress(r.Context(), dto.UpdateProgressInput{
		UserID:      user.ID,
		BookID:      chi.URLParam(r, "bookID"),
		CurrentPage: req.CurrentPage,
		TotalPages:  req.TotalPages,
	})
	if err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.OK(w, out)
}

func (h HTTPHandler) markCompleted(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(w, r)
	if !ok {
		return
	}
	if err := h.usecase.MarkCompleted(r.Context(), dto.BookRefInput{UserID: user.ID, BookID: chi.URLParam(r, "bookID")}); err != nil {
		httpserver.Error(w, err)
		return
	}
	httpserver.NoContent(w)
}

func userFrom(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	user, ok := identity.FromContext(r.Context())
	if !ok {
		httpserver.JSON(w, http.StatusUnauthorized, httpserver.ErrorEnvelope{Error: "unauthorized", Code: "unauthorized"})
	}
	return user, ok
}
