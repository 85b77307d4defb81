package httpserver_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/httpserver"
	"granth/internal/platform/identity"
	"granth/internal/platform/logging"
)

func tokenAuth(token string) (identity.User, error) {
	if token != "letmein" {
		return identity.User{}, errors.New("bad token")
	}
	return identity.User{ID: "reader-1"}, nil
}

func testRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		u, _ := identity.FromContext(r.Context())
		httpserver.OK(w, u.ID)
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		httpserver.Error(w, fmt.Errorf("book gita: %w", apperrors.ErrNotFound))
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := httpserver.Decode(r, &body); err != nil {
			httpserver.Error(w, err)
			return
		}
		httpserver.OK(w, body.Name)
	})
	return r
}

func TestServerRoutesAndMiddleware(t *testing.T) {
	t.Parallel()
	srv := httpserver.New("127.0.0.1:0", logging.Discard(), tokenAuth, httpserver.Mount{Prefix: "/test", Routes: testRoutes()})
	h := srv.Handler()

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(http.MethodGet, "/api/v1/test/whoami", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(http.MethodGet, "/api/v1/test/whoami", "letmein", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":"reader-1"}`, rec.Body.String())

	rec = do(http.MethodGet, "/api/v1/test/missing", "letmein", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"not_found"`)

	rec = do(http.MethodGet, "/api/v1/test/boom", "letmein", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(http.MethodPost, "/api/v1/test/echo", "letmein", `{"name":"gita","extra":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPost, "/api/v1/test/echo", "letmein", `{"name":"gita"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":"gita"}`, rec.Body.String())
}
