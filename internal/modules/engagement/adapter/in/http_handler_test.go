package in_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"granth/internal/modules/engagement/adapter/in"
	"granth/internal/modules/engagement/dto"
	engagementin "granth/internal/modules/engagement/port/in"
	apperrors "granth/internal/platform/errors"
	"granth/internal/platform/identity"
)

type stubUsecase struct {
	engagementin.Usecase
	recorded  dto.RecordEngagementInput
	progress  dto.UpdateProgressInput
	completed dto.BookRefInput
	listed    string
}

func (s *stubUsecase) RecordEngagement(_ context.Context, input dto.RecordEngagementInput) (dto.EngagementOutput, error) {
	s.recorded = input
	return dto.EngagementOutput{Recorded: true, BookID: input.BookID, Page: input.Page, Seconds: input.Seconds, PointsEarned: 2}, nil
}

func (s *stubUsecase) UpdateProgress(_ context.Context, input dto.UpdateProgressInput) (dto.ProgressOutput, error) {
	s.progress = input
	if input.TotalPages <= 0 {
		return dto.ProgressOutput{}, apperrors.ErrInvalidInput
	}
	return dto.ProgressOutput{BookID: input.BookID, CurrentPage: input.CurrentPage, TotalPages: input.TotalPages}, nil
}

func (s *stubUsecase) MarkCompleted(_ context.Context, input dto.BookRefInput) error {
	s.completed = input
	return nil
}

func (s *stubUsecase) ListInProgress(context.Context, string) ([]dto.ProgressOutput, error) {
	s.listed = "in-progress"
	return []dto.ProgressOutput{{BookID: "gita"}}, nil
}

func (s *stubUsecase) ListCompleted(context.Context, string) ([]dto.ProgressOutput, error) {
	s.listed = "completed"
	return []dto.ProgressOutput{}, nil
}

func (s *stubUsecase) Profile(_ context.Context, userID string) (dto.ProfileOutput, error) {
	return dto.ProfileOutput{UserID: userID, TotalPoints: 12}, nil
}

func serve(t *testing.T, h http.Handler, method, target, body string, user *identity.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(identity.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEngagementRoutes(t *testing.T) {
	t.Parallel()
	uc := &stubUsecase{}
	h := in.NewHTTPHandler(uc).Routes()
	reader := &identity.User{ID: "reader-1"}

	rec := serve(t, h, http.MethodGet, "/profile", "", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		Data dto.ProfileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "reader-1", profile.Data.UserID)
	require.Equal(t, 12, profile.Data.TotalPoints)

	rec = serve(t, h, http.MethodPost, "/engagement", `{"book_id":"gita","page":4,"seconds":45}`, reader)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, dto.RecordEngagementInput{UserID: "reader-1", BookID: "gita", Page: 4, Seconds: 45}, uc.recorded)

	rec = serve(t, h, http.MethodPut, "/progress/gita", `{"current_page":5,"total_pages":10}`, reader)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gita", uc.progress.BookID)
	require.Equal(t, "reader-1", uc.progress.UserID)

	rec = serve(t, h, http.MethodPost, "/progress/gita/complete", "", reader)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, dto.BookRefInput{UserID: "reader-1", BookID: "gita"}, uc.completed)

	rec = serve(t, h, http.MethodGet, "/progress?state=completed", "", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "completed", uc.listed)

	rec = serve(t, h, http.MethodGet, "/progress", "", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "in-progress", uc.listed)
}

func TestEngagementRoutesRejectBadInput(t *testing.T) {
	t.Parallel()
	h := in.NewHTTPHandler(&stubUsecase{}).Routes()
	reader := &identity.User{ID: "reader-1"}

	rec := serve(t, h, http.MethodGet, "/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h, http.MethodGet, "/progress?state=abandoned", "", reader)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodPost, "/engagement", `{"book_id":"gita","minutes":3}`, reader)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodPut, "/progress/gita", `{"current_page":5,"total_pages":0}`, reader)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
