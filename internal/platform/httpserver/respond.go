package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "granth/internal/platform/errors"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type ErrorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessEnvelope{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error maps the repository's sentinel errors onto HTTP statuses.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorEnvelope{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		JSON(w, http.StatusBadRequest, ErrorEnvelope{Error: err.Error(), Code: "invalid_input"})
	default:
		JSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: "internal error", Code: "internal"})
	}
}

// Decode reads a JSON body, rejecting unknown fields.
func Decode(r *http.Request, into any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return errors.Join(apperrors.ErrInvalidInput, err)
	}
	return nil
}
