package httpserver

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"granth/internal/platform/identity"
)

const headerRequestID = "X-Request-ID"

// Authenticator maps a bearer token (possibly empty) to a reader.
type Authenticator func(token string) (identity.User, error)

func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				if v, err := uuid.NewV7(); err == nil {
					rid = v.String()
				} else {
					rid = uuid.NewString()
				}
			}
			w.Header().Set(headerRequestID, rid)
			r.Header.Set(headerRequestID, rid)
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func StructuredLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}
			attrs := []any{
				slog.String("request_id", r.Header.Get(headerRequestID)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if u, ok := identity.FromContext(r.Context()); ok {
				attrs = append(attrs, slog.String("user_id", u.ID))
			}
			log.Log(r.Context(), level, "http_request_finished", attrs...)
		})
	}
}

func PanicRecovery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error("http_panic_recovered",
						slog.Any("panic", v),
						slog.String("stack", string(debug.Stack())),
					)
					JSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: "internal error", Code: "internal"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves the reader for every API request; a rejected token
// ends the request with 401.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			user, err := auth(token)
			if err != nil {
				JSON(w, http.StatusUnauthorized, ErrorEnvelope{Error: "unauthorized", Code: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), user)))
		})
	}
}
