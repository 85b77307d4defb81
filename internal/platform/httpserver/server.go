// Package httpserver hosts the JSON API served by `granth serve`.
//
// Module handlers expose Routes() and are mounted under /api/v1. The
// middleware chain tags every request with an id, logs it, recovers panics
// and resolves the calling reader.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	requestTimeout    = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Mount is one module's route group.
type Mount struct {
	Prefix string
	Routes http.Handler
}

type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

func New(addr string, log *slog.Logger, auth Authenticator, mounts ...Mount) *Server {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(StructuredLogger(log))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(PanicRecovery(log))
	r.Use(chimw.CleanPath)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(Authenticate(auth))
		for _, m := range mounts {
			api.Mount(m.Prefix, m.Routes)
		}
	})

	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("server_stopping")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
