// Package ops serves the operational HTTP surface: a liveness endpoint
// and the Prometheus metrics. The listener is optional and disabled by
// default; container deployments enable it with OPS_LISTEN.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/craftd/craftd/internal/metrics"
)

// ReadyFunc reports whether the bot session is connected to the gateway.
type ReadyFunc func() bool

// Server is the ops HTTP listener.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// NewServer builds a Server bound to addr. ready gates the /healthz
// response; a nil ready always reports healthy.
func NewServer(addr string, ready ReadyFunc, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: logger,
	}
}

// Start serves until Shutdown is called. A closed server returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("ops listener starting")
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
