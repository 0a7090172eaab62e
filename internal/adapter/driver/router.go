package driver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the HTTP handlers served by the viewer.
type Handlers struct {
	Playlists *PlaylistHTTPHandler
	Channels  *ChannelHTTPHandler
	Health    *HealthHTTPHandler
}

// NewRouter wires every endpoint behind the shared middleware stack.
func NewRouter(h Handlers, logger *slog.Logger, requestTimeout time.Duration) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Method(http.MethodGet, "/api/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	h.Playlists.Routes(r)
	h.Channels.Routes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
