// Package server serves the generated site locally with live-reload events.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/ansuz/internal/sse"
)

// NewRouter builds the preview router: the rendered site at /, rebuild
// events at /events, and a liveness probe.
func NewRouter(siteDir string, broker *sse.Broker) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	fileServer := http.FileServer(http.Dir(siteDir))
	r.Handle("/*", noCache(fileServer))

	return r
}

// noCache disables caching so a rebuilt page is always served fresh.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
