// Package server exposes a docdb store over HTTP for development use.
package server

import (
	"net/http"

	"github.com/maruel/docdb"
	"github.com/maruel/docdb/internal/server/ratelimit"
)

// Config tunes the dev server surface.
type Config struct {
	Version string

	// EnableDump exposes GET /api/v1/dump.
	EnableDump bool
	// AuthToken, when set, is required as a bearer token on the
	// administrative endpoints (dump, export, import).
	AuthToken string
	// Limiter rate-limits per client IP when non-nil.
	Limiter *ratelimit.Limiter
}

// NewRouter creates the HTTP handler. The namespace path segment "-" maps
// to the empty namespace.
func NewRouter(store *docdb.Store, cfg *Config) http.Handler {
	h := &handlers{store: store, version: cfg.Version}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.health)

	mux.HandleFunc("POST /api/v1/c/{namespace}/{collection}/save", h.save)
	mux.HandleFunc("POST /api/v1/c/{namespace}/{collection}/load", h.load)
	mux.HandleFunc("POST /api/v1/c/{namespace}/{collection}/list", h.list)
	mux.HandleFunc("POST /api/v1/c/{namespace}/{collection}/remove", h.remove)
	mux.HandleFunc("GET /api/v1/c/{namespace}/{collection}/records/{id}", h.loadByID)

	admin := func(fn http.HandlerFunc) http.Handler {
		return requireToken(cfg.AuthToken, fn)
	}
	if cfg.EnableDump {
		mux.Handle("GET /api/v1/dump", admin(h.dump))
	}
	mux.Handle("GET /api/v1/export", admin(h.export))
	mux.Handle("POST /api/v1/import", admin(h.importSnapshot))

	var handler http.Handler = mux
	if cfg.Limiter != nil {
		handler = rateLimit(cfg.Limiter, handler)
	}
	return logRequests(handler)
}
