package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/flowsync/internal/dag"
	"github.com/specialistvlad/flowsync/internal/dotexport"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/relay"
)

// routes builds the relay's HTTP surface. The socket.io transport is mounted
// outside the REST group so upgrades reach it unwrapped.
func (a *App) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Handle("/socket.io/*", a.sockets.Handler())

	router.Group(func(r chi.Router) {
		r.Use(requestLogger(a.logger))
		if len(a.config.CORSOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: a.config.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
				MaxAge:         300,
			}))
		}

		r.Get("/health", a.healthHandler)
		r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		r.Get("/diagram.json", a.diagramJSONHandler)
		r.Get("/diagram.dot", a.diagramDOTHandler)
		r.Get("/diagram/cycles", a.cyclesHandler)

		if a.config.StaticDir != "" {
			r.Handle("/*", http.FileServer(http.Dir(a.config.StaticDir)))
		}
	})

	return router
}

func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request served.",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// snapshot reads the authoritative diagram and answers 503 when the hub is
// not running.
func (a *App) snapshot(w http.ResponseWriter, r *http.Request) (graph.Snapshot, bool) {
	s, err := a.hub.Snapshot(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, relay.ErrStopped) {
			status = http.StatusServiceUnavailable
		}
		a.logger.Warn("Failed to read diagram snapshot.", "error", err)
		http.Error(w, err.Error(), status)
		return graph.Snapshot{}, false
	}
	return s, true
}

func (a *App) diagramJSONHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, s)
}

func (a *App) diagramDOTHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	out, err := dotexport.Render(s)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

type cyclesResponse struct {
	Acyclic bool   `json:"acyclic"`
	Error   string `json:"error,omitempty"`
}

// cyclesHandler reports whether the authoritative diagram contains a cycle.
// The relay does not enforce acyclicity, so concurrent edits can produce one.
func (a *App) cyclesHandler(w http.ResponseWriter, r *http.Request) {
	s, ok := a.snapshot(w, r)
	if !ok {
		return
	}
	g := graph.New(nil)
	g.Restore(s)

	resp := cyclesResponse{Acyclic: true}
	if err := dag.DetectCycles(g); err != nil {
		resp = cyclesResponse{Acyclic: false, Error: err.Error()}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
