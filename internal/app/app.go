package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/flowsync/internal/config"
	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/relay"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *prometheus.Registry
	hub      *relay.Hub
	sockets  *relay.SocketServer
	handler  http.Handler
}

// NewApp is the constructor for the main application. It loads the seed
// diagram through loader and builds the hub, the socket.io server and the
// HTTP router. A seed that cannot be loaded is a fatal startup error and
// panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var paths []string
	if cfg.SeedPath != "" {
		paths = append(paths, cfg.SeedPath)
	}
	seed, err := loader.Load(ctx, paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load seed: %w", err))
	}

	g := graph.New(graph.NewIDGenerator("relay-"))
	seed.Apply(g)
	logger.Debug("Seed diagram applied.", "nodes", g.NodeCount(), "links", g.LinkCount())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hub := relay.NewHub(g, relay.NewMetrics(registry))

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: registry,
		hub:      hub,
		sockets:  relay.NewSocketServer(ctx, hub, socketOptions(cfg)),
	}
	a.handler = a.routes()
	return a
}

func socketOptions(cfg *Config) *socket.ServerOptions {
	opts := socket.DefaultServerOptions()
	if len(cfg.CORSOrigins) > 0 {
		origins := make([]any, len(cfg.CORSOrigins))
		for i, o := range cfg.CORSOrigins {
			origins[i] = o
		}
		opts.SetCors(&types.Cors{
			Origin:  origins,
			Methods: []string{http.MethodGet, http.MethodPost},
		})
	}
	return opts
}

// Handler returns the application's HTTP handler. This is primarily for testing.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Hub returns the relay hub.
func (a *App) Hub() *relay.Hub {
	return a.hub
}
