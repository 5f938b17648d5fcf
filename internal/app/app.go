package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/graph"
	"github.com/specialistvlad/pullgridgo/internal/inmemorystore"
	"github.com/specialistvlad/pullgridgo/internal/inmemorytopology"
	"github.com/specialistvlad/pullgridgo/internal/metrics"
	"github.com/specialistvlad/pullgridgo/internal/registry"
	"github.com/specialistvlad/pullgridgo/internal/remote"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	converter  config.Converter
	registry   *registry.Registry
	metrics    *metrics.Metrics
	graph      *graph.Manager
	environ    []string
	httpServer *http.Server
	remote     *remote.Client
	closed     bool
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics. It panics if the compiled-in modules do not validate.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, conv config.Converter, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		// This is a programmer error, so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	m := metrics.New()
	return &App{
		ctx:       ctx,
		outW:      outW,
		logger:    logger,
		config:    cfg,
		loader:    loader,
		converter: conv,
		registry:  reg,
		metrics:   m,
		graph:     graph.New(inmemorytopology.New(), inmemorystore.New(), graph.WithRecorder(m)),
		environ:   os.Environ(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Graph returns the application's module graph.
func (a *App) Graph() *graph.Manager {
	return a.graph
}

// Metrics returns the application's metrics.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}
