package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/pullgridgo/internal/builder"
	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/envparams"
)

// Build loads the graph description and populates the graph. Parameter
// values apply in the order: description, environment, command line.
func (app *App) Build() error {
	logger := ctxlog.FromContext(app.ctx)

	var paths []string
	if app.config.GraphPath != "" {
		paths = append(paths, app.config.GraphPath)
	}
	if app.config.ModulesPath != "" {
		paths = append(paths, app.config.ModulesPath)
	}
	model, err := app.loader.Load(app.ctx, paths...)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	logger.Debug("Graph description loaded.", "modules", len(model.Modules), "connections", len(model.Connections))

	envOverrides, err := envparams.FromEnviron(app.environ)
	if err != nil {
		logger.Warn("Ignoring malformed parameter variables.", "error", err)
	}
	overrides := make([]config.Override, 0, len(envOverrides)+len(app.config.Overrides))
	overrides = append(overrides, envOverrides...)
	overrides = append(overrides, app.config.Overrides...)

	if err := builder.New(app.registry, app.graph).Build(app.ctx, model, overrides); err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	return app.loadState()
}

// loadState applies the saved presentation state. A missing file is not an
// error and rejected entries are only logged.
func (app *App) loadState() error {
	if app.config.StatePath == "" {
		return nil
	}
	logger := ctxlog.FromContext(app.ctx).With("path", app.config.StatePath)

	f, err := os.Open(app.config.StatePath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("No saved presentation state.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	defer f.Close()

	applied, err := app.graph.LoadState(app.ctx, f)
	if err != nil {
		logger.Warn("Some presentation state entries were rejected.", "applied", applied, "error", err)
		return nil
	}
	logger.Info("Presentation state loaded.", "applied", applied)
	return nil
}

// saveState writes the presentation state next to its destination first and
// renames it into place.
func (app *App) saveState() error {
	if app.config.StatePath == "" {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(app.config.StatePath), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := app.graph.SaveState(app.ctx, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	if err := os.Rename(tmp.Name(), app.config.StatePath); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	ctxlog.FromContext(app.ctx).Info("Presentation state saved.", "path", app.config.StatePath)
	return nil
}
