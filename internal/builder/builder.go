package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/graph"
	"github.com/specialistvlad/pullgridgo/internal/registry"
)

// Builder populates a graph from config models.
type Builder struct {
	registry *registry.Registry
	graph    graph.Graph
}

// New creates a builder creating modules from r inside g.
func New(r *registry.Registry, g graph.Graph) *Builder {
	return &Builder{registry: r, graph: g}
}

// Build creates the modules of model, applies parameter values and
// overrides, and binds the connections.
func (b *Builder) Build(ctx context.Context, model *config.Model, overrides []config.Override) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "modules", len(model.Modules), "connections", len(model.Connections), "overrides", len(overrides))

	var errs *multierror.Error
	created := b.createModules(ctx, model, &errs)
	logger.Debug("Build: module creation complete.", "created", len(created))

	b.applyParams(ctx, created, &errs)
	for _, o := range overrides {
		if err := b.graph.SetParam(ctx, o.Param, o.Value); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("override %s from %s: %w", o, o.Origin, err))
		}
	}
	logger.Debug("Build: parameter values applied.")

	bound := 0
	for _, c := range model.Connections {
		if _, err := b.graph.Bind(ctx, c.From, c.To); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("connection %s -> %s (%s): %w", c.From, c.To, c.Range, err))
			continue
		}
		bound++
	}
	logger.Debug("Build: connections bound.", "bound", bound)

	if err := errs.ErrorOrNil(); err != nil {
		logger.Error("Build: graph construction failed.", "problems", len(errs.Errors))
		return err
	}
	logger.Info("Build: graph construction successful.", "modules", len(created), "connections", bound)
	return nil
}

func (b *Builder) createModules(ctx context.Context, model *config.Model, errs **multierror.Error) []*config.Module {
	var created []*config.Module
	for _, decl := range model.Modules {
		m, err := b.registry.NewModule(decl.Class, decl.Name)
		if err != nil {
			*errs = multierror.Append(*errs, fmt.Errorf("module '%s' (%s): %w", decl.Name, decl.Range, err))
			continue
		}
		if _, err := b.graph.AddModule(ctx, m); err != nil {
			*errs = multierror.Append(*errs, fmt.Errorf("module '%s' (%s): %w", decl.Name, decl.Range, err))
			continue
		}
		created = append(created, decl)
	}
	return created
}

func (b *Builder) applyParams(ctx context.Context, modules []*config.Module, errs **multierror.Error) {
	for _, decl := range modules {
		names := make([]string, 0, len(decl.Params))
		for name := range decl.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fullName := decl.Name + "/" + name
			if err := b.graph.SetParamValue(ctx, fullName, decl.Params[name]); err != nil {
				*errs = multierror.Append(*errs, fmt.Errorf("module '%s' (%s): %w", decl.Name, decl.Range, err))
			}
		}
	}
}
