// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateModule converts a module block into the agnostic model. Parameter
// attributes must be constant expressions.
func (l *Loader) translateModule(ctx context.Context, file string, b *moduleBlock) (*config.Module, error) {
	logger := ctxlog.FromContext(ctx).With("module", b.Name, "class", b.Class)
	logger.Debug("Translating HCL module to internal config model.")

	m := &config.Module{
		Name:   b.Name,
		Class:  b.Class,
		Params: make(map[string]cty.Value),
		Range:  file,
	}
	if b.Params == nil || b.Params.Body == nil {
		return m, nil
	}

	attrs, diags := b.Params.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("module '%s' params: %w", b.Name, diags)
	}
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("module '%s' param '%s': %w", b.Name, name, diags)
		}
		m.Params[name] = v
		logger.Debug("Parameter value decoded.", "param", name, "type", v.Type().FriendlyName())
	}
	return m, nil
}

// translateConnection converts a connect block into the agnostic model.
func (l *Loader) translateConnection(file string, b *connectBlock) *config.Connection {
	return &config.Connection{From: b.From, To: b.To, Range: file}
}
