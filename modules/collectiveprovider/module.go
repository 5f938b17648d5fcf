// Package collectiveprovider provides the module that hands out the shared
// collective communicator handle through CollectiveCall.
package collectiveprovider

import (
	"context"
	"math"

	"github.com/specialistvlad/pullgridgo/calls/collective"
	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/registry"

	core "github.com/specialistvlad/pullgridgo/internal/collective"
)

// ClassName is the registered module class.
const ClassName = "CollectiveProvider"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(collective.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Provides the shared collective communicator handle.",
		Calls:       []string{collective.ClassName},
		New:         New,
	})
}

// Provider owns one reference on a collective context for its lifetime.
type Provider struct {
	module.Base

	shared   *core.Context
	groupKey *param.Node
}

// New creates an uncreated provider on the process-wide context.
func New(name string) module.Module {
	return NewWithContext(name, core.Default())
}

// NewWithContext creates an uncreated provider on c.
func NewWithContext(name string, c *core.Context) *Provider {
	p := &Provider{shared: c}
	p.Init(ClassName, name, "Provides the shared collective communicator handle.")
	return p
}

// OnCreate takes a reference on the shared context and declares the slot.
func (p *Provider) OnCreate(ctx context.Context) error {
	p.groupKey = p.AddParam(param.NewInt("groupKey", 0, 0, math.MaxInt32).
		WithDescription("Grouping key used when a requester does not name one."))
	p.AddInbound("provider", "Shared communicator handle.").
		SetCallback(collective.Class, collective.ProvideHandle, p.provide)
	p.shared.Acquire()
	return nil
}

// OnRelease drops the reference; the last owner tears the handle down.
func (p *Provider) OnRelease(ctx context.Context) {
	p.shared.Release(ctx)
}

func (p *Provider) provide(ctx context.Context, raw call.Payload) error {
	req, err := call.As[*collective.Payload](raw)
	if err != nil {
		return err
	}
	gen := p.groupKey.Observe()
	group := req.Group
	if group == collective.ProviderGroup {
		group = p.groupKey.Int()
	}
	h, err := p.shared.Provide(ctx, group)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Collective setup failed.", "module", p.Name(), "group", group, "error", err)
		return err
	}
	p.groupKey.Commit(gen)
	req.Handle = h
	return nil
}
