// Package clusterinfo provides a driver module that reports the collective
// handle it obtains from a provider.
package clusterinfo

import (
	"context"
	"math"
	"sync"

	"github.com/specialistvlad/pullgridgo/calls/collective"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/registry"

	core "github.com/specialistvlad/pullgridgo/internal/collective"
)

// ClassName is the registered module class.
const ClassName = "ClusterInfo"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the module class and its call class.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCall(collective.Class)
	r.RegisterModule(&registry.ModuleClass{
		Name:        ClassName,
		Description: "Logs rank and size of the collective communicator.",
		Calls:       []string{collective.ClassName},
		New:         New,
	})
}

// Info requests the handle every frame and logs when it changes.
type Info struct {
	module.Base

	groupKey *param.Node
	provider *module.Outbound

	mu     sync.Mutex
	handle *core.Handle
}

// New creates an uncreated info module.
func New(name string) module.Module {
	i := &Info{}
	i.Init(ClassName, name, "Logs rank and size of the collective communicator.")
	return i
}

// OnCreate declares the parameter and the provider slot.
func (i *Info) OnCreate(ctx context.Context) error {
	i.groupKey = i.AddParam(param.NewInt("groupKey", collective.ProviderGroup, collective.ProviderGroup, math.MaxInt32).
		WithDescription("Grouping key to request; -1 uses the provider's key."))
	i.provider = i.AddOutbound("collective", "Collective handle provider.").
		SetCompatibleCall(collective.ClassName, "^1")
	return nil
}

// OnRelease forgets the handle.
func (i *Info) OnRelease(ctx context.Context) {
	i.mu.Lock()
	i.handle = nil
	i.mu.Unlock()
}

// Handle returns the last handle obtained, or nil.
func (i *Info) Handle() *core.Handle {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.handle
}

// Frame requests the handle. A changed groupKey stays dirty until a request
// with it succeeds.
func (i *Info) Frame(ctx context.Context, frame int) error {
	gen := i.groupKey.Observe()
	h, err := collective.Request(ctx, i.provider, i.groupKey.Int())
	if err != nil {
		return err
	}
	i.groupKey.Commit(gen)

	i.mu.Lock()
	changed := i.handle == nil || i.handle.ID != h.ID
	i.handle = h
	i.mu.Unlock()

	if changed {
		ctxlog.FromContext(ctx).Info("Collective handle obtained.",
			"module", i.Name(), "id", h.ID, "group", h.Group, "rank", h.Rank, "size", h.Size)
	}
	return nil
}
