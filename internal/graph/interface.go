package graph

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

// Lookup errors.
var (
	ErrSlotNotFound  = errors.New("slot not found")
	ErrParamNotFound = errors.New("parameter not found")
)

// Graph is the main interface for building and running a module graph.
type Graph interface {
	// AddModule creates m and registers it and its parameters.
	AddModule(ctx context.Context, m module.Module) (topologystore.ModuleID, error)
	// RemoveModule unbinds every slot of the named module and releases it.
	RemoveModule(ctx context.Context, name string) error
	// Module resolves a live module by instance name.
	Module(ctx context.Context, name string) (module.Module, bool)
	// ModuleByID resolves a live module by ID. Stale IDs are not found.
	ModuleByID(ctx context.Context, id topologystore.ModuleID) (module.Module, bool)
	// Modules returns all live modules in insertion order.
	Modules(ctx context.Context) []topologystore.Entry
	// Drivers returns the modules that run once per frame.
	Drivers(ctx context.Context) []module.Driver

	// Bind connects the outbound slot from to the inbound slot to.
	Bind(ctx context.Context, from, to string) (*call.Call, error)
	// Unbind disconnects the outbound slot from.
	Unbind(ctx context.Context, from string) error
	// Connections returns every live binding.
	Connections(ctx context.Context) []topologystore.Connection

	// Param resolves a parameter by full name.
	Param(fullName string) (*param.Node, bool)
	// Params returns every parameter ordered by full name.
	Params(ctx context.Context) []*param.Node
	// SetParam parses value and assigns it to the named parameter.
	SetParam(ctx context.Context, fullName, value string) error
	// SetParamValue assigns an already typed value. String values are parsed
	// the way SetParam parses them, so enum names are accepted.
	SetParamValue(ctx context.Context, fullName string, value cty.Value) error
	// PressParam triggers a button parameter.
	PressParam(ctx context.Context, fullName string) error

	// SaveState writes the presentation state of every parameter.
	SaveState(ctx context.Context, w io.Writer) error
	// LoadState applies a presentation state document.
	LoadState(ctx context.Context, r io.Reader) (int, error)

	// Close removes every module.
	Close(ctx context.Context)
}

// Recorder observes pulls and bindings.
type Recorder interface {
	pull.Recorder
	Bound(class string)
	BindFailed(reason string)
}
