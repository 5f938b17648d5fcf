package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/dag"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/nodeid"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/paramstore"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

// Manager provides a high-level, thread-safe interface to the module graph
// by composing and orchestrating lower-level storage backends.
type Manager struct {
	topology topologystore.Store
	params   paramstore.Store
	recorder Recorder
	// deps has an edge from producer to consumer for every binding.
	deps *dag.Graph

	mu sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder attaches a Recorder that observes bindings and, through the
// creation context, every producer of the graph's modules.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// New creates a new graph manager.
func New(ts topologystore.Store, ps paramstore.Store, opts ...Option) *Manager {
	m := &Manager{
		topology: ts,
		params:   ps,
		recorder: nopRecorder{},
		deps:     dag.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Graph = (*Manager)(nil)

// AddModule creates m, injects the parameter lookup and registers the
// module and its parameters. A failed create leaves the graph unchanged.
func (m *Manager) AddModule(ctx context.Context, mod module.Module) (topologystore.ModuleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := mod.Core()
	logger := ctxlog.FromContext(ctx).With("module", b.Name(), "class", b.Class())

	if err := nodeid.ValidateSegment(b.Name()); err != nil {
		return 0, fmt.Errorf("invalid module name: %w", err)
	}
	if _, exists := m.topology.Lookup(ctx, b.Name()); exists {
		return 0, fmt.Errorf("%w: '%s'", topologystore.ErrDuplicateModule, b.Name())
	}

	b.SetLookup(m)
	createCtx := pull.ContextWithRecorder(ctxlog.WithLogger(ctx, logger), m.recorder)
	if err := module.Create(createCtx, mod); err != nil {
		logger.Error("Module creation failed.", "error", err)
		return 0, fmt.Errorf("create module '%s': %w", b.Name(), err)
	}

	var added []string
	rollback := func() {
		for _, name := range added {
			m.params.Remove(ctx, name)
		}
		module.Release(ctx, mod)
	}
	for _, p := range b.Params() {
		if err := m.params.Add(ctx, p); err != nil {
			rollback()
			return 0, err
		}
		added = append(added, p.FullName())
	}

	id, err := m.topology.AddModule(ctx, mod)
	if err != nil {
		rollback()
		return 0, err
	}
	m.deps.AddNode(b.Name())
	logger.Debug("Module added to graph.", "id", id, "slots", len(b.Slots()), "params", len(added))
	return id, nil
}

// RemoveModule unbinds every slot of the named module, removes its
// parameters and releases it. Its ModuleID becomes invalid.
func (m *Manager) RemoveModule(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.topology.Lookup(ctx, name)
	if !ok {
		return fmt.Errorf("%w: '%s'", topologystore.ErrModuleNotFound, name)
	}
	m.removeEntry(ctx, entry)
	return nil
}

func (m *Manager) removeEntry(ctx context.Context, entry topologystore.Entry) {
	logger := ctxlog.FromContext(ctx)
	b := entry.Module.Core()

	for _, slot := range b.Slots() {
		switch s := slot.(type) {
		case *module.Outbound:
			if module.Disconnect(s) {
				m.topology.RemoveConnection(ctx, nodeid.New(b.Name(), s.Name()))
			}
		case *module.Inbound:
			if peer := s.Peer(); peer != nil && module.Disconnect(peer) {
				m.topology.RemoveConnection(ctx, nodeid.New(peer.Owner().Name(), peer.Name()))
				logger.Debug("Caller lost its connection.", "caller", peer.FullName(), "callee", s.FullName())
			}
		}
	}
	for _, p := range b.Params() {
		m.params.Remove(ctx, p.FullName())
	}
	module.Release(ctx, entry.Module)
	m.topology.RemoveModule(ctx, entry.ID)
	m.deps.RemoveNode(entry.Name)
	logger.Debug("Module removed from graph.", "module", entry.Name, "id", entry.ID)
}

// Module resolves a live module by instance name.
func (m *Manager) Module(ctx context.Context, name string) (module.Module, bool) {
	entry, ok := m.topology.Lookup(ctx, name)
	if !ok {
		return nil, false
	}
	return entry.Module, true
}

// ModuleByID resolves a live module by ID.
func (m *Manager) ModuleByID(ctx context.Context, id topologystore.ModuleID) (module.Module, bool) {
	entry, ok := m.topology.Module(ctx, id)
	if !ok {
		return nil, false
	}
	return entry.Module, true
}

// Modules returns all live modules in insertion order.
func (m *Manager) Modules(ctx context.Context) []topologystore.Entry {
	return m.topology.AllModules(ctx)
}

// Drivers returns the modules that run once per frame, in insertion order.
func (m *Manager) Drivers(ctx context.Context) []module.Driver {
	var drivers []module.Driver
	for _, e := range m.topology.AllModules(ctx) {
		if d, ok := e.Module.(module.Driver); ok {
			drivers = append(drivers, d)
		}
	}
	return drivers
}

// Bind connects the outbound slot from to the inbound slot to. Addresses
// have the form "module/slot". On failure neither slot is bound.
func (m *Manager) Bind(ctx context.Context, from, to string) (*call.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	c, err := m.bind(ctx, from, to)
	if err != nil {
		m.recorder.BindFailed(bindFailureReason(err))
		logger.Warn("Binding rejected.", "from", from, "to", to, "error", err)
		return nil, err
	}
	m.recorder.Bound(c.Class().Name)
	logger.Debug("Slots bound.", "from", from, "to", to, "call", c.Class().String())
	return c, nil
}

func (m *Manager) bind(ctx context.Context, from, to string) (*call.Call, error) {
	fromAddr, err := nodeid.ParseMember(from)
	if err != nil {
		return nil, err
	}
	toAddr, err := nodeid.ParseMember(to)
	if err != nil {
		return nil, err
	}

	fromMod, ok := m.topology.Lookup(ctx, fromAddr.Module)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", topologystore.ErrModuleNotFound, fromAddr.Module)
	}
	toMod, ok := m.topology.Lookup(ctx, toAddr.Module)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", topologystore.ErrModuleNotFound, toAddr.Module)
	}

	out, ok := fromMod.Module.Core().Outbound(fromAddr.Name)
	if !ok {
		if _, isInbound := fromMod.Module.Core().Inbound(fromAddr.Name); isInbound {
			return nil, &call.BindError{From: from, To: to, Err: call.ErrWrongDirection}
		}
		return nil, fmt.Errorf("%w: '%s'", ErrSlotNotFound, from)
	}
	in, ok := toMod.Module.Core().Inbound(toAddr.Name)
	if !ok {
		if _, isOutbound := toMod.Module.Core().Outbound(toAddr.Name); isOutbound {
			return nil, &call.BindError{From: from, To: to, Err: call.ErrWrongDirection}
		}
		return nil, fmt.Errorf("%w: '%s'", ErrSlotNotFound, to)
	}

	// The caller pulls from the callee, so the callee must not already
	// depend on the caller.
	if fromAddr.Module != toAddr.Module && m.deps.Reaches(fromAddr.Module, toAddr.Module) {
		return nil, &call.BindError{From: from, To: to, Err: call.ErrCyclicBinding}
	}

	c, err := module.Connect(out, in)
	if err != nil {
		return nil, err
	}
	conn := topologystore.Connection{From: fromAddr, To: toAddr, Class: c.Class().Name}
	if err := m.topology.AddConnection(ctx, conn); err != nil {
		module.Disconnect(out)
		return nil, err
	}
	if err := m.deps.AddEdge(toAddr.Module, fromAddr.Module); err != nil {
		m.topology.RemoveConnection(ctx, fromAddr)
		module.Disconnect(out)
		return nil, err
	}
	return c, nil
}

func bindFailureReason(err error) string {
	switch {
	case errors.Is(err, call.ErrIncompatible):
		return "incompatible"
	case errors.Is(err, call.ErrAlreadyBound):
		return "already_bound"
	case errors.Is(err, call.ErrSelfBinding):
		return "self_binding"
	case errors.Is(err, call.ErrWrongDirection):
		return "wrong_direction"
	case errors.Is(err, call.ErrCyclicBinding):
		return "cycle"
	case errors.Is(err, module.ErrNotCreated):
		return "not_created"
	case errors.Is(err, topologystore.ErrModuleNotFound), errors.Is(err, ErrSlotNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}

// Unbind disconnects the outbound slot from.
func (m *Manager) Unbind(ctx context.Context, from string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	addr, err := nodeid.ParseMember(from)
	if err != nil {
		return err
	}
	entry, ok := m.topology.Lookup(ctx, addr.Module)
	if !ok {
		return fmt.Errorf("%w: '%s'", topologystore.ErrModuleNotFound, addr.Module)
	}
	out, ok := entry.Module.Core().Outbound(addr.Name)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrSlotNotFound, from)
	}
	if !module.Disconnect(out) {
		return fmt.Errorf("%w: '%s'", call.ErrNotConnected, from)
	}
	if conn, ok := m.topology.RemoveConnection(ctx, addr); ok {
		m.deps.RemoveEdge(conn.To.Module, conn.From.Module)
	}
	ctxlog.FromContext(ctx).Debug("Slot unbound.", "from", from)
	return nil
}

// Connections returns every live binding ordered by outbound slot.
func (m *Manager) Connections(ctx context.Context) []topologystore.Connection {
	return m.topology.Connections(ctx)
}

// Param resolves a parameter by full name. It implements module.ParamLookup.
func (m *Manager) Param(fullName string) (*param.Node, bool) {
	return m.params.Get(context.Background(), fullName)
}

// Params returns every parameter ordered by full name.
func (m *Manager) Params(ctx context.Context) []*param.Node {
	return m.params.All(ctx)
}

// SetParam parses value and assigns it to the named parameter.
func (m *Manager) SetParam(ctx context.Context, fullName, value string) error {
	n, ok := m.params.Get(ctx, fullName)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrParamNotFound, fullName)
	}
	if err := n.SetString(value); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Parameter set.", "param", fullName, "value", n.ValueString())
	return nil
}

// SetParamValue assigns value to the named parameter.
func (m *Manager) SetParamValue(ctx context.Context, fullName string, value cty.Value) error {
	n, ok := m.params.Get(ctx, fullName)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrParamNotFound, fullName)
	}
	var err error
	if value.Type() == cty.String && value.IsKnown() && !value.IsNull() {
		err = n.SetString(value.AsString())
	} else {
		err = n.Set(value)
	}
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Parameter set.", "param", fullName, "value", n.ValueString())
	return nil
}

// PressParam triggers a button parameter.
func (m *Manager) PressParam(ctx context.Context, fullName string) error {
	n, ok := m.params.Get(ctx, fullName)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrParamNotFound, fullName)
	}
	if n.Type() != param.TypeButton {
		return fmt.Errorf("parameter '%s': %w: not a button", fullName, param.ErrInvalidValue)
	}
	n.Press()
	ctxlog.FromContext(ctx).Debug("Button pressed.", "param", fullName)
	return nil
}

// SaveState writes the presentation state of every parameter.
func (m *Manager) SaveState(ctx context.Context, w io.Writer) error {
	return param.WriteStates(w, m.params.All(ctx))
}

// LoadState applies a presentation state document. Entries for unknown
// parameters are skipped; rejected entries are reported together.
func (m *Manager) LoadState(ctx context.Context, r io.Reader) (int, error) {
	return param.ReadStates(ctx, r, func(fullName string) (*param.Node, bool) {
		return m.params.Get(ctx, fullName)
	})
}

// Close removes every module in reverse insertion order.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.topology.AllModules(ctx)
	for i := len(entries) - 1; i >= 0; i-- {
		m.removeEntry(ctx, entries[i])
	}
	ctxlog.FromContext(ctx).Debug("Graph closed.", "modules", len(entries))
}

type nopRecorder struct{}

func (nopRecorder) Hit(string)                              {}
func (nopRecorder) Recomputed(string, uint64, time.Duration) {}
func (nopRecorder) Failed(string, pull.Kind)                {}
func (nopRecorder) Bound(string)                            {}
func (nopRecorder) BindFailed(string)                       {}
