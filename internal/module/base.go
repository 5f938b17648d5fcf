package module

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/nodeid"
	"github.com/specialistvlad/pullgridgo/internal/param"
)

// State is the lifecycle state of a module.
type State int32

const (
	Uninitialized State = iota
	Created
	Released
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Created:
		return "Created"
	case Released:
		return "Released"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Module is implemented by every module variant.
type Module interface {
	// Core returns the embedded Base.
	Core() *Base
	// OnCreate declares slots and parameters and acquires resources.
	OnCreate(ctx context.Context) error
	// OnRelease frees what OnCreate acquired.
	OnRelease(ctx context.Context)
}

// Driver is implemented by consumer modules that run once per frame.
type Driver interface {
	Module
	Frame(ctx context.Context, frame int) error
}

// ParamLookup resolves a fully qualified parameter name.
type ParamLookup interface {
	Param(fullName string) (*param.Node, bool)
}

// Base carries the identity, slots, parameters and lifecycle state of a
// module.
type Base struct {
	class       string
	name        string
	description string

	lifecycle sync.Mutex
	state     atomic.Int32

	mu       sync.RWMutex
	slots    []Slot
	inbound  map[string]*Inbound
	outbound map[string]*Outbound
	params   []*param.Node
	byName   map[string]*param.Node
	lookup   ParamLookup
}

// Init sets the identity of the module. Constructors call it before the
// module is handed to the graph.
func (b *Base) Init(class, name, description string) {
	b.class = class
	b.name = name
	b.description = description
}

// Core returns b.
func (b *Base) Core() *Base {
	return b
}

// Class returns the module class name.
func (b *Base) Class() string {
	return b.class
}

// Name returns the instance name.
func (b *Base) Name() string {
	return b.name
}

// Description returns the help text of the module class.
func (b *Base) Description() string {
	return b.description
}

// State returns the lifecycle state.
func (b *Base) State() State {
	return State(b.state.Load())
}

// Alive reports whether the module can serve calls.
func (b *Base) Alive() bool {
	return b.State() == Created
}

// SetLookup injects the graph-wide parameter lookup.
func (b *Base) SetLookup(l ParamLookup) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lookup = l
}

// Lookup resolves a parameter of any module in the same graph.
func (b *Base) Lookup(fullName string) (*param.Node, bool) {
	b.mu.RLock()
	l := b.lookup
	b.mu.RUnlock()
	if l == nil {
		return nil, false
	}
	return l.Param(fullName)
}

func (b *Base) address(member string) string {
	return nodeid.New(b.name, member).String()
}

func (b *Base) checkMemberName(kind, name string) {
	if err := nodeid.ValidateSegment(name); err != nil {
		panic(fmt.Sprintf("module '%s': invalid %s name: %v", b.name, kind, err))
	}
}

// AddInbound declares an inbound slot. It panics on a duplicate name.
func (b *Base) AddInbound(name, description string) *Inbound {
	b.checkMemberName("slot", name)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureMaps()
	if b.hasSlot(name) {
		panic(fmt.Sprintf("module '%s': slot '%s' declared twice", b.name, name))
	}
	s := &Inbound{owner: b, name: name, description: description, handlers: make(map[string][]call.Handler)}
	b.inbound[name] = s
	b.slots = append(b.slots, s)
	return s
}

// AddOutbound declares an outbound slot. It panics on a duplicate name.
func (b *Base) AddOutbound(name, description string) *Outbound {
	b.checkMemberName("slot", name)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureMaps()
	if b.hasSlot(name) {
		panic(fmt.Sprintf("module '%s': slot '%s' declared twice", b.name, name))
	}
	s := &Outbound{owner: b, name: name, description: description}
	b.outbound[name] = s
	b.slots = append(b.slots, s)
	return s
}

// AddParam takes ownership of a parameter node and returns it. It panics on a
// duplicate name.
func (b *Base) AddParam(n *param.Node) *param.Node {
	b.checkMemberName("parameter", n.Name())
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ensureMaps()
	if _, dup := b.byName[n.Name()]; dup {
		panic(fmt.Sprintf("module '%s': parameter '%s' declared twice", b.name, n.Name()))
	}
	n.SetOwner(b.name)
	b.params = append(b.params, n)
	b.byName[n.Name()] = n
	return n
}

func (b *Base) ensureMaps() {
	if b.inbound == nil {
		b.inbound = make(map[string]*Inbound)
		b.outbound = make(map[string]*Outbound)
		b.byName = make(map[string]*param.Node)
	}
}

func (b *Base) hasSlot(name string) bool {
	_, in := b.inbound[name]
	_, out := b.outbound[name]
	return in || out
}

// Slots returns the slots in declaration order.
func (b *Base) Slots() []Slot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Slot(nil), b.slots...)
}

// Inbound returns the named inbound slot.
func (b *Base) Inbound(name string) (*Inbound, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.inbound[name]
	return s, ok
}

// Outbound returns the named outbound slot.
func (b *Base) Outbound(name string) (*Outbound, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.outbound[name]
	return s, ok
}

// Params returns the parameters in declaration order.
func (b *Base) Params() []*param.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*param.Node(nil), b.params...)
}

// Param returns the parameter with the given local name.
func (b *Base) Param(name string) (*param.Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.byName[name]
	return n, ok
}

func (b *Base) drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots = nil
	b.inbound = nil
	b.outbound = nil
	b.params = nil
	b.byName = nil
}

// Create runs the module's OnCreate hook once. Creating a created module is
// reported and has no effect; a failed OnCreate leaves the module
// Uninitialized with no slots or parameters, so it can be retried.
func Create(ctx context.Context, m Module) error {
	b := m.Core()
	logger := ctxlog.FromContext(ctx).With("module", b.name, "class", b.class)

	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	switch b.State() {
	case Created:
		logger.Warn("Module create called twice, ignoring.")
		return fmt.Errorf("module '%s': %w", b.name, ErrAlreadyCreated)
	case Released:
		return fmt.Errorf("module '%s': %w", b.name, ErrReleased)
	}

	if err := m.OnCreate(ctx); err != nil {
		b.drop()
		return fmt.Errorf("failed to create module '%s': %w", b.name, err)
	}
	for _, n := range b.Params() {
		if err := n.InitPresentation(ctx); err != nil {
			logger.Warn("Parameter presentation already initialized.", "param", n.FullName())
		}
	}
	b.state.Store(int32(Created))
	logger.Debug("Module created.", "slots", len(b.Slots()), "params", len(b.Params()))
	return nil
}

// Release runs the module's OnRelease hook once and drops its slots and
// parameters. Releasing a module that is not Created does nothing. The
// caller is responsible for unbinding the slots first.
func Release(ctx context.Context, m Module) {
	b := m.Core()
	logger := ctxlog.FromContext(ctx).With("module", b.name, "class", b.class)

	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()

	if b.State() != Created {
		logger.Debug("Module release skipped.", "state", b.State().String())
		return
	}
	b.state.Store(int32(Released))
	m.OnRelease(ctx)
	b.drop()
	logger.Debug("Module released.")
}
