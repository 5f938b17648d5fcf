package module

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/pullgridgo/internal/call"
)

// Direction tells inbound from outbound slots.
type Direction int

const (
	DirInbound Direction = iota
	DirOutbound
)

// String returns the direction name.
func (d Direction) String() string {
	if d == DirInbound {
		return "inbound"
	}
	return "outbound"
}

// Slot is the common view of inbound and outbound slots.
type Slot interface {
	Name() string
	FullName() string
	Description() string
	Direction() Direction
	Owner() *Base
	Connected() bool
	// PeerName returns the full name of the bound peer, or "".
	PeerName() string
}

// Inbound serves the functions of one or more call classes.
type Inbound struct {
	owner       *Base
	name        string
	description string

	mu       sync.RWMutex
	classes  []*call.Class
	handlers map[string][]call.Handler

	peer atomic.Pointer[Outbound]
}

// Name returns the slot name.
func (s *Inbound) Name() string { return s.name }

// FullName returns `module/slot`.
func (s *Inbound) FullName() string { return s.owner.address(s.name) }

// Description returns the slot help text.
func (s *Inbound) Description() string { return s.description }

// Direction returns DirInbound.
func (s *Inbound) Direction() Direction { return DirInbound }

// Owner returns the owning module.
func (s *Inbound) Owner() *Base { return s.owner }

// Connected reports whether an outbound slot is bound to this slot.
func (s *Inbound) Connected() bool { return s.peer.Load() != nil }

// PeerName returns the full name of the bound outbound slot.
func (s *Inbound) PeerName() string {
	if p := s.peer.Load(); p != nil {
		return p.FullName()
	}
	return ""
}

// Peer returns the bound outbound slot, or nil.
func (s *Inbound) Peer() *Outbound { return s.peer.Load() }

// SetCallback registers the implementation of one function of a call class.
// It panics if the class has no function with that name.
func (s *Inbound) SetCallback(class *call.Class, function string, h call.Handler) *Inbound {
	idx, ok := class.FunctionIndex(function)
	if !ok {
		panic(fmt.Sprintf("slot '%s': call class '%s' has no function '%s'", s.FullName(), class.Name, function))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table, known := s.handlers[class.Name]
	if !known {
		table = make([]call.Handler, class.FunctionCount())
		s.classes = append(s.classes, class)
	}
	table[idx] = h
	s.handlers[class.Name] = table
	return s
}

// Classes returns the call classes this slot serves, in registration order.
func (s *Inbound) Classes() []*call.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*call.Class(nil), s.classes...)
}

func (s *Inbound) table(class string) []call.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]call.Handler(nil), s.handlers[class]...)
}

// Outbound invokes functions on the inbound slot it is bound to.
type Outbound struct {
	owner       *Base
	name        string
	description string

	mu   sync.RWMutex
	reqs []call.Requirement

	call atomic.Pointer[call.Call]
	peer atomic.Pointer[Inbound]
}

// Name returns the slot name.
func (s *Outbound) Name() string { return s.name }

// FullName returns `module/slot`.
func (s *Outbound) FullName() string { return s.owner.address(s.name) }

// Description returns the slot help text.
func (s *Outbound) Description() string { return s.description }

// Direction returns DirOutbound.
func (s *Outbound) Direction() Direction { return DirOutbound }

// Owner returns the owning module.
func (s *Outbound) Owner() *Base { return s.owner }

// Connected reports whether the slot is bound.
func (s *Outbound) Connected() bool { return s.call.Load() != nil }

// PeerName returns the full name of the bound inbound slot.
func (s *Outbound) PeerName() string {
	if p := s.peer.Load(); p != nil {
		return p.FullName()
	}
	return ""
}

// Peer returns the bound inbound slot, or nil.
func (s *Outbound) Peer() *Inbound { return s.peer.Load() }

// SetCompatibleCall adds a call class to the slot's compatibility
// descriptor. Earlier entries are preferred at bind time. It panics on an
// invalid version constraint.
func (s *Outbound) SetCompatibleCall(class, constraint string) *Outbound {
	req := call.MustRequirement(class, constraint)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return s
}

// Requirements returns the compatibility descriptor.
func (s *Outbound) Requirements() []call.Requirement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]call.Requirement(nil), s.reqs...)
}

// Call returns the bound call, or nil.
func (s *Outbound) Call() *call.Call {
	return s.call.Load()
}

// NewPayload allocates a payload for the bound call class.
func (s *Outbound) NewPayload() (call.Payload, error) {
	c := s.call.Load()
	if c == nil {
		return nil, fmt.Errorf("%s: %w", s.FullName(), call.ErrNotConnected)
	}
	if c.Class().NewPayload == nil {
		return nil, fmt.Errorf("%s: call class '%s' has no payload factory", s.FullName(), c.Class().Name)
	}
	return c.Class().NewPayload(), nil
}

// Invoke runs function fn of the bound call with the given payload.
func (s *Outbound) Invoke(ctx context.Context, fn int, p call.Payload) error {
	c := s.call.Load()
	if c == nil {
		return fmt.Errorf("%s: %w", s.FullName(), call.ErrNotConnected)
	}
	return c.Invoke(ctx, fn, p)
}
