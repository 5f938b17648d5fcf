// Package topologystore defines the interface for storing the structure of a
// module graph: the module instances and the connections between their slots.
//
// # Why Topology Store Exists
//
// The topology store separates the **graph structure** (which modules exist
// and which slots are bound to each other) from the **parameter state**
// managed by paramstore. Structural changes are rare and serialized by the
// graph; parameter reads and writes are frequent and concurrent.
//
// # Module Identity
//
// Every added module receives a ModuleID. IDs are never reused: removing a
// module invalidates its ID, and adding a module with the same name again
// yields a fresh one. Holders of a stale ID get a "not found" answer instead
// of a different module.
//
// # Typical Implementation
//
// See internal/inmemorytopology for the reference in-memory implementation
// using maps and sync.RWMutex.
package topologystore

import (
	"context"
	"errors"

	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/nodeid"
)

// Topology errors.
var (
	ErrDuplicateModule  = errors.New("module name already in use")
	ErrModuleNotFound   = errors.New("module not found")
	ErrDuplicateBinding = errors.New("connection already recorded")
)

// ModuleID identifies a module instance for the lifetime of the store.
type ModuleID uint64

// Entry is a module instance registered in the topology.
type Entry struct {
	ID     ModuleID
	Name   string
	Module module.Module
}

// Connection is a recorded binding from an outbound slot to an inbound slot.
type Connection struct {
	From  nodeid.Address
	To    nodeid.Address
	Class string
}

// String renders the connection as "from -> to".
func (c Connection) String() string {
	return c.From.String() + " -> " + c.To.String()
}

// Store is the interface for managing the structure of a module graph.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. The graph serializes
// structural mutations, but lookups happen concurrently from frame workers
// and the remote parameter channel.
type Store interface {
	// AddModule registers a module under its instance name and returns a new
	// ModuleID. Returns ErrDuplicateModule if the name is taken.
	AddModule(ctx context.Context, m module.Module) (ModuleID, error)

	// RemoveModule unregisters the module with the given ID. The ID is never
	// handed out again. Returns the removed entry and whether it existed.
	RemoveModule(ctx context.Context, id ModuleID) (Entry, bool)

	// Module returns the entry for a live ModuleID.
	Module(ctx context.Context, id ModuleID) (Entry, bool)

	// Lookup resolves an instance name to its entry.
	Lookup(ctx context.Context, name string) (Entry, bool)

	// AllModules returns a snapshot of all modules ordered by ModuleID, which
	// is the order they were added in.
	AllModules(ctx context.Context) []Entry

	// AddConnection records a binding. Both modules must exist. An outbound
	// slot can carry only one connection.
	AddConnection(ctx context.Context, c Connection) error

	// RemoveConnection forgets the binding whose outbound slot is from.
	RemoveConnection(ctx context.Context, from nodeid.Address) (Connection, bool)

	// Connections returns every recorded binding ordered by outbound slot.
	Connections(ctx context.Context) []Connection

	// ConnectionsOf returns the bindings in which the named module takes part
	// on either side.
	ConnectionsOf(ctx context.Context, moduleName string) []Connection
}
