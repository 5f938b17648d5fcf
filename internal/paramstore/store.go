// Package paramstore defines the interface for storing the parameter nodes of
// a module graph, addressed by their fully qualified names.
//
// # Why Param Store Exists
//
// Parameters are read and written far more often than the graph structure
// changes: the remote channel and --set overrides write them, the frame
// workers read them, and state persistence walks all of them. Keeping them in
// their own store lets these accesses proceed without the topology lock.
//
// # Lifecycle and Usage
//
// The param store is:
//  1. **Populated** by the graph when a module is created (one entry per
//     declared parameter, keyed by "module/param")
//  2. **Queried** by the graph's SetParam, by modules resolving parameters of
//     other modules, and by state persistence
//  3. **Pruned** when a module is removed
package paramstore

import (
	"context"
	"errors"

	"github.com/specialistvlad/pullgridgo/internal/param"
)

// ErrDuplicateParam is returned when a full name is already registered.
var ErrDuplicateParam = errors.New("parameter already registered")

// Store is the interface for managing parameter nodes by full name.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent reads and writes.
//
// # Typical Implementation
//
// See internal/inmemorystore for the reference in-memory implementation using
// sync.Map.
type Store interface {
	// Add registers a node under its full name.
	Add(ctx context.Context, n *param.Node) error

	// Remove forgets the node with the given full name.
	Remove(ctx context.Context, fullName string) bool

	// Get returns the node with the given full name.
	Get(ctx context.Context, fullName string) (*param.Node, bool)

	// All returns every node ordered by full name.
	All(ctx context.Context) []*param.Node
}
