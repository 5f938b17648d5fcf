package inmemorystore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/paramstore"
)

// Store is an in-memory implementation of paramstore.Store using sync.Map
// for concurrent access without global lock contention.
//
// The key space is stable once the graph is built while lookups happen on
// every parameter write and every frame, which is the access pattern
// sync.Map is optimized for.
type Store struct {
	nodes sync.Map // Key: full name string, Value: *param.Node
}

// New creates a new, empty in-memory parameter store.
func New() paramstore.Store {
	return &Store{}
}

// Add registers a node under its full name.
func (s *Store) Add(ctx context.Context, n *param.Node) error {
	key := n.FullName()
	if _, loaded := s.nodes.LoadOrStore(key, n); loaded {
		return fmt.Errorf("%w: '%s'", paramstore.ErrDuplicateParam, key)
	}
	return nil
}

// Remove forgets the node with the given full name.
func (s *Store) Remove(ctx context.Context, fullName string) bool {
	_, loaded := s.nodes.LoadAndDelete(fullName)
	return loaded
}

// Get returns the node with the given full name.
func (s *Store) Get(ctx context.Context, fullName string) (*param.Node, bool) {
	n, ok := s.nodes.Load(fullName)
	if !ok {
		return nil, false
	}
	return n.(*param.Node), true
}

// All returns every node ordered by full name.
func (s *Store) All(ctx context.Context) []*param.Node {
	var nodes []*param.Node
	s.nodes.Range(func(_, v any) bool {
		nodes = append(nodes, v.(*param.Node))
		return true
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].FullName() < nodes[j].FullName() })
	return nodes
}
