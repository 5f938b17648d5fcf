package inmemorytopology

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/nodeid"
	"github.com/specialistvlad/pullgridgo/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex
// for thread-safe concurrent access.
type Store struct {
	mu          sync.RWMutex
	nextID      topologystore.ModuleID
	modules     map[topologystore.ModuleID]topologystore.Entry
	byName      map[string]topologystore.ModuleID
	connections map[string]topologystore.Connection // Key: outbound slot address
}

// New creates a new, empty in-memory topology store.
func New() topologystore.Store {
	return &Store{
		modules:     make(map[topologystore.ModuleID]topologystore.Entry),
		byName:      make(map[string]topologystore.ModuleID),
		connections: make(map[string]topologystore.Connection),
	}
}

// AddModule registers a module under its instance name.
func (s *Store) AddModule(ctx context.Context, m module.Module) (topologystore.ModuleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := m.Core().Name()
	if _, exists := s.byName[name]; exists {
		return 0, fmt.Errorf("%w: '%s'", topologystore.ErrDuplicateModule, name)
	}
	s.nextID++
	id := s.nextID
	s.modules[id] = topologystore.Entry{ID: id, Name: name, Module: m}
	s.byName[name] = id
	return id, nil
}

// RemoveModule unregisters a module and every connection it takes part in.
func (s *Store) RemoveModule(ctx context.Context, id topologystore.ModuleID) (topologystore.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.modules[id]
	if !ok {
		return topologystore.Entry{}, false
	}
	delete(s.modules, id)
	delete(s.byName, entry.Name)
	for key, c := range s.connections {
		if c.From.Module == entry.Name || c.To.Module == entry.Name {
			delete(s.connections, key)
		}
	}
	return entry, true
}

// Module returns the entry for a live ModuleID.
func (s *Store) Module(ctx context.Context, id topologystore.ModuleID) (topologystore.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.modules[id]
	return entry, ok
}

// Lookup resolves an instance name to its entry.
func (s *Store) Lookup(ctx context.Context, name string) (topologystore.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return topologystore.Entry{}, false
	}
	return s.modules[id], true
}

// AllModules returns all modules ordered by ModuleID.
func (s *Store) AllModules(ctx context.Context) []topologystore.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]topologystore.Entry, 0, len(s.modules))
	for _, e := range s.modules {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// AddConnection records a binding between two registered modules.
func (s *Store) AddConnection(ctx context.Context, c topologystore.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[c.From.Module]; !exists {
		return fmt.Errorf("%w: connection source '%s'", topologystore.ErrModuleNotFound, c.From.Module)
	}
	if _, exists := s.byName[c.To.Module]; !exists {
		return fmt.Errorf("%w: connection target '%s'", topologystore.ErrModuleNotFound, c.To.Module)
	}
	key := c.From.String()
	if _, exists := s.connections[key]; exists {
		return fmt.Errorf("%w: '%s'", topologystore.ErrDuplicateBinding, key)
	}
	s.connections[key] = c
	return nil
}

// RemoveConnection forgets the binding whose outbound slot is from.
func (s *Store) RemoveConnection(ctx context.Context, from nodeid.Address) (topologystore.Connection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := from.String()
	c, ok := s.connections[key]
	if ok {
		delete(s.connections, key)
	}
	return c, ok
}

// Connections returns every recorded binding ordered by outbound slot.
func (s *Store) Connections(ctx context.Context) []topologystore.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(topologystore.Connection) bool { return true })
}

// ConnectionsOf returns the bindings in which the named module takes part.
func (s *Store) ConnectionsOf(ctx context.Context, moduleName string) []topologystore.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(c topologystore.Connection) bool {
		return c.From.Module == moduleName || c.To.Module == moduleName
	})
}

func (s *Store) sorted(keep func(topologystore.Connection) bool) []topologystore.Connection {
	out := make([]topologystore.Connection, 0, len(s.connections))
	for _, c := range s.connections {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From.String() < out[j].From.String() })
	return out
}
