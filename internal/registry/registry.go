package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
)

// ErrUnknownClass is returned for module classes nobody registered.
var ErrUnknownClass = errors.New("unknown module class")

// Module is the interface that all module packages must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Factory builds an uncreated module instance with the given name.
type Factory func(name string) module.Module

// ModuleClass describes a registered module class.
type ModuleClass struct {
	Name        string
	Description string
	// Calls lists the call classes the module's slots speak.
	Calls []string
	New   Factory
}

// Registry holds the module classes and call classes of a single
// application instance.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*ModuleClass
	calls   map[string]*call.Class
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		modules: make(map[string]*ModuleClass),
		calls:   make(map[string]*call.Class),
	}
}

// RegisterModule registers a module class. Registering a class name twice
// panics.
func (r *Registry) RegisterModule(mc *ModuleClass) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mc == nil || mc.Name == "" || mc.New == nil {
		panic("module class must have a name and a factory")
	}
	if _, exists := r.modules[mc.Name]; exists {
		panic(fmt.Sprintf("module class '%s' already registered", mc.Name))
	}
	slog.Debug("Registering module class.", "class", mc.Name)
	r.modules[mc.Name] = mc
}

// RegisterCall registers a call class. Several module packages may register
// the same *call.Class; a different class under a taken name panics.
func (r *Registry) RegisterCall(c *call.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.calls[c.Name]; exists {
		if existing == c {
			return
		}
		panic(fmt.Sprintf("call class '%s' already registered", c.Name))
	}
	slog.Debug("Registering call class.", "call", c.String())
	r.calls[c.Name] = c
}

// NewModule builds an instance of a registered module class.
func (r *Registry) NewModule(class, name string) (module.Module, error) {
	r.mu.RLock()
	mc, ok := r.modules[class]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownClass, class)
	}
	return mc.New(name), nil
}

// ModuleClass returns a registered module class.
func (r *Registry) ModuleClass(class string) (*ModuleClass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mc, ok := r.modules[class]
	return mc, ok
}

// ModuleClasses returns every registered module class ordered by name.
func (r *Registry) ModuleClasses() []*ModuleClass {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ModuleClass, 0, len(r.modules))
	for _, mc := range r.modules {
		out = append(out, mc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call returns a registered call class.
func (r *Registry) Call(name string) (*call.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calls[name]
	return c, ok
}
