package collective

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
)

// ErrSetupFailed wraps errors returned by the setup function.
var ErrSetupFailed = errors.New("collective setup failed")

// Handle is the shared communicator handle.
type Handle struct {
	ID    uuid.UUID
	Group int
	Rank  int
	Size  int
}

// SetupFunc performs the one-time collective setup for a grouping key.
type SetupFunc func(ctx context.Context, group int) (*Handle, error)

// TeardownFunc frees what SetupFunc created.
type TeardownFunc func(ctx context.Context, h *Handle)

const (
	stateNotYet int32 = iota
	stateInitializing
	stateReady
)

// Context is the process-wide collective state.
type Context struct {
	setup    SetupFunc
	teardown TeardownFunc

	state  atomic.Int32
	handle atomic.Pointer[Handle]

	mu     sync.Mutex
	cond   *sync.Cond
	owners int
}

// New creates a context using the given setup and teardown functions. A nil
// setup uses LocalSetup.
func New(setup SetupFunc, teardown TeardownFunc) *Context {
	if setup == nil {
		setup = LocalSetup
	}
	c := &Context{setup: setup, teardown: teardown}
	c.cond = sync.NewCond(&c.mu)
	return c
}

var defaultContext = sync.OnceValue(func() *Context {
	return New(LocalSetup, nil)
})

// Default returns the process-wide context.
func Default() *Context {
	return defaultContext()
}

// LocalSetup creates a single-process group.
func LocalSetup(ctx context.Context, group int) (*Handle, error) {
	return &Handle{ID: uuid.New(), Group: group, Rank: 0, Size: 1}, nil
}

// Provide returns the shared handle, running setup if no handle has been
// published yet.
func (c *Context) Provide(ctx context.Context, group int) (*Handle, error) {
	logger := ctxlog.FromContext(ctx)

	for {
		switch c.state.Load() {
		case stateReady:
			h := c.handle.Load()
			if h == nil {
				// Torn down between the state load and here; start over.
				continue
			}
			if h.Group != group {
				logger.Warn("Collective handle already published for another grouping key, ignoring requested key.",
					"requested_group", group, "active_group", h.Group, "handle", h.ID.String())
			}
			return h, nil

		case stateNotYet:
			if !c.state.CompareAndSwap(stateNotYet, stateInitializing) {
				continue
			}
			logger.Debug("Performing collective setup.", "group", group)
			h, err := c.runSetup(ctx, group)

			c.mu.Lock()
			if err != nil {
				c.state.Store(stateNotYet)
				c.cond.Broadcast()
				c.mu.Unlock()
				logger.Error("Collective setup failed.", "group", group, "error", err)
				return nil, fmt.Errorf("%w: %v", ErrSetupFailed, err)
			}
			c.handle.Store(h)
			c.state.Store(stateReady)
			c.cond.Broadcast()
			c.mu.Unlock()
			logger.Info("Collective handle published.", "group", group, "handle", h.ID.String(), "rank", h.Rank, "size", h.Size)
			return h, nil

		case stateInitializing:
			c.mu.Lock()
			for c.state.Load() == stateInitializing {
				c.cond.Wait()
			}
			c.mu.Unlock()
		}
	}
}

func (c *Context) runSetup(ctx context.Context, group int) (h *Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setup panicked: %v", r)
		}
	}()
	h, err = c.setup(ctx, group)
	if err == nil && h == nil {
		err = errors.New("setup returned no handle")
	}
	return h, err
}

// Handle returns the published handle, if any.
func (c *Context) Handle() (*Handle, bool) {
	if c.state.Load() != stateReady {
		return nil, false
	}
	h := c.handle.Load()
	return h, h != nil
}

// Acquire registers an owner.
func (c *Context) Acquire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners++
}

// Owners returns the number of registered owners.
func (c *Context) Owners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owners
}

// Release unregisters an owner. The last owner tears the handle down.
func (c *Context) Release(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.owners == 0 {
		logger.Warn("Collective context released more often than acquired.")
		return
	}
	c.owners--
	if c.owners > 0 {
		return
	}

	for c.state.Load() == stateInitializing {
		c.cond.Wait()
	}
	if c.owners > 0 {
		return
	}
	if c.state.Load() != stateReady {
		return
	}
	h := c.handle.Swap(nil)
	c.state.Store(stateNotYet)
	if h == nil {
		return
	}
	if c.teardown != nil {
		c.teardown(ctx, h)
	}
	logger.Info("Collective handle released.", "handle", h.ID.String())
}
