package call

import (
	"context"
	"fmt"
)

// Handler implements one function of a call class on the inbound side.
type Handler func(ctx context.Context, p Payload) error

// Call is a bound edge between an outbound and an inbound slot.
type Call struct {
	class    *Class
	caller   string
	callee   string
	handlers []Handler
	alive    func() bool
}

// New creates a bound call. handlers must have one entry per function of the
// class; nil entries are functions the callee does not implement. alive
// reports whether the callee module can still serve requests.
func New(class *Class, caller, callee string, handlers []Handler, alive func() bool) *Call {
	table := make([]Handler, class.FunctionCount())
	copy(table, handlers)
	return &Call{
		class:    class,
		caller:   caller,
		callee:   callee,
		handlers: table,
		alive:    alive,
	}
}

// Class returns the class of this call.
func (c *Call) Class() *Class {
	return c.class
}

// Caller returns the full name of the outbound slot.
func (c *Call) Caller() string {
	return c.caller
}

// Callee returns the full name of the inbound slot.
func (c *Call) Callee() string {
	return c.callee
}

// Supports reports whether the callee implements the function at idx.
func (c *Call) Supports(idx int) bool {
	return idx >= 0 && idx < len(c.handlers) && c.handlers[idx] != nil
}

// Invoke runs function idx on the callee with the given payload. The payload
// must belong to this call's class. A panic raised by the handler is
// recovered and returned as a DispatchError.
func (c *Call) Invoke(ctx context.Context, idx int, p Payload) (err error) {
	if idx < 0 || idx >= len(c.handlers) {
		return c.dispatchError(idx, fmt.Errorf("%w: function index %d out of range", ErrUnsupportedOperation, idx))
	}
	if p == nil || p.CallClass() != c.class.Name {
		got := "<nil>"
		if p != nil {
			got = p.CallClass()
		}
		return c.dispatchError(idx, fmt.Errorf("%w: payload of class '%s'", ErrWrongCallClass, got))
	}
	if c.alive != nil && !c.alive() {
		return c.dispatchError(idx, ErrCalleeGone)
	}
	h := c.handlers[idx]
	if h == nil {
		return c.dispatchError(idx, ErrUnsupportedOperation)
	}

	defer func() {
		if r := recover(); r != nil {
			err = c.dispatchError(idx, fmt.Errorf("handler panicked: %v", r))
		}
	}()
	return h(ctx, p)
}

func (c *Call) dispatchError(idx int, err error) error {
	return &DispatchError{
		Class:    c.class.Name,
		Function: c.class.FunctionName(idx),
		Index:    idx,
		Callee:   c.callee,
		Err:      err,
	}
}
