package call

import (
	"errors"
	"fmt"
)

// Binding errors.
var (
	ErrIncompatible   = errors.New("no common call class")
	ErrAlreadyBound   = errors.New("slot is already bound")
	ErrSelfBinding    = errors.New("cannot bind a module to itself")
	ErrWrongDirection = errors.New("binding must go from an outbound to an inbound slot")
	ErrCyclicBinding  = errors.New("binding would make a module pull from itself")
)

// Dispatch errors.
var (
	ErrNotConnected         = errors.New("slot is not connected")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrWrongCallClass       = errors.New("wrong call class")
	ErrCalleeGone           = errors.New("callee module is no longer available")
)

// BindError reports a failed attempt to connect two slots.
type BindError struct {
	From string
	To   string
	Err  error
}

// Error implements the error interface for BindError.
func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s -> %s: %v", e.From, e.To, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BindError) Unwrap() error {
	return e.Err
}

// DispatchError reports a failed invocation of a call function.
type DispatchError struct {
	Class    string
	Function string
	Index    int
	Callee   string
	Err      error
}

// Error implements the error interface for DispatchError.
func (e *DispatchError) Error() string {
	fn := e.Function
	if fn == "" {
		fn = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("%s.%s on %s: %v", e.Class, fn, e.Callee, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
