package param

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidValue              = errors.New("invalid parameter value")
	ErrAlreadyInitialized        = errors.New("presentation already initialized")
	ErrIncompatiblePresentation  = errors.New("incompatible presentation mode")
	ErrMalformedState            = errors.New("malformed presentation state")
	ErrStateNotFound             = errors.New("presentation state not found")
	ErrMissingParameterStateRoot = errors.New("document has no " + StateKey + " object")
)

// EntryError reports a rejected entry of a presentation-state document.
type EntryError struct {
	Name string
	Err  error
}

// Error implements the error interface for EntryError.
func (e *EntryError) Error() string {
	return fmt.Sprintf("parameter '%s': %v", e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EntryError) Unwrap() error {
	return e.Err
}
