package pull

import (
	"errors"
	"fmt"
)

// ErrNoData is returned by Peek-based callers when nothing was computed yet.
var ErrNoData = errors.New("no data has been computed yet")

// Kind classifies a pull failure.
type Kind int

const (
	// KindUpstream means the pull from an upstream slot failed or there is no
	// upstream connection.
	KindUpstream Kind = iota + 1
	// KindRecompute means the producer's own computation failed.
	KindRecompute
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindRecompute:
		return "recompute"
	default:
		return "unknown"
	}
}

// Error is a failed pull.
type Error struct {
	Producer string
	Kind     Kind
	Err      error
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Producer, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a pull error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pullErr *Error
	return errors.As(err, &pullErr) && pullErr.Kind == kind
}
