package pull

import (
	"sync"
	"sync/atomic"
)

// Unlocker is a lease on a snapshot. Unlock must be called once the holder is
// done reading; further calls, and calls on a nil Unlocker, do nothing.
type Unlocker struct {
	once    sync.Once
	release func()
}

// Unlock releases the lease.
func (u *Unlocker) Unlock() {
	if u == nil {
		return
	}
	u.once.Do(func() {
		if u.release != nil {
			u.release()
		}
	})
}

// NewUnlocker wraps a release function.
func NewUnlocker(release func()) *Unlocker {
	return &Unlocker{release: release}
}

// Chain returns an Unlocker releasing all given leases.
func Chain(unlockers ...*Unlocker) *Unlocker {
	return NewUnlocker(func() {
		for _, u := range unlockers {
			u.Unlock()
		}
	})
}

// entry is a committed snapshot plus its lease count. refs starts at one for
// the producer's own reference, which is dropped when the entry is
// superseded.
type entry[T any] struct {
	snap     Snapshot[T]
	refs     atomic.Int64
	onRetire func(T)
}

func newEntry[T any](snap Snapshot[T], onRetire func(T)) *entry[T] {
	e := &entry[T]{snap: snap, onRetire: onRetire}
	e.refs.Store(1)
	return e
}

// tryAcquire adds a lease unless the entry is already retired.
func (e *entry[T]) tryAcquire() bool {
	for {
		refs := e.refs.Load()
		if refs <= 0 {
			return false
		}
		if e.refs.CompareAndSwap(refs, refs+1) {
			return true
		}
	}
}

func (e *entry[T]) release() {
	if e.refs.Add(-1) == 0 && e.onRetire != nil {
		e.onRetire(e.snap.Data)
	}
}

func (e *entry[T]) unlocker() *Unlocker {
	return NewUnlocker(e.release)
}
