package testutil

import (
	"sync"
	"time"

	"github.com/specialistvlad/pullgridgo/internal/pull"
)

// CountingRecorder counts pull outcomes and bindings per name.
type CountingRecorder struct {
	mu         sync.Mutex
	hits       map[string]int
	recomputes map[string]int
	failures   map[string]int
	bound      map[string]int
	bindErrors map[string]int
}

// NewCountingRecorder creates an empty recorder.
func NewCountingRecorder() *CountingRecorder {
	return &CountingRecorder{
		hits:       map[string]int{},
		recomputes: map[string]int{},
		failures:   map[string]int{},
		bound:      map[string]int{},
		bindErrors: map[string]int{},
	}
}

func (r *CountingRecorder) inc(m map[string]int, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m[key]++
}

func (r *CountingRecorder) get(m map[string]int, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return m[key]
}

// Hit implements pull.Recorder.
func (r *CountingRecorder) Hit(producer string) { r.inc(r.hits, producer) }

// Recomputed implements pull.Recorder.
func (r *CountingRecorder) Recomputed(producer string, _ uint64, _ time.Duration) {
	r.inc(r.recomputes, producer)
}

// Failed implements pull.Recorder.
func (r *CountingRecorder) Failed(producer string, kind pull.Kind) {
	r.inc(r.failures, producer+":"+kind.String())
}

// Bound records a successful binding.
func (r *CountingRecorder) Bound(class string) { r.inc(r.bound, class) }

// BindFailed records a rejected binding.
func (r *CountingRecorder) BindFailed(reason string) { r.inc(r.bindErrors, reason) }

// Hits returns the cache hits of producer.
func (r *CountingRecorder) Hits(producer string) int { return r.get(r.hits, producer) }

// Recomputes returns the recomputations of producer.
func (r *CountingRecorder) Recomputes(producer string) int { return r.get(r.recomputes, producer) }

// Failures returns the failures of producer with the given kind.
func (r *CountingRecorder) Failures(producer string, kind pull.Kind) int {
	return r.get(r.failures, producer+":"+kind.String())
}

// BindErrors returns the rejected bindings with the given reason.
func (r *CountingRecorder) BindErrors(reason string) int { return r.get(r.bindErrors, reason) }
