package pull

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/param"
)

// Snapshot is an immutable committed output.
type Snapshot[T any] struct {
	Data   T
	Hash   uint64
	InHash []uint64
}

// ChangeRule decides whether upstream hashes differ enough to recompute.
type ChangeRule func(prev, next []uint64) bool

// AnyChanged recomputes when any upstream hash differs.
func AnyChanged(prev, next []uint64) bool {
	return !slices.Equal(prev, next)
}

// Watch recomputes only when one of the listed upstream positions changed.
func Watch(positions ...int) ChangeRule {
	return func(prev, next []uint64) bool {
		if len(prev) != len(next) {
			return true
		}
		for _, i := range positions {
			if i < len(prev) && prev[i] != next[i] {
				return true
			}
		}
		return false
	}
}

// Recorder observes pull outcomes.
type Recorder interface {
	Hit(producer string)
	Recomputed(producer string, hash uint64, took time.Duration)
	Failed(producer string, kind Kind)
}

type nopRecorder struct{}

func (nopRecorder) Hit(string)                              {}
func (nopRecorder) Recomputed(string, uint64, time.Duration) {}
func (nopRecorder) Failed(string, Kind)                     {}

// Option configures a Producer.
type Option[T any] func(*Producer[T])

// WithParams sets the parameters whose dirty state forces a recompute.
func WithParams[T any](nodes ...*param.Node) Option[T] {
	return func(p *Producer[T]) {
		p.params = append(p.params, nodes...)
	}
}

// WithChangeRule replaces the default AnyChanged rule.
func WithChangeRule[T any](rule ChangeRule) Option[T] {
	return func(p *Producer[T]) {
		p.rule = rule
	}
}

// WithRetire sets a hook receiving superseded data once no lease holds it.
func WithRetire[T any](fn func(T)) Option[T] {
	return func(p *Producer[T]) {
		p.retire = fn
	}
}

// WithRecorder attaches a Recorder.
func WithRecorder[T any](r Recorder) Option[T] {
	return func(p *Producer[T]) {
		if r != nil {
			p.recorder = r
		}
	}
}

// Producer holds the cache of one data-producing module.
type Producer[T any] struct {
	name     string
	params   []*param.Node
	rule     ChangeRule
	retire   func(T)
	recorder Recorder

	mu      sync.Mutex
	stale   bool
	current atomic.Pointer[entry[T]]
}

// NewProducer creates an empty producer. Its content hash starts at zero.
func NewProducer[T any](name string, opts ...Option[T]) *Producer[T] {
	p := &Producer[T]{
		name:     name,
		rule:     AnyChanged,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the producer name used in errors and metrics.
func (p *Producer[T]) Name() string {
	return p.name
}

// Watch adds parameters whose dirty state forces a recompute.
func (p *Producer[T]) Watch(nodes ...*param.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = append(p.params, nodes...)
}

// Hash returns the committed content hash.
func (p *Producer[T]) Hash() uint64 {
	if e := p.current.Load(); e != nil {
		return e.snap.Hash
	}
	return 0
}

// InHash returns the upstream hashes of the committed snapshot.
func (p *Producer[T]) InHash() []uint64 {
	if e := p.current.Load(); e != nil {
		return slices.Clone(e.snap.InHash)
	}
	return nil
}

// Invalidate forces the next Pull to recompute.
func (p *Producer[T]) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stale = true
}

// Peek returns the committed snapshot without recomputing. The boolean is
// false if nothing has been committed yet.
func (p *Producer[T]) Peek() (Snapshot[T], *Unlocker, bool) {
	for {
		e := p.current.Load()
		if e == nil {
			return Snapshot[T]{}, nil, false
		}
		if e.tryAcquire() {
			return e.snap, e.unlocker(), true
		}
	}
}

// Upstream records and wraps a failed upstream pull.
func (p *Producer[T]) Upstream(err error) error {
	p.recorder.Failed(p.name, KindUpstream)
	return &Error{Producer: p.name, Kind: KindUpstream, Err: err}
}

// Fetch reads the upstream inputs of one pull. It returns the upstream
// hashes and the computation to run when they or a watched parameter
// changed. compute must return fresh data and never modify data returned by
// earlier pulls.
type Fetch[T any] func(ctx context.Context) (inHash []uint64, compute func(context.Context) (T, error), err error)

// Pull returns the cached snapshot if inHash and the watched parameters are
// unchanged, and otherwise runs compute and commits its result.
func (p *Producer[T]) Pull(ctx context.Context, inHash []uint64, compute func(ctx context.Context) (T, error)) (Snapshot[T], *Unlocker, error) {
	return p.Do(ctx, func(context.Context) ([]uint64, func(context.Context) (T, error), error) {
		return inHash, compute, nil
	})
}

// Do is Pull for producers with upstream inputs. fetch runs under the
// producer's lock, after the watched parameters were observed, so concurrent
// pulls commit upstream data in the order it was read. A fetch error is
// returned unchanged.
func (p *Producer[T]) Do(ctx context.Context, fetch Fetch[T]) (Snapshot[T], *Unlocker, error) {
	logger := ctxlog.FromContext(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	gens := make([]uint64, len(p.params))
	dirty := false
	for i, n := range p.params {
		gens[i] = n.Observe()
		if n.IsDirty() {
			dirty = true
		}
	}

	inHash, compute, err := fetch(ctx)
	if err != nil {
		return Snapshot[T]{}, nil, err
	}

	cur := p.current.Load()
	if cur != nil && !p.stale && !dirty && !p.rule(cur.snap.InHash, inHash) {
		// Cannot fail: cur holds the producer's own reference until it is
		// superseded, which only happens under p.mu.
		cur.tryAcquire()
		p.recorder.Hit(p.name)
		return cur.snap, cur.unlocker(), nil
	}

	logger.Debug("Recomputing.", "producer", p.name, "dirty_params", dirty, "in_hash", inHash)
	start := time.Now()
	data, err := compute(ctx)
	if err != nil {
		p.recorder.Failed(p.name, KindRecompute)
		logger.Warn("Recomputation failed, keeping previous output.", "producer", p.name, "error", err)
		return Snapshot[T]{}, nil, &Error{Producer: p.name, Kind: KindRecompute, Err: err}
	}

	var hash uint64 = 1
	if cur != nil {
		hash = cur.snap.Hash + 1
	}
	next := newEntry(Snapshot[T]{Data: data, Hash: hash, InHash: slices.Clone(inHash)}, p.retire)
	next.tryAcquire()
	p.current.Store(next)
	if cur != nil {
		cur.release()
	}
	for i, n := range p.params {
		n.Commit(gens[i])
	}
	p.stale = false

	took := time.Since(start)
	p.recorder.Recomputed(p.name, hash, took)
	logger.Debug("Recomputed.", "producer", p.name, "hash", hash, "took", took)
	return next.snap, next.unlocker(), nil
}
