package testutil

import (
	"context"
	"testing"

	"github.com/specialistvlad/pullgridgo/calls/particles"
	"github.com/specialistvlad/pullgridgo/internal/graph"
	"github.com/specialistvlad/pullgridgo/internal/inmemorystore"
	"github.com/specialistvlad/pullgridgo/internal/inmemorytopology"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/stretchr/testify/require"
)

// NewGraph returns an empty in-memory graph and a logging context. The graph
// is closed when the test finishes.
func NewGraph(t *testing.T, opts ...graph.Option) (context.Context, *graph.Manager, *SafeBuffer) {
	t.Helper()
	ctx, logs := LogContext(t)
	g := graph.New(inmemorytopology.New(), inmemorystore.New(), opts...)
	t.Cleanup(func() { g.Close(ctx) })
	return ctx, g, logs
}

// AddModules adds every module to g and fails the test on error.
func AddModules(t *testing.T, ctx context.Context, g *graph.Manager, mods ...module.Module) {
	t.Helper()
	for _, m := range mods {
		_, err := g.AddModule(ctx, m)
		require.NoError(t, err, "adding module %s", m.Core().Name())
	}
}

// Bind connects from to to and fails the test on error.
func Bind(t *testing.T, ctx context.Context, g *graph.Manager, from, to string) {
	t.Helper()
	_, err := g.Bind(ctx, from, to)
	require.NoError(t, err, "binding %s -> %s", from, to)
}

// ParticleSink is a consumer with a single ParticleDataCall slot "input".
// Tests use it to pull from the module under test.
type ParticleSink struct {
	module.Base
	In *module.Outbound
}

// NewParticleSink creates an uncreated sink.
func NewParticleSink(name string) *ParticleSink {
	p := &ParticleSink{}
	p.Init("ParticleSink", name, "test consumer")
	return p
}

// OnCreate declares the input slot.
func (p *ParticleSink) OnCreate(ctx context.Context) error {
	p.In = p.AddOutbound("input", "particles under test").SetCompatibleCall(particles.ClassName, "^1")
	return nil
}

// OnRelease does nothing.
func (p *ParticleSink) OnRelease(ctx context.Context) {}

// Fetch pulls the extent and data of frame.
func (p *ParticleSink) Fetch(ctx context.Context, frame int) (*particles.Payload, error) {
	return particles.Fetch(ctx, p.In, frame)
}

// DirtyParams returns the full names of the parameters of m that are still
// dirty.
func DirtyParams(m module.Module) []string {
	var dirty []string
	for _, n := range m.Core().Params() {
		if n.IsDirty() {
			dirty = append(dirty, n.FullName())
		}
	}
	return dirty
}
