package builder

import (
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/registry"
	"github.com/specialistvlad/pullgridgo/internal/testutil"
	"github.com/specialistvlad/pullgridgo/modules/particlescale"
	"github.com/specialistvlad/pullgridgo/modules/particlesource"
	"github.com/specialistvlad/pullgridgo/modules/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry() *registry.Registry {
	r := registry.New()
	(&particlesource.Module{}).Register(r)
	(&particlescale.Module{}).Register(r)
	(&print.Module{}).Register(r)
	return r
}

func TestBuild_CreatesParamsAndBindings(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	model := &config.Model{
		Modules: []*config.Module{
			{Name: "src", Class: "ParticleSource", Params: map[string]cty.Value{
				"count": cty.NumberIntVal(32),
				"seed":  cty.NumberIntVal(5),
			}},
			{Name: "scale", Class: "ParticleScale", Params: map[string]cty.Value{
				"center": cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(0), cty.NumberIntVal(0)}),
			}},
			{Name: "print", Class: "Print"},
		},
		Connections: []*config.Connection{
			{From: "scale/input", To: "src/data"},
			{From: "print/input", To: "scale/output"},
		},
	}
	overrides := []config.Override{
		{Param: "src/count", Value: "8", Origin: "env:PULLGRID_PARAM_src__count"},
		{Param: "src/count", Value: "4", Origin: "flag"},
	}

	require.NoError(t, New(newRegistry(), g).Build(ctx, model, overrides))

	count, ok := g.Param("src/count")
	require.True(t, ok)
	assert.Equal(t, 4, count.Int(), "the last override wins")
	seed, _ := g.Param("src/seed")
	assert.Equal(t, 5, seed.Int())
	center, _ := g.Param("scale/center")
	assert.Equal(t, []float64{1, 0, 0}, center.Floats())
	assert.Len(t, g.Connections(ctx), 2)
	assert.Len(t, g.Drivers(ctx), 1)
}

func TestBuild_ReportsEveryProblem(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	model := &config.Model{
		Modules: []*config.Module{
			{Name: "src", Class: "ParticleSource", Range: "graph.hcl", Params: map[string]cty.Value{
				"count":   cty.NumberIntVal(-1),
				"missing": cty.True,
			}},
			{Name: "ghost", Class: "NoSuchClass", Range: "graph.hcl"},
			{Name: "src", Class: "ParticleSource", Range: "other.hcl"},
			{Name: "print", Class: "Print"},
		},
		Connections: []*config.Connection{
			{From: "print/input", To: "src/data"},
			{From: "print/input", To: "src/data"},
			{From: "ghost/input", To: "src/data"},
		},
	}
	overrides := []config.Override{{Param: "ghost/x", Value: "1", Origin: "flag"}}

	err := New(newRegistry(), g).Build(ctx, model, overrides)
	require.Error(t, err)

	assert.ErrorIs(t, err, registry.ErrUnknownClass)
	assert.ErrorIs(t, err, param.ErrInvalidValue)
	assert.ErrorIs(t, err, call.ErrAlreadyBound)
	msg := err.Error()
	assert.Contains(t, msg, "module 'ghost' (graph.hcl)")
	assert.Contains(t, msg, "module 'src' (other.hcl)")
	assert.Contains(t, msg, "src/missing")
	assert.Contains(t, msg, "override ghost/x=1 from flag")
	assert.Contains(t, msg, "connection ghost/input -> src/data")

	// What could be built is still there.
	_, ok := g.Module(ctx, "src")
	assert.True(t, ok)
	assert.Len(t, g.Connections(ctx), 1)
}
