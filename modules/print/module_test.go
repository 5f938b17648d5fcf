package print

import (
	"strings"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/testutil"
	"github.com/specialistvlad/pullgridgo/modules/particlesource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_PrintsOnlyOnChange(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	var out testutil.SafeBuffer
	printer := NewWithWriter("print", &out)
	testutil.AddModules(t, ctx, g, particlesource.New("src"), printer)
	testutil.Bind(t, ctx, g, "print/input", "src/data")

	require.NoError(t, printer.Frame(ctx, 0))
	require.NoError(t, printer.Frame(ctx, 0))
	assert.Equal(t, 1, strings.Count(out.String(), "print: frame"), "unchanged data is printed once")
	assert.Contains(t, out.String(), "hash 1 particles 128")

	require.NoError(t, g.SetParam(ctx, "src/count", "4"))
	require.NoError(t, printer.Frame(ctx, 0))
	assert.Contains(t, out.String(), "hash 2 particles 4")
	assert.Equal(t, uint64(2), printer.LastHash())
}

func TestPrinter_Verbose(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	var out testutil.SafeBuffer
	printer := NewWithWriter("print", &out)
	testutil.AddModules(t, ctx, g, particlesource.New("src"), printer)
	testutil.Bind(t, ctx, g, "print/input", "src/data")

	require.NoError(t, printer.Frame(ctx, 0))
	assert.NotContains(t, out.String(), "[0]")

	// Changing options reprints the same data.
	require.NoError(t, g.SetParam(ctx, "print/verbose", "true"))
	require.NoError(t, g.SetParam(ctx, "print/limit", "2"))
	require.NoError(t, printer.Frame(ctx, 0))
	assert.Contains(t, out.String(), "[0]")
	assert.Contains(t, out.String(), "[1]")
	assert.NotContains(t, out.String(), "[2]")
	assert.Equal(t, 2, strings.Count(out.String(), "print: frame"))
}

func TestPrinter_FailureKeepsLastState(t *testing.T) {
	ctx, g, logs := testutil.NewGraph(t)
	var out testutil.SafeBuffer
	printer := NewWithWriter("print", &out)
	testutil.AddModules(t, ctx, g, particlesource.New("src"), printer)

	err := printer.Frame(ctx, 0)
	assert.ErrorIs(t, err, call.ErrNotConnected)
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "Print failed to pull input.")

	testutil.Bind(t, ctx, g, "print/input", "src/data")
	require.NoError(t, printer.Frame(ctx, 0))
	assert.Equal(t, uint64(1), printer.LastHash())

	require.NoError(t, g.Unbind(ctx, "print/input"))
	require.Error(t, printer.Frame(ctx, 0))
	assert.Equal(t, uint64(1), printer.LastHash())
}
