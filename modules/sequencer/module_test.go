package sequencer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holder struct {
	module.Base
	nodes []*param.Node
}

func newHolder(name string, nodes ...*param.Node) *holder {
	h := &holder{nodes: nodes}
	h.Init("Holder", name, "")
	return h
}

func (h *holder) OnCreate(ctx context.Context) error {
	for _, n := range h.nodes {
		h.AddParam(n)
	}
	return nil
}

func (h *holder) OnRelease(ctx context.Context) {}

func TestStepName(t *testing.T) {
	testCases := []struct {
		in    string
		delta int
		want  string
		err   bool
	}{
		{in: "data_009.bin", delta: 1, want: "data_010.bin"},
		{in: "/tmp/run/frame7", delta: -2, want: "/tmp/run/frame5"},
		{in: "a1b22.dat", delta: 3, want: "a1b25.dat"},
		{in: "99.raw", delta: 1, want: "100.raw"},
		{in: "x_000.bin", delta: -1, err: true},
		{in: "plain.bin", delta: 1, err: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := StepName(tc.in, tc.delta)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSequencer_StepsIntegerTarget(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	seq := New("seq").(*Sequencer)
	testutil.AddModules(t, ctx, g, newHolder("src", param.NewInt("frame", 0, 0, 10)), seq)
	require.NoError(t, g.SetParam(ctx, "seq/target", "src/frame"))

	require.NoError(t, g.PressParam(ctx, "seq/next"))
	require.NoError(t, g.PressParam(ctx, "seq/next"))
	require.NoError(t, g.PressParam(ctx, "seq/next"))
	require.NoError(t, g.PressParam(ctx, "seq/prev"))
	require.NoError(t, seq.Frame(ctx, 0))

	frame, _ := g.Param("src/frame")
	assert.Equal(t, 2, frame.Int())
	assert.True(t, frame.IsDirty())

	// Nothing pressed: nothing changes.
	require.NoError(t, seq.Frame(ctx, 1))
	assert.Equal(t, 2, frame.Int())
	assert.Empty(t, testutil.DirtyParams(seq), "target and buttons are clean once the frame ran")
}

func TestSequencer_RangeErrorKeepsValue(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	seq := New("seq").(*Sequencer)
	testutil.AddModules(t, ctx, g, newHolder("src", param.NewInt("frame", 10, 0, 10)), seq)
	require.NoError(t, g.SetParam(ctx, "seq/target", "src/frame"))
	require.NoError(t, g.PressParam(ctx, "seq/next"))

	err := seq.Frame(ctx, 0)
	assert.ErrorIs(t, err, param.ErrInvalidValue)
	frame, _ := g.Param("src/frame")
	assert.Equal(t, 10, frame.Int())
}

func TestSequencer_StepsFilePath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"snap_01.bin", "snap_02.bin"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	ctx, g, _ := testutil.NewGraph(t)
	seq := New("seq").(*Sequencer)
	file := param.NewFilePath("file", filepath.Join(dir, "snap_01.bin"))
	testutil.AddModules(t, ctx, g, newHolder("loader", file), seq)
	require.NoError(t, g.SetParam(ctx, "seq/target", "loader/file"))

	require.NoError(t, seq.Step(ctx, 1))
	assert.Equal(t, filepath.Join(dir, "snap_02.bin"), file.Text())

	err := seq.Step(ctx, 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, filepath.Join(dir, "snap_02.bin"), file.Text())
}

func TestSequencer_TargetErrors(t *testing.T) {
	ctx, g, logs := testutil.NewGraph(t)
	seq := New("seq").(*Sequencer)
	testutil.AddModules(t, ctx, g, newHolder("src", param.NewBool("flag", false)), seq)

	require.NoError(t, seq.Step(ctx, 1))
	assert.Contains(t, logs.String(), "no target parameter")

	require.NoError(t, g.SetParam(ctx, "seq/target", "src/missing"))
	assert.ErrorIs(t, seq.Step(ctx, 1), ErrTargetNotFound)

	require.NoError(t, g.SetParam(ctx, "seq/target", "src/flag"))
	assert.ErrorIs(t, seq.Step(ctx, 1), ErrUnsupportedTarget)
}
