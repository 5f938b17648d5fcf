package collectiveprovider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/pullgridgo/calls/collective"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/registry"
	"github.com/specialistvlad/pullgridgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/specialistvlad/pullgridgo/internal/collective"
)

type requester struct {
	module.Base
	out *module.Outbound
}

func newRequester(name string) *requester {
	r := &requester{}
	r.Init("Requester", name, "")
	return r
}

func (r *requester) OnCreate(ctx context.Context) error {
	r.out = r.AddOutbound("collective", "").SetCompatibleCall(collective.ClassName, "^1")
	return nil
}

func (r *requester) OnRelease(ctx context.Context) {}

func TestProvider_ResolvesGroupFromParameter(t *testing.T) {
	var groups []int
	shared := core.New(func(ctx context.Context, group int) (*core.Handle, error) {
		groups = append(groups, group)
		return core.LocalSetup(ctx, group)
	}, nil)

	ctx, g, _ := testutil.NewGraph(t)
	p := NewWithContext("mpi", shared)
	req := newRequester("req")
	testutil.AddModules(t, ctx, g, p, req)
	testutil.Bind(t, ctx, g, "req/collective", "mpi/provider")
	require.NoError(t, g.SetParam(ctx, "mpi/groupKey", "5"))

	h, err := collective.Request(ctx, req.out, collective.ProviderGroup)
	require.NoError(t, err)
	assert.Equal(t, 5, h.Group)

	again, err := collective.Request(ctx, req.out, 9)
	require.NoError(t, err)
	assert.Same(t, h, again, "the handle is created once")
	assert.Equal(t, []int{5}, groups)
	assert.Empty(t, testutil.DirtyParams(p))
}

func TestProvider_RefcountsTheSharedContext(t *testing.T) {
	var teardowns atomic.Int32
	shared := core.New(nil, func(ctx context.Context, h *core.Handle) { teardowns.Add(1) })

	ctx, g, _ := testutil.NewGraph(t)
	req := newRequester("req")
	testutil.AddModules(t, ctx, g, NewWithContext("a", shared), NewWithContext("b", shared), req)
	assert.Equal(t, 2, shared.Owners())

	testutil.Bind(t, ctx, g, "req/collective", "a/provider")
	_, err := collective.Request(ctx, req.out, collective.ProviderGroup)
	require.NoError(t, err)

	require.NoError(t, g.RemoveModule(ctx, "a"))
	assert.Equal(t, 1, shared.Owners())
	_, ok := shared.Handle()
	assert.True(t, ok, "the handle survives while an owner remains")

	require.NoError(t, g.RemoveModule(ctx, "b"))
	assert.Equal(t, 0, shared.Owners())
	assert.Equal(t, int32(1), teardowns.Load())
}

func TestProvider_SetupFailure(t *testing.T) {
	shared := core.New(func(ctx context.Context, group int) (*core.Handle, error) {
		return nil, errors.New("no network")
	}, nil)

	ctx, g, logs := testutil.NewGraph(t)
	req := newRequester("req")
	testutil.AddModules(t, ctx, g, NewWithContext("mpi", shared), req)
	testutil.Bind(t, ctx, g, "req/collective", "mpi/provider")

	_, err := collective.Request(ctx, req.out, collective.ProviderGroup)
	assert.ErrorIs(t, err, core.ErrSetupFailed)
	assert.Contains(t, logs.String(), "Collective setup failed.")
}

func TestModule_Register(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	mc, ok := r.ModuleClass(ClassName)
	require.True(t, ok)
	assert.Equal(t, []string{collective.ClassName}, mc.Calls)
	_, ok = r.Call(collective.ClassName)
	assert.True(t, ok)
}
