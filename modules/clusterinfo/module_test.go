package clusterinfo

import (
	"strings"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/testutil"
	"github.com/specialistvlad/pullgridgo/modules/collectiveprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/specialistvlad/pullgridgo/internal/collective"
)

func TestInfo_LogsHandleOnce(t *testing.T) {
	shared := core.New(nil, nil)
	ctx, g, logs := testutil.NewGraph(t)
	info := New("info").(*Info)
	testutil.AddModules(t, ctx, g, collectiveprovider.NewWithContext("mpi", shared), info)
	testutil.Bind(t, ctx, g, "info/collective", "mpi/provider")
	require.NoError(t, g.SetParam(ctx, "mpi/groupKey", "3"))

	require.NoError(t, info.Frame(ctx, 0))
	require.NoError(t, info.Frame(ctx, 1))

	h := info.Handle()
	require.NotNil(t, h)
	assert.Equal(t, 3, h.Group)
	assert.Equal(t, 0, h.Rank)
	assert.Equal(t, 1, h.Size)
	assert.Equal(t, 1, strings.Count(logs.String(), "Collective handle obtained."))
}

func TestInfo_ExplicitGroup(t *testing.T) {
	shared := core.New(nil, nil)
	ctx, g, _ := testutil.NewGraph(t)
	info := New("info").(*Info)
	testutil.AddModules(t, ctx, g, collectiveprovider.NewWithContext("mpi", shared), info)
	testutil.Bind(t, ctx, g, "info/collective", "mpi/provider")
	require.NoError(t, g.SetParam(ctx, "info/groupKey", "11"))

	require.NoError(t, info.Frame(ctx, 0))
	assert.Equal(t, 11, info.Handle().Group)
}

func TestInfo_Unbound(t *testing.T) {
	ctx, g, _ := testutil.NewGraph(t)
	info := New("info").(*Info)
	testutil.AddModules(t, ctx, g, info)

	assert.ErrorIs(t, info.Frame(ctx, 0), call.ErrNotConnected)
	assert.Nil(t, info.Handle())
}

func TestInfo_GroupKeyCleanOnlyAfterSuccessfulRequest(t *testing.T) {
	shared := core.New(nil, nil)
	ctx, g, _ := testutil.NewGraph(t)
	info := New("info").(*Info)
	provider := collectiveprovider.NewWithContext("mpi", shared)
	testutil.AddModules(t, ctx, g, provider, info)
	require.NoError(t, g.SetParam(ctx, "info/groupKey", "5"))
	require.NoError(t, g.SetParam(ctx, "mpi/groupKey", "5"))

	require.ErrorIs(t, info.Frame(ctx, 0), call.ErrNotConnected)
	assert.Equal(t, []string{"info/groupKey"}, testutil.DirtyParams(info))

	testutil.Bind(t, ctx, g, "info/collective", "mpi/provider")
	require.NoError(t, info.Frame(ctx, 1))
	assert.Equal(t, 5, info.Handle().Group)
	assert.Empty(t, testutil.DirtyParams(info))
	assert.Empty(t, testutil.DirtyParams(provider))
}
