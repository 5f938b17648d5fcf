package envparams

import (
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnviron(t *testing.T) {
	environ := []string{
		"HOME=/root",
		"PULLGRID_PARAM_src__count=16",
		"PULLGRID_PARAM_my_scale__factor=2.5",
		"PULLGRID_PARAM_seq__target=src/frame",
		"PULLGRID_TEST_LOGS=true",
	}

	got, err := FromEnviron(environ)
	require.NoError(t, err)
	assert.Equal(t, []config.Override{
		{Param: "my_scale/factor", Value: "2.5", Origin: "env:PULLGRID_PARAM_my_scale__factor"},
		{Param: "seq/target", Value: "src/frame", Origin: "env:PULLGRID_PARAM_seq__target"},
		{Param: "src/count", Value: "16", Origin: "env:PULLGRID_PARAM_src__count"},
	}, got)
}

func TestFromEnviron_Malformed(t *testing.T) {
	environ := []string{
		"PULLGRID_PARAM_count=16",
		"PULLGRID_PARAM___radius=1",
		"PULLGRID_PARAM_src__seed=3",
	}

	got, err := FromEnviron(environ)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedName)
	assert.Contains(t, err.Error(), "PULLGRID_PARAM_count")
	assert.Contains(t, err.Error(), "PULLGRID_PARAM___radius")
	require.Len(t, got, 1)
	assert.Equal(t, "src/seed", got[0].Param)
}

func TestFromEnviron_Empty(t *testing.T) {
	got, err := FromEnviron(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
