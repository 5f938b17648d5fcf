package particles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass_FunctionTable(t *testing.T) {
	idx, ok := Class.FunctionIndex(GetData)
	assert.True(t, ok)
	assert.Equal(t, FnGetData, idx)
	idx, ok = Class.FunctionIndex(GetExtent)
	assert.True(t, ok)
	assert.Equal(t, FnGetExtent, idx)
	assert.Equal(t, "ParticleDataCall@1.0.0", Class.String())
	assert.Equal(t, ClassName, Class.NewPayload().CallClass())
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	assert.False(t, b.Valid())
	assert.Equal(t, "(empty)", b.String())

	b.Include([3]float32{1, 2, 3})
	b.Include([3]float32{-1, 0, 5})
	assert.True(t, b.Valid())
	assert.Equal(t, [3]float32{-1, 0, 3}, b.Min)
	assert.Equal(t, [3]float32{1, 2, 5}, b.Max)

	grown := b.Grow(0.5)
	assert.Equal(t, [3]float32{-1.5, -0.5, 2.5}, grown.Min)

	other := EmptyBounds()
	other.Include([3]float32{10, 10, 10})
	u := b.Union(other)
	assert.Equal(t, [3]float32{10, 10, 10}, u.Max)
	assert.Equal(t, b, b.Union(EmptyBounds()))
}

func TestClampFrame(t *testing.T) {
	testCases := []struct{ frame, count, want int }{
		{0, 4, 0},
		{5, 4, 1},
		{-1, 4, 3},
		{3, 0, 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ClampFrame(tc.frame, tc.count))
	}
}

func TestPayload_UnlockIsIdempotent(t *testing.T) {
	p := &Payload{}
	assert.NotPanics(t, func() {
		p.Unlock()
		p.Unlock()
	})
}
