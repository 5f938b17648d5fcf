package inmemorystore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/paramstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedInt(owner, name string) *param.Node {
	n := param.NewInt(name, 0, 0, 100)
	n.SetOwner(owner)
	return n
}

func TestAddGetRemove(t *testing.T) {
	s := New()
	ctx := context.Background()
	n := ownedInt("source", "count")

	require.NoError(t, s.Add(ctx, n))
	got, ok := s.Get(ctx, "source/count")
	require.True(t, ok)
	assert.Same(t, n, got)

	err := s.Add(ctx, ownedInt("source", "count"))
	assert.ErrorIs(t, err, paramstore.ErrDuplicateParam)

	assert.True(t, s.Remove(ctx, "source/count"))
	assert.False(t, s.Remove(ctx, "source/count"))
	_, ok = s.Get(ctx, "source/count")
	assert.False(t, ok)
}

func TestAll_SortedByFullName(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, full := range [][2]string{{"scale", "factor"}, {"source", "count"}, {"print", "verbose"}} {
		require.NoError(t, s.Add(ctx, ownedInt(full[0], full[1])))
	}

	var names []string
	for _, n := range s.All(ctx) {
		names = append(names, n.FullName())
	}
	assert.Equal(t, []string{"print/verbose", "scale/factor", "source/count"}, names)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("p%d", i)
			assert.NoError(t, s.Add(ctx, ownedInt("m", name)))
			_, ok := s.Get(ctx, "m/"+name)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.All(ctx), 32)
}
