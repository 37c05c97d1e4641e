package sasamples

import (
	"context"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSampledAndUnsampled(t *testing.T) {
	s := New()
	s.Add(5, 100)
	s.Add(2, 20)
	s.Add(8, 80)
	s.Init(10)

	assert.Equal(t, uint64(20), s.Get(2))
	assert.Equal(t, uint64(100), s.Get(5))
	assert.Equal(t, uint64(80), s.Get(8))
	assert.Equal(t, InvalidValue, s.Get(0))
	assert.Equal(t, InvalidValue, s.Get(9))
	assert.True(t, s.Has(5))
	assert.False(t, s.Has(6))
	assert.Equal(t, 3, s.Len())
}

func TestInitCoalescesDuplicatePositions(t *testing.T) {
	s := New()
	s.Add(3, 1)
	s.Add(3, 2) // last writer wins
	s.Init(5)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, uint64(2), s.Get(3))
}

func TestAllReturnsAscendingOrder(t *testing.T) {
	s := New()
	s.Add(9, 1)
	s.Add(0, 2)
	s.Add(4, 3)
	s.Init(10)

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []Sample{{0, 2}, {4, 3}, {9, 1}}, all)
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	path := storage.SamplesPath(dir)

	s := New()
	s.Add(0, 111)
	s.Add(50, 222)
	s.Add(99, 333)
	s.Init(100)

	require.NoError(t, s.WriteTo(ctx, path))

	loaded, err := Load(ctx, path, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(111), loaded.Get(0))
	assert.Equal(t, uint64(222), loaded.Get(50))
	assert.Equal(t, uint64(333), loaded.Get(99))
	assert.Equal(t, InvalidValue, loaded.Get(1))
}
