package pipeline

import (
	"context"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversKeyspace(t *testing.T) {
	ranges := Partition(100, 4)
	require.Len(t, ranges, 4)
	assert.Equal(t, uint64(0), ranges[0].Start)
	assert.Equal(t, uint64(100), ranges[len(ranges)-1].End)
	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].End, ranges[i].Start)
	}
}

func TestBinPicksContainingRange(t *testing.T) {
	ranges := Partition(100, 4)
	for v := uint64(0); v < 100; v++ {
		j := Bin(v, ranges)
		assert.True(t, v >= ranges[j].Start && v < ranges[j].End, "value %d landed outside job %d's range %v", v, j, ranges[j])
	}
}

func TestPipelineRoundTripPreservesCountsAndFooters(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	opts := DefaultOptions(dir)
	opts.Jobs = 3
	opts.PosBufferSize = 64 // tiny, forces multiple flushes
	opts.ThreadBufferSize = 64

	p, err := New(ctx, opts, 300)
	require.NoError(t, err)

	producer := p.NewProducer()
	input := []uint64{5, 5, 1, 250, 120, 120, 120, 0, 299, 5}
	for _, v := range input {
		producer.Add(v)
	}

	footers, err := p.Flush()
	require.NoError(t, err)
	require.Len(t, footers, 3)

	var total uint64
	for j, f := range footers {
		total += f.Count
		if f.Count > 0 {
			assert.LessOrEqual(t, f.Min, f.Max)
		}
		r, err := OpenReader(ctx, dir, j, opts.CompressSpill)
		require.NoError(t, err)
		assert.Equal(t, f, r.Footer)
	}
	assert.Equal(t, uint64(len(input)), total)
}

func TestReaderRecoversExactMultiplicities(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	opts := DefaultOptions(dir)
	opts.Jobs = 1

	p, err := New(ctx, opts, 10)
	require.NoError(t, err)
	producer := p.NewProducer()
	for i := 0; i < 3; i++ {
		producer.Add(7)
	}
	producer.Add(2)
	_, err = p.Flush()
	require.NoError(t, err)

	r, err := OpenReader(ctx, dir, 0, opts.CompressSpill)
	require.NoError(t, err)

	counts := map[uint64]uint64{}
	for {
		v, c, ok := r.Next()
		if !ok {
			break
		}
		counts[v] += c
	}
	assert.Equal(t, uint64(1), counts[2])
	assert.Equal(t, uint64(3), counts[7])
}
