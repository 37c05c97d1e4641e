package rankarray

import (
	"context"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/marco-oliva/rimerge/internal/alphabet"
	"github.com/marco-oliva/rimerge/internal/pipeline"
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/marco-oliva/rimerge/internal/saupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIndex constructs an RIndex over text (terminator-closed) with
// a dense SA sample set, using a brute-force suffix array.
func buildIndex(t *testing.T, text []byte) *rindex.RIndex {
	sa := naiveSuffixArray(text)
	bwt := make([]byte, len(text))
	for i, s := range sa {
		if s == 0 {
			bwt[i] = text[len(text)-1]
		} else {
			bwt[i] = text[s-1]
		}
	}
	b, err := rlebwt.BuildFromString(bwt, rlebwt.DefaultBlockSize)
	require.NoError(t, err)

	samples := sasamples.New()
	for i, s := range sa {
		samples.Add(uint64(i), uint64(s))
	}
	samples.Init(uint64(len(bwt)))
	return rindex.New(b, samples)
}

func naiveSuffixArray(text []byte) []int {
	sa := make([]int, len(text))
	for i := range sa {
		sa[i] = i
	}
	less := func(i, j int) bool {
		a, b := text[sa[i]:], text[sa[j]:]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	}
	for i := 1; i < len(sa); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			sa[j], sa[j-1] = sa[j-1], sa[j]
		}
	}
	return sa
}

func TestBuilderRunEmitsOneRankPerRightPosition(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	text := append([]byte("GATTACA"), alphabet.DataTerminator)
	left := buildIndex(t, text)
	right := buildIndex(t, text)

	opts := pipeline.DefaultOptions(dir)
	opts.Jobs = 2
	pipe, err := pipeline.New(ctx, opts, left.Size()+1)
	require.NoError(t, err)

	maps := saupdate.New(2)
	b := &Builder{Left: left, Right: right, Pipeline: pipe, Maps: maps}
	require.NoError(t, b.Run(ctx, 2))

	footers, err := pipe.Flush()
	require.NoError(t, err)

	var total uint64
	for _, f := range footers {
		total += f.Count
	}
	assert.Equal(t, right.Size(), total)

	maps.Merge()
}

func TestBuilderRunIsDeterministicAcrossThreadCounts(t *testing.T) {
	ctx := context.Background()
	text := append([]byte("BANANA"), alphabet.DataTerminator)
	left := buildIndex(t, text)
	right := buildIndex(t, text)

	run := func(nThreads int) uint64 {
		dir, cleanup := testutil.TempDir(t, "", "")
		defer cleanup()
		opts := pipeline.DefaultOptions(dir)
		opts.Jobs = 3
		pipe, err := pipeline.New(ctx, opts, left.Size()+1)
		require.NoError(t, err)
		maps := saupdate.New(nThreads)
		b := &Builder{Left: left, Right: right, Pipeline: pipe, Maps: maps}
		require.NoError(t, b.Run(ctx, nThreads))
		footers, err := pipe.Flush()
		require.NoError(t, err)
		var total uint64
		for _, f := range footers {
			total += f.Count
		}
		return total
	}

	assert.Equal(t, run(1), run(4))
}
