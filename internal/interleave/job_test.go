package interleave

import (
	"context"
	"sort"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/marco-oliva/rimerge/internal/alphabet"
	"github.com/marco-oliva/rimerge/internal/pipeline"
	"github.com/marco-oliva/rimerge/internal/rankarray"
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/rle"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/marco-oliva/rimerge/internal/saupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSingleSeqIndex(t *testing.T, text []byte) *rindex.RIndex {
	sa := naiveSuffixArrayOverText(text)
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

func naiveSuffixArrayOverText(text []byte) []int {
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
	sort.SliceStable(sa, func(i, j int) bool { return less(i, j) })
	return sa
}

// expectedMergedBWT brute-forces the BWT of the union of two
// single-sequence texts, each sorted by its own suffixes (never
// crossing into the other sequence), matching the merge operation's
// data model of a shared suffix-array collection.
func expectedMergedBWT(left, right []byte) []byte {
	type suffix struct {
		fromLeft bool
		pos      int
	}
	var suffixes []suffix
	for i := range left {
		suffixes = append(suffixes, suffix{true, i})
	}
	for i := range right {
		suffixes = append(suffixes, suffix{false, i})
	}
	textOf := func(s suffix) []byte {
		if s.fromLeft {
			return left[s.pos:]
		}
		return right[s.pos:]
	}
	sort.SliceStable(suffixes, func(i, j int) bool {
		a, b := textOf(suffixes[i]), textOf(suffixes[j])
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})

	out := make([]byte, len(suffixes))
	for i, s := range suffixes {
		var text []byte
		if s.fromLeft {
			text = left
		} else {
			text = right
		}
		if s.pos == 0 {
			out[i] = text[len(text)-1]
		} else {
			out[i] = text[s.pos-1]
		}
	}
	return out
}

func runMerge(t *testing.T, leftText, rightText []byte, mergeJobs, searchJobs int) []byte {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	left := buildSingleSeqIndex(t, leftText)
	right := buildSingleSeqIndex(t, rightText)

	opts := pipeline.DefaultOptions(dir)
	opts.Jobs = mergeJobs
	pipe, err := pipeline.New(ctx, opts, left.Size()+1)
	require.NoError(t, err)

	maps := saupdate.New(searchJobs)
	b := &rankarray.Builder{Left: left, Right: right, Pipeline: pipe, Maps: maps}
	require.NoError(t, b.Run(ctx, searchJobs))

	footers, err := pipe.Flush()
	require.NoError(t, err)
	maps.Merge()

	segments := make([][]byte, mergeJobs)
	metas := make([]*rle.Metadata, mergeJobs)
	for j := 0; j < mergeJobs; j++ {
		res, err := RunJob(ctx, j, left, right, maps, pipe, footers)
		require.NoError(t, err)
		segments[j] = res.Segment
		metas[j] = res.Metadata
	}

	merged, fullMeta, err := rle.MergeSegments(segments, metas)
	require.NoError(t, err)

	dec := rle.NewDecoder(merged, fullMeta)
	runs, err := dec.DecodeAll()
	require.NoError(t, err)

	var out []byte
	for _, r := range runs {
		for i := uint64(0); i < r.Length; i++ {
			out = append(out, r.Character)
		}
	}
	return out
}

func TestRunJobSingleJobMatchesBruteForceMergedBWT(t *testing.T) {
	leftText := append([]byte("GATTACA"), alphabet.DataTerminator)
	rightText := append([]byte("BANANA"), alphabet.DataTerminator)

	got := runMerge(t, leftText, rightText, 1, 1)
	want := expectedMergedBWT(leftText, rightText)
	assert.Equal(t, string(want), string(got))
}

func TestRunJobMultiJobMatchesBruteForceMergedBWT(t *testing.T) {
	leftText := append([]byte("MISSISSIPPI"), alphabet.DataTerminator)
	rightText := append([]byte("BANANA"), alphabet.DataTerminator)

	got := runMerge(t, leftText, rightText, 3, 2)
	want := expectedMergedBWT(leftText, rightText)
	assert.Equal(t, string(want), string(got))
}
