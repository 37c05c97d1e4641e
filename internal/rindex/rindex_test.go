package rindex

import (
	"testing"

	"github.com/marco-oliva/rimerge/internal/alphabet"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestIndex builds an RIndex over the BWT of "GATTACA" (single
// sequence, data-terminator closed) with SA samples at every run
// boundary, computed from a brute-force suffix array of the same
// text.
func buildTestIndex(t *testing.T) (*RIndex, []byte) {
	text := append([]byte("GATTACA"), alphabet.DataTerminator)
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

	return New(b, samples), text
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

func TestLFIsBijection(t *testing.T) {
	idx, _ := buildTestIndex(t)
	n := idx.Size()

	seen := make(map[uint64]bool, n)
	for i := uint64(0); i < n; i++ {
		j := idx.LF(i)
		require.False(t, seen[j], "LF(%d)=%d collides", i, j)
		seen[j] = true
	}
	assert.Len(t, seen, int(n))
}

func TestFLIsInverseOfLF(t *testing.T) {
	idx, _ := buildTestIndex(t)
	n := idx.Size()
	for i := uint64(0); i < n; i++ {
		j := idx.LF(i)
		back, err := idx.FL(j)
		require.NoError(t, err)
		assert.Equal(t, i, back, "FL(LF(%d)) should round-trip", i)
	}
}

func TestGetSequenceRoundTrip(t *testing.T) {
	idx, text := buildTestIndex(t)
	got, err := idx.GetSequence(0)
	require.NoError(t, err)
	assert.Equal(t, text[:len(text)-1], got)
}

func TestGenreAtSequenceHeadsAndRunBoundaries(t *testing.T) {
	idx, _ := buildTestIndex(t)
	for i := uint64(0); i < idx.Sequences(); i++ {
		assert.NotEqual(t, NOT, idx.Genre(i))
	}
	assert.Equal(t, StartEnd, idx.Genre(0))
}

func TestValidateReportsNoMissingSamples(t *testing.T) {
	idx, _ := buildTestIndex(t)
	report := Validate(idx)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Invalid)
}

func TestValidateSAValuesConsistent(t *testing.T) {
	idx, _ := buildTestIndex(t)
	mismatches, err := ValidateSAValues(idx)
	require.NoError(t, err)
	assert.Zero(t, mismatches)
}
