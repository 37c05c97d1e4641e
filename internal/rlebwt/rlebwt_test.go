package rlebwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naiveRank(s []byte, i int, c byte) uint64 {
	var n uint64
	for p := 0; p < i; p++ {
		if s[p] == c {
			n++
		}
	}
	return n
}

func naiveSelect(s []byte, i int, c byte) uint64 {
	count := -1
	for p, b := range s {
		if b == c {
			count++
			if count == i {
				return uint64(p)
			}
		}
	}
	panic("not found")
}

func TestAtRankSelectAgainstNaive(t *testing.T) {
	s := []byte("GATTACAGATTACATATATATACCCCGGGG")
	bwt, err := BuildFromString(s, DefaultBlockSize)
	require.NoError(t, err)

	require.Equal(t, uint64(len(s)), bwt.Size())

	for i, c := range s {
		assert.Equal(t, c, bwt.At(uint64(i)), "at(%d)", i)
	}

	for _, c := range []byte("GATCGA") {
		for i := 0; i <= len(s); i++ {
			assert.Equal(t, naiveRank(s, i, c), bwt.Rank(uint64(i), c), "rank(%d,%q)", i, c)
		}
	}

	distinct := map[byte]bool{}
	for _, c := range s {
		distinct[c] = true
	}
	for c := range distinct {
		count := int(bwt.SizePerChar(c))
		for i := 0; i < count; i++ {
			want := naiveSelect(s, i, c)
			got, err := bwt.Select(uint64(i), c)
			require.NoError(t, err)
			assert.Equal(t, want, got, "select(%d,%q)", i, c)
		}
	}
}

func TestBlockSizeGreaterThanOne(t *testing.T) {
	s := []byte("AAABBBCCCDDDAAAEEEFFFGGGHHHIIIJJJ")
	bwt, err := BuildFromString(s, 3)
	require.NoError(t, err)
	for i, c := range s {
		assert.Equal(t, c, bwt.At(uint64(i)), "at(%d)", i)
	}
}

func TestRunRangeCoversWholeString(t *testing.T) {
	s := []byte("AAABBBCCCCA")
	bwt, err := BuildFromString(s, DefaultBlockSize)
	require.NoError(t, err)

	var pos uint64
	it := bwt.RunIter()
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		assert.Equal(t, pos, r.Offset)
		for p := r.Offset; p <= r.End; p++ {
			assert.Equal(t, r.Character, s[p])
		}
		pos = r.End + 1
	}
	assert.Equal(t, uint64(len(s)), pos)
}

func TestBreakRange(t *testing.T) {
	s := []byte("AAABBBAAACCCAAA")
	bwt, err := BuildFromString(s, DefaultBlockSize)
	require.NoError(t, err)

	ranges, err := bwt.BreakRange(Range{0, uint64(len(s) - 1)}, 'A')
	require.NoError(t, err)
	// Three maximal A-runs: [0,2], [6,8], [12,14].
	require.Len(t, ranges, 3)
	assert.Equal(t, Range{0, 2}, ranges[0])
	assert.Equal(t, Range{6, 8}, ranges[1])
	assert.Equal(t, Range{12, 14}, ranges[2])
}

func TestRunAtLengths(t *testing.T) {
	s := []byte("AAABBBBBCCA")
	bwt, err := BuildFromString(s, DefaultBlockSize)
	require.NoError(t, err)
	lengths := []uint64{3, 5, 2, 1}
	for i, want := range lengths {
		assert.Equal(t, want, bwt.runAt(i))
	}
}
