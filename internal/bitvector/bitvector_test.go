package bitvector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naiveRank(set map[int]bool, i int) int {
	c := 0
	for p := 0; p < i; p++ {
		if set[p] {
			c++
		}
	}
	return c
}

func TestDenseRankSelect(t *testing.T) {
	n := 500
	positions := []int{0, 1, 5, 63, 64, 65, 127, 128, 400, 499}
	set := map[int]bool{}
	for _, p := range positions {
		set[p] = true
	}
	d := NewDense(n, positions)
	require.Equal(t, len(positions), d.Ones())

	for i := 0; i <= n; i++ {
		assert.Equal(t, naiveRank(set, i), d.Rank(i), "rank mismatch at %d", i)
	}
	for i, p := range positions {
		got, err := d.Select(i)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := d.Select(len(positions))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSparseRankSelect(t *testing.T) {
	rand.Seed(1)
	n := 10000
	set := map[int]bool{}
	var positions []int
	for i := 0; i < 200; i++ {
		p := rand.Intn(n)
		if !set[p] {
			set[p] = true
			positions = append(positions, p)
		}
	}
	s := NewSparse(n, positions)
	require.Equal(t, len(set), s.Ones())

	for _, i := range []int{0, 1, 17, 100, 999, 5000, n - 1, n} {
		assert.Equal(t, naiveRank(set, i), s.Rank(i), "rank mismatch at %d", i)
	}

	sortedPositions := s.Positions()
	for i, p := range sortedPositions {
		got, err := s.Select(i)
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.True(t, s.At(p))
	}
}

func TestSparseGap(t *testing.T) {
	s := NewSparse(100, []int{4, 10, 11, 50})
	g0, err := s.Gap(0)
	require.NoError(t, err)
	assert.Equal(t, 5, g0) // select(0)+1 = 4+1
	g1, err := s.Gap(1)
	require.NoError(t, err)
	assert.Equal(t, 6, g1) // 10-4
	g2, err := s.Gap(2)
	require.NoError(t, err)
	assert.Equal(t, 1, g2) // 11-10
}

func TestPredecessor(t *testing.T) {
	s := NewSparse(100, []int{4, 10, 11, 50})
	pos, err := Predecessor(s, 12)
	require.NoError(t, err)
	assert.Equal(t, 11, pos)
}
