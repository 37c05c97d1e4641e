package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviousFollowingBoundaries(t *testing.T) {
	a := New()
	for _, c := range []byte{'A', 'C', 'G', 'T', StringTerminator} {
		a.Update(c)
	}
	a.Init()

	assert.Equal(t, DataTerminator, a.Previous(minObserved(a)))
	assert.Equal(t, StringTerminator, a.terminator)
}

func minObserved(a *Alphabet) byte {
	for c := 0; c < 256; c++ {
		if a.Contains(byte(c)) {
			return byte(c)
		}
	}
	return 0
}

func TestSigmaAndContains(t *testing.T) {
	a := New()
	a.Update('A')
	a.Update('C')
	a.Init()
	assert.Equal(t, 2, a.Sigma())
	assert.True(t, a.Contains('A'))
	assert.False(t, a.Contains('G'))
}
