package saupdate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertLeftFirstWriterWins(t *testing.T) {
	tm := newThreadMaps()
	tm.InsertLeft(5, 100)
	tm.InsertLeft(5, 999)
	assert.Equal(t, uint64(100), tm.Left[5])
}

func TestCachedLeftPair(t *testing.T) {
	tm := newThreadMaps()
	_, _, ok := tm.CachedLeftPair(10)
	assert.False(t, ok)

	tm.Left[9] = 1
	tm.Left[10] = 2
	prev, curr, ok := tm.CachedLeftPair(10)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), prev)
	assert.Equal(t, uint64(2), curr)
}

func TestMergeLeftFirstWriterAcrossThreads(t *testing.T) {
	m := New(2)
	m.Thread(0).InsertLeft(7, 10)
	m.Thread(1).InsertLeft(7, 20)
	m.Merge()

	v, ok := m.FindLeft(7)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), v)
}

func TestMergeRightMinKeepsSmallestJ(t *testing.T) {
	m := New(2)
	m.Thread(0).RightMin[3] = RightEntry{J: 5, Value: 50}
	m.Thread(1).RightMin[3] = RightEntry{J: 2, Value: 20}
	m.Merge()

	v, ok := m.FindRightMin(3)
	assert.True(t, ok)
	assert.Equal(t, RightEntry{J: 2, Value: 20}, v)
}

func TestMergeRightMaxKeepsLargestJ(t *testing.T) {
	m := New(2)
	m.Thread(0).RightMax[3] = RightEntry{J: 5, Value: 50}
	m.Thread(1).RightMax[3] = RightEntry{J: 9, Value: 90}
	m.Merge()

	v, ok := m.FindRightMax(3)
	assert.True(t, ok)
	assert.Equal(t, RightEntry{J: 9, Value: 90}, v)
}

func TestMergeClearsThreadMaps(t *testing.T) {
	m := New(1)
	m.Thread(0).InsertLeft(1, 1)
	m.Merge()
	assert.Empty(t, m.Thread(0).Left)
}
