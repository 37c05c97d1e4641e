// Package saupdate implements C9: the per-thread SA-update
// dictionaries that capture the sample values needed whenever
// inserting R's characters into L would otherwise break a run without
// a usable native sample, plus their merge into three canonical
// global maps. Grounded on
// original_source/include/rimerge/r-index.hpp's RIndex::SAUpdates and
// src/r-index-rle.cpp's RIndexRLE::SAUpdatesRLE for the exact
// update_left/update_right_min/update_right_max bodies.
package saupdate

import (
	"sync"

	"github.com/marco-oliva/rimerge/internal/rindex"
)

// RightEntry is a (j, SA value) pair recorded for a right-min or
// right-max map entry.
type RightEntry struct {
	J     uint64
	Value uint64
}

// ThreadMaps is one worker's private view of the three dictionaries,
// per spec.md §4.6; workers never see another thread's maps before
// the global Merge.
type ThreadMaps struct {
	Left     map[uint64]uint64
	RightMin map[uint64]RightEntry
	RightMax map[uint64]RightEntry
}

func newThreadMaps() *ThreadMaps {
	return &ThreadMaps{
		Left:     make(map[uint64]uint64),
		RightMin: make(map[uint64]RightEntry),
		RightMax: make(map[uint64]RightEntry),
	}
}

// InsertLeft records saValue at raValue only if the key is absent,
// matching std::map::insert's first-writer-wins semantics.
func (tm *ThreadMaps) InsertLeft(raValue, saValue uint64) {
	if _, ok := tm.Left[raValue]; !ok {
		tm.Left[raValue] = saValue
	}
}

// CachedLeftPair returns the (raJ-1, raJ) sample pair if both keys are
// already present in this thread's left map.
func (tm *ThreadMaps) CachedLeftPair(raJ uint64) (prev, curr uint64, ok bool) {
	v1, ok1 := tm.Left[raJ-1]
	v2, ok2 := tm.Left[raJ]
	if ok1 && ok2 {
		return v1, v2, true
	}
	return 0, 0, false
}

// UpdateRightMin folds a (ra_j, j, sa_value) observation into this
// thread's right-min map, per SAUpdatesRLE::update_right_min.
func (tm *ThreadMaps) UpdateRightMin(left, right *rindex.RIndex, raJ, j, saValue uint64) {
	entry, ok := tm.RightMin[raJ]
	if ok {
		if j < entry.J && raJ >= 1 && left.At(raJ-1) == right.At(j) {
			delete(tm.RightMin, raJ)
		} else if j < entry.J {
			tm.RightMin[raJ] = RightEntry{J: j, Value: saValue}
		}
		return
	}
	if right.Genre(j) == rindex.NOT && (raJ < 1 || left.At(raJ-1) != right.At(j)) {
		tm.RightMin[raJ] = RightEntry{J: j, Value: saValue}
	}
}

// UpdateRightMax folds a (ra_j, j, sa_value) observation into this
// thread's right-max map, per SAUpdatesRLE::update_right_max.
func (tm *ThreadMaps) UpdateRightMax(left, right *rindex.RIndex, raJ, j, saValue uint64) {
	entry, ok := tm.RightMax[raJ]
	if ok {
		if j > entry.J && raJ < left.Size() && left.At(raJ) == right.At(j) {
			delete(tm.RightMax, raJ)
		} else if j > entry.J {
			tm.RightMax[raJ] = RightEntry{J: j, Value: saValue}
		}
		return
	}
	if raJ >= left.Size() {
		tm.RightMax[raJ] = RightEntry{J: j, Value: saValue}
		return
	}
	if right.Genre(j) == rindex.NOT && left.At(raJ) != right.At(j) {
		tm.RightMax[raJ] = RightEntry{J: j, Value: saValue}
	}
}

// Maps owns one ThreadMaps per worker plus the three canonical global
// maps produced by Merge.
type Maps struct {
	mu      sync.Mutex
	threads []*ThreadMaps

	Left     map[uint64]uint64
	RightMin map[uint64]RightEntry
	RightMax map[uint64]RightEntry
}

// New allocates Maps for the given worker count.
func New(threads int) *Maps {
	m := &Maps{
		threads:  make([]*ThreadMaps, threads),
		Left:     make(map[uint64]uint64),
		RightMin: make(map[uint64]RightEntry),
		RightMax: make(map[uint64]RightEntry),
	}
	for i := range m.threads {
		m.threads[i] = newThreadMaps()
	}
	return m
}

// Thread returns the private map set for worker t.
func (m *Maps) Thread(t int) *ThreadMaps { return m.threads[t] }

// Merge combines every thread's private maps into the canonical
// global maps, per spec.md §4.6's dominance rules: left keeps the
// first writer; right-min keeps the smallest j; right-max keeps the
// largest j. Must run after every producer has finished and before
// any consumer (C10) starts.
func (m *Maps) Merge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tm := range m.threads {
		for k, v := range tm.Left {
			if _, ok := m.Left[k]; !ok {
				m.Left[k] = v
			}
		}
		for k, v := range tm.RightMin {
			if cur, ok := m.RightMin[k]; !ok || v.J < cur.J {
				m.RightMin[k] = v
			}
		}
		for k, v := range tm.RightMax {
			if cur, ok := m.RightMax[k]; !ok || v.J > cur.J {
				m.RightMax[k] = v
			}
		}
		tm.Left = make(map[uint64]uint64)
		tm.RightMin = make(map[uint64]RightEntry)
		tm.RightMax = make(map[uint64]RightEntry)
	}
}

// FindLeft looks up the merged left map.
func (m *Maps) FindLeft(ra uint64) (uint64, bool) {
	v, ok := m.Left[ra]
	return v, ok
}

// FindRightMin looks up the merged right-min map.
func (m *Maps) FindRightMin(ra uint64) (RightEntry, bool) {
	v, ok := m.RightMin[ra]
	return v, ok
}

// FindRightMax looks up the merged right-max map.
func (m *Maps) FindRightMax(ra uint64) (RightEntry, bool) {
	v, ok := m.RightMax[ra]
	return v, ok
}
