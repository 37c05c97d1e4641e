package rlebwt

// Accessor is an LRU-8 position->symbol cache in front of At, avoiding
// repeated run-boundary scans for dense access patterns such as the
// interleave loop (C10), per spec.md §4.2.
type Accessor struct {
	bwt     *RLEBWT
	size    int
	next    int
	entries [8]accessorEntry
}

type accessorEntry struct {
	pos   uint64
	valid bool
	c     byte
}

func newAccessor(b *RLEBWT) *Accessor {
	return &Accessor{bwt: b, size: 8}
}

// Get returns the symbol at position i, consulting and updating the
// cache.
func (a *Accessor) Get(i uint64) byte {
	for k := 0; k < a.size; k++ {
		if a.entries[k].valid && a.entries[k].pos == i {
			e := a.entries[k]
			copy(a.entries[1:k+1], a.entries[:k])
			a.entries[0] = e
			return e.c
		}
	}
	c := a.bwt.atUncached(i)
	copy(a.entries[1:a.size], a.entries[:a.size-1])
	a.entries[0] = accessorEntry{pos: i, valid: true, c: c}
	return c
}

// RunCache is a 2-entry cache of recently accessed Runs; a position
// that falls within a cached run resolves in O(1), per spec.md §4.2.
type RunCache struct {
	bwt     *RLEBWT
	next    int
	entries [2]cachedRun
}

type cachedRun struct {
	valid      bool
	start, end uint64
	c          byte
}

func newRunCache(b *RLEBWT) *RunCache {
	return &RunCache{bwt: b}
}

// Get returns the symbol at position pos.
func (rc *RunCache) Get(pos uint64) byte {
	for i := 0; i < len(rc.entries); i++ {
		e := rc.entries[i]
		if e.valid && pos >= e.start && pos <= e.end {
			return e.c
		}
	}
	idx, end := rc.bwt.runOf(pos)
	start, _ := rc.bwt.RunRange(idx)
	c := rc.bwt.runHeads.Access(idx)
	rc.entries[rc.next] = cachedRun{valid: true, start: start, end: end, c: c}
	rc.next = (rc.next + 1) % len(rc.entries)
	return c
}
