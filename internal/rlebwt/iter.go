package rlebwt

// RunIterator is a lazy, restartable finite sequence of Runs starting
// at run index 0 (or the run containing a given position), per
// spec.md §4.2 run_iter.
type RunIterator struct {
	bwt  *RLEBWT
	rPos int
}

// RunIter returns an iterator starting at run 0.
func (b *RLEBWT) RunIter() *RunIterator {
	return &RunIterator{bwt: b}
}

// RunIterAt returns an iterator starting at the run containing
// position i.
func (b *RLEBWT) RunIterAt(i uint64) *RunIterator {
	idx, _ := b.runOf(i)
	return &RunIterator{bwt: b, rPos: idx}
}

// IterRun describes the current run an iterator points to.
type IterRun struct {
	Offset, End uint64
	Character   byte
}

// Done reports whether the iterator has exhausted all runs.
func (it *RunIterator) Done() bool {
	return it.rPos >= it.bwt.r
}

// Next returns the current run and advances the iterator.
func (it *RunIterator) Next() (IterRun, bool) {
	if it.Done() {
		return IterRun{}, false
	}
	start, end := it.bwt.RunRange(it.rPos)
	c := it.bwt.runHeads.Access(it.rPos)
	it.rPos++
	return IterRun{Offset: start, End: end, Character: c}, true
}
