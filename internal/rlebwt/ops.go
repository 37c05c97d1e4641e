package rlebwt

import "github.com/pkg/errors"

// runAt returns the length of the i-th run (0-indexed), per
// original_source's RLEString::run_at: the length is the gap in the
// per-letter bit-vector at the run's rank among same-symbol runs.
func (b *RLEBWT) runAt(i int) uint64 {
	c := b.runHeads.Access(i)
	k := b.runHeads.Rank(i, c)
	g, err := b.runsPerLetter[c].Gap(k)
	if err != nil {
		return 0
	}
	return uint64(g)
}

// runOf locates the run containing string position i, scanning
// forward at most blockSize runs from the preceding sampled boundary,
// per spec.md §4.2. It returns the run index and the run's end
// position (inclusive).
func (b *RLEBWT) runOf(i uint64) (int, uint64) {
	lastBlock := b.runs.Rank(int(i))
	currentRun := lastBlock * b.blockSize
	var pos uint64
	if lastBlock > 0 {
		p, _ := b.runs.Select(lastBlock - 1)
		pos = uint64(p) + 1
	}
	for pos < i {
		pos += b.runAt(currentRun)
		currentRun++
	}
	if pos > i {
		currentRun--
	} else {
		pos += b.runAt(currentRun)
	}
	return currentRun, pos - 1
}

// RunOfPosition returns the index of the run containing string
// position i.
func (b *RLEBWT) RunOfPosition(i uint64) int {
	lastBlock := b.runs.Rank(int(i))
	currentRun := lastBlock * b.blockSize
	var pos uint64
	if lastBlock > 0 {
		p, _ := b.runs.Select(lastBlock - 1)
		pos = uint64(p) + 1
	}
	var dist uint64
	if i >= pos {
		dist = i - pos
	}
	for pos < i {
		pos += b.runAt(currentRun)
		currentRun++
		if pos <= i {
			dist = i - pos
		}
	}
	_ = dist
	if pos > i {
		currentRun--
	}
	return currentRun
}

// At returns the symbol at string position i.
func (b *RLEBWT) At(i uint64) byte {
	return b.accessor.Get(i)
}

// atUncached is the uncached implementation used by Accessor.
func (b *RLEBWT) atUncached(i uint64) byte {
	idx, _ := b.runOf(i)
	return b.runHeads.Access(idx)
}

// Rank returns the number of c's in BWT[0, i).
func (b *RLEBWT) Rank(i uint64, c byte) uint64 {
	if b.runsPerLetter[c].Len() == 0 {
		return 0
	}
	if i == b.n {
		return b.sizePerChar[c]
	}
	lastBlock := b.runs.Rank(int(i))
	currentRun := lastBlock * b.blockSize
	var pos uint64
	if lastBlock > 0 {
		p, _ := b.runs.Select(lastBlock - 1)
		pos = uint64(p) + 1
	}
	var dist uint64
	if i >= pos {
		dist = i - pos
	}
	for pos < i {
		pos += b.runAt(currentRun)
		currentRun++
		if pos <= i {
			dist = i - pos
		}
	}
	if pos > i {
		currentRun--
	}

	rk := b.runHeads.Rank(currentRun, c)
	var tail uint64
	if b.runHeads.Access(currentRun) == c {
		tail = dist
	}
	if rk == 0 {
		return tail
	}
	sel, _ := b.runsPerLetter[c].Select(rk - 1)
	return uint64(sel) + 1 + tail
}

// Select returns the position of the (i+1)-th occurrence of c
// (0-indexed), per spec.md §4.2.
func (b *RLEBWT) Select(i uint64, c byte) (uint64, error) {
	if int(i) >= b.runsPerLetter[c].Len() {
		return 0, errors.Errorf("rlebwt: select(%d, %q) out of range (only %d occurrences)", i, c, b.runsPerLetter[c].Len())
	}
	j := b.runsPerLetter[c].Rank(int(i))
	var before uint64
	if j == 0 {
		before = i
	} else {
		sel, _ := b.runsPerLetter[c].Select(j - 1)
		before = i - (uint64(sel) + 1)
	}
	r := b.runHeads.Select(j, c)
	if r < 0 {
		return 0, errors.Errorf("rlebwt: no %d-th run of %q", j, c)
	}
	var k uint64
	if r/b.blockSize > 0 {
		sel, _ := b.runs.Select(r/b.blockSize - 1)
		k = uint64(sel) + 1
	}
	for t := (r / b.blockSize) * b.blockSize; t < r; t++ {
		k += b.runAt(t)
	}
	return k + before, nil
}

// RunRange returns the inclusive [start, end] string-position range of
// run j.
func (b *RLEBWT) RunRange(j int) (uint64, uint64) {
	thisBlock := j / b.blockSize
	currentRun := thisBlock * b.blockSize
	var pos uint64
	if thisBlock > 0 {
		sel, _ := b.runs.Select(thisBlock - 1)
		pos = uint64(sel) + 1
	}
	for currentRun < j {
		pos += b.runAt(currentRun)
		currentRun++
	}
	return pos, pos + b.runAt(j) - 1
}

// Range is an inclusive [Start, End] string-position range.
type Range struct {
	Start, End uint64
}

// BreakRange breaks rn into maximal sub-ranges each lying inside a
// single c-run, per spec.md §4.2. Both endpoints of rn must hold
// character c.
func (b *RLEBWT) BreakRange(rn Range, c byte) ([]Range, error) {
	if b.At(rn.Start) != c || b.At(rn.End) != c {
		return nil, errors.Errorf("rlebwt: break_range endpoints must both be %q", c)
	}
	runL, endL := b.runOf(rn.Start)
	runR, _ := b.runOf(rn.End)
	if runL == runR {
		return []Range{rn}, nil
	}

	var result []Range
	result = append(result, Range{rn.Start, endL})

	rankL := b.runHeads.Rank(runL, c)
	rankR := b.runHeads.Rank(runR, c)

	for j := rankL + 1; j < rankR; j++ {
		sel := b.runHeads.Select(j, c)
		start, end := b.RunRange(sel)
		result = append(result, Range{start, end})
	}

	sel := b.runHeads.Select(rankR, c)
	start, _ := b.RunRange(sel)
	result = append(result, Range{start, rn.End})

	return result, nil
}
