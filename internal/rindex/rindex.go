// Package rindex implements C6: the r-index object binding an
// Alphabet, an RLE BWT container, and an SA-sample store, exposing
// LF/FL navigation, sample-genre classification, and sequence
// extraction. Grounded on
// original_source/include/rimerge/r-index.hpp (the single-sample-store
// CRTP base, closer to spec.md §3/§4.3 than rindex.hpp's two-vector
// starts/ends variant) and src/r-index-rle.cpp for the concrete
// F-column and LF/FL/its/get_sequence bodies.
package rindex

import (
	"github.com/marco-oliva/rimerge/internal/alphabet"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/pkg/errors"
)

const alphabetSize = 256

// RIndex is a compressed r-index: an RLE BWT, its observed alphabet,
// an SA-sample store, and the prefix-sum F column.
type RIndex struct {
	Alphabet *alphabet.Alphabet
	BWT      *rlebwt.RLEBWT
	Samples  *sasamples.Store

	f                     [alphabetSize + 1]uint64
	terminator            byte
	terminatorPosition    uint64
	sequences             uint64
}

// New builds an RIndex directly from an already-constructed RLEBWT
// and SA-sample store, computing the alphabet and F column by
// scanning bwt.runs_per_letter sizes, per
// RIndexRLE::read_bwt.
func New(bwt *rlebwt.RLEBWT, samples *sasamples.Store) *RIndex {
	idx := &RIndex{BWT: bwt, Samples: samples, terminator: alphabet.DataTerminator}
	a := alphabet.New()

	for c := 0; c < alphabetSize; c++ {
		size := bwt.SizePerChar(byte(c))
		idx.f[c] = size
		if size > 0 {
			a.Update(byte(c))
		}
		if byte(c) == alphabet.StringTerminator {
			idx.sequences = size
		}
	}
	// f currently holds per-symbol counts at index c; shift right by one
	// and prefix-sum, matching read_bwt's two passes.
	for c := alphabetSize; c > 0; c-- {
		idx.f[c] = idx.f[c-1]
	}
	idx.f[0] = 0
	for c := 1; c <= alphabetSize; c++ {
		idx.f[c] += idx.f[c-1]
	}

	if bwt.Size() != 0 && idx.sequences == 0 {
		idx.sequences = 1
	}

	a.Init()
	idx.Alphabet = a

	if a.Contains(alphabet.StringTerminator) {
		idx.terminator = alphabet.StringTerminator
	}
	idx.terminatorPosition = idx.findTerminatorPosition()
	return idx
}

func (idx *RIndex) findTerminatorPosition() uint64 {
	if idx.BWT.Size() == 0 {
		return 0
	}
	for i := uint64(0); i < idx.BWT.Size(); i++ {
		if idx.BWT.At(i) == alphabet.DataTerminator {
			return i
		}
	}
	return 0
}

// Size returns n, the BWT length.
func (idx *RIndex) Size() uint64 { return idx.BWT.Size() }

// Empty reports whether the index is over the empty string.
func (idx *RIndex) Empty() bool { return idx.Size() == 0 }

// Sequences returns the number of sequences represented.
func (idx *RIndex) Sequences() uint64 { return idx.sequences }

// Sigma returns the alphabet size.
func (idx *RIndex) Sigma() int { return idx.Alphabet.Sigma() }

// Runs returns the run count.
func (idx *RIndex) Runs() int { return idx.BWT.NumberOfRuns() }

// EndMarker returns the position of the data terminator.
func (idx *RIndex) EndMarker() uint64 { return idx.terminatorPosition }

// Terminator returns the terminator byte used by this index (the
// string terminator if any sequence boundary used it, else the data
// terminator).
func (idx *RIndex) Terminator() byte { return idx.terminator }

// At returns the BWT symbol at position i.
func (idx *RIndex) At(i uint64) byte { return idx.BWT.At(i) }

// Rank returns the number of c's in BWT[0, i).
func (idx *RIndex) Rank(i uint64, c byte) uint64 { return idx.BWT.Rank(i, c) }

// Select returns the position of the (i+1)-th occurrence of c.
func (idx *RIndex) Select(i uint64, c byte) (uint64, error) { return idx.BWT.Select(i, c) }

// F returns F[c], the count of BWT symbols strictly less than c.
func (idx *RIndex) F(c byte) uint64 { return idx.f[c] }

// FullRange returns the full BWT range [0, n).
func (idx *RIndex) FullRange() rlebwt.Range {
	if idx.Empty() {
		return rlebwt.Range{Start: 0, End: 0}
	}
	return rlebwt.Range{Start: 0, End: idx.Size() - 1}
}

// FAt identifies the symbol at F-column position i via binary search
// over the F prefix-sum array, per RIndexRLE::F_at.
func (idx *RIndex) FAt(i uint64) byte {
	lo, hi := 0, alphabetSize+1
	for lo < hi {
		mid := (lo + hi) / 2
		if idx.f[mid] <= i {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return byte(lo - 1)
}

// LF is backward navigation: LF(i) = F[BWT[i]] + rank(i, BWT[i]).
func (idx *RIndex) LF(i uint64) uint64 {
	return idx.LFChar(i, idx.At(i))
}

// LFChar is LF(i) with the symbol at i supplied by the caller.
func (idx *RIndex) LFChar(i uint64, c byte) uint64 {
	return idx.f[c] + idx.Rank(i, c)
}

// LFRange restricts rn to c-occurrences and maps it backward,
// returning an empty range (End < Start) if c does not occur in rn.
func (idx *RIndex) LFRange(rn rlebwt.Range, c byte) rlebwt.Range {
	if (c == 255 && idx.f[c] == idx.Size()) || idx.f[c] >= idx.f[c+1] {
		return rlebwt.Range{Start: 1, End: 0}
	}
	before := idx.Rank(rn.Start, c)
	inside := idx.Rank(rn.End+1, c) - before
	if inside == 0 {
		return rlebwt.Range{Start: 1, End: 0}
	}
	l := idx.f[c] + before
	return rlebwt.Range{Start: l, End: l + inside - 1}
}

// FL is forward navigation, the inverse of LF: identify the symbol c
// at F-column position i, then select the (i-F[c])-th c.
func (idx *RIndex) FL(i uint64) (uint64, error) {
	c := idx.FAt(i)
	return idx.FLChar(i, c)
}

// FLChar is FL(i) with the F-column symbol c supplied by the caller
// for efficiency (the caller already knows c = F_at(i)).
func (idx *RIndex) FLChar(i uint64, c byte) (uint64, error) {
	j := i - idx.f[c]
	return idx.Select(j, c)
}

// Genre classifies position i per spec.md §3: START iff i begins a
// run (i=0 or BWT[i-1]!=BWT[i]); END iff i ends a run (i=n-1 or
// BWT[i]!=BWT[i+1]); STARTEND if both; every sequence-head position
// (i < Sequences()) additionally always carries START_END.
func (idx *RIndex) Genre(i uint64) Genre {
	if i < idx.sequences {
		return StartEnd
	}
	g := NOT
	if idx.At(i-1) != idx.At(i) {
		g |= START
	}
	if i == idx.Size()-1 || idx.At(i) != idx.At(i+1) {
		g |= END
	}
	return g
}

// HasSample reports whether position i carries an SA sample, per
// spec.md §3's invariant: genre != NOT or it is a sequence start.
func (idx *RIndex) HasSample(i uint64) bool {
	return idx.Genre(i) != NOT || i < idx.sequences
}

// GetSequence extracts sequence i (0 <= i < Sequences()) by walking
// LF from its terminator-adjacent head until hitting a terminator.
func (idx *RIndex) GetSequence(i uint64) ([]byte, error) {
	if i >= idx.sequences {
		return nil, errors.Errorf("rindex: sequence index %d out of range (have %d)", i, idx.sequences)
	}
	out := []byte{idx.At(i)}
	j := idx.LF(i)
	for {
		c := idx.At(j)
		if c == alphabet.DataTerminator || c == alphabet.StringTerminator {
			break
		}
		out = append(out, c)
		j = idx.LF(j)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out, nil
}
