// Package alphabet implements C3: the observed-symbol set of a BWT,
// with ordered previous/following neighbor queries. Grounded on
// original_source/include/rimerge/alphabet.hpp and src/alphabet.cpp;
// the previous/following semantics (including the exact rank/select
// offsets) are transcribed from there rather than re-derived, since
// spec.md §4.4 depends on their precise fallback behavior for the
// interruption-sample computation.
package alphabet

import (
	"github.com/marco-oliva/rimerge/internal/bitvector"
	"github.com/marco-oliva/rimerge/internal/rlog"
)

// StringTerminator, DataTerminator, ImplTerminator are the three
// reserved byte values of spec.md §6.
const (
	StringTerminator byte = 0x03
	DataTerminator   byte = 0x01
	ImplTerminator   byte = 0x00
)

const alphabetSize = 256

// Alphabet tracks which of the 256 byte values have been observed in
// a BWT, and answers previous/following neighbor queries over that
// set.
type Alphabet struct {
	used        [alphabetSize]bool
	initialized bool
	bits        *bitvector.Dense
	terminator  byte
}

// New returns an empty Alphabet. Call Update for every observed
// symbol, then Init once before using Previous/Following/Sigma.
func New() *Alphabet {
	return &Alphabet{terminator: DataTerminator}
}

// Update records that symbol c has been observed. Calling Update after
// Init re-initializes the alphabet (logged, matching the original's
// warn-and-reinit behavior).
func (a *Alphabet) Update(c byte) {
	a.used[c] = true
	if c == StringTerminator {
		a.terminator = StringTerminator
	}
	if a.initialized {
		rlog.Warnf("alphabet: updating already initialized alphabet")
		a.Init()
	}
}

// Init builds the rank/select structure over the observed set. Must
// be called once after all Update calls and before any query.
func (a *Alphabet) Init() {
	b := bitvector.NewDenseBuilder(alphabetSize)
	for c := 0; c < alphabetSize; c++ {
		if a.used[c] {
			b.Set(c)
		}
	}
	b.Finish()
	a.bits = b
	a.initialized = true
	if rlog.V(2) {
		rlog.VInfof(2, "alphabet: sigma=%d checksum=%x", a.bits.Ones(), bitvector.DebugChecksum(a.bits))
	}
}

// Sigma returns the number of distinct observed symbols.
func (a *Alphabet) Sigma() int { return a.bits.Ones() }

// Contains reports whether c has been observed.
func (a *Alphabet) Contains(c byte) bool { return a.used[c] }

// Previous returns the largest observed symbol strictly less than c,
// or the data terminator if none exists.
func (a *Alphabet) Previous(c byte) byte {
	rank := a.bits.Rank(int(c))
	if rank == 0 {
		return a.terminator
	}
	pos, err := a.bits.Select(rank - 1)
	if err != nil {
		return a.terminator
	}
	return byte(pos)
}

// Following returns the next observed symbol per the original's exact
// rank/select offsets (see the package doc comment), or the data
// terminator if none exists.
func (a *Alphabet) Following(c byte) byte {
	rank := a.bits.Rank(int(c))
	if rank+1 == a.Sigma() {
		return a.terminator
	}
	pos, err := a.bits.Select(rank + 1)
	if err != nil {
		return a.terminator
	}
	return byte(pos)
}

// String returns the observed symbols in ascending order.
func (a *Alphabet) String() []byte {
	var out []byte
	for c := 0; c < alphabetSize; c++ {
		if a.used[c] {
			out = append(out, byte(c))
		}
	}
	return out
}
