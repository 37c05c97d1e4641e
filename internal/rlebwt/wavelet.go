package rlebwt

import "github.com/marco-oliva/rimerge/internal/bitvector"

// wavelet is a minimal balanced binary wavelet tree over a sequence of
// bytes, supporting Access/Rank/Select by symbol in O(log sigma).
//
// The original implementation (original_source's huff_string) wraps
// sdsl::wt_huff, a Huffman-shaped wavelet tree. Neither sdsl nor any
// wavelet-tree library ships in this module's dependency pack, so this
// is hand-built from scratch (see DESIGN.md Open Question 1): a
// balanced (not entropy-shaped) binary tree over the *observed*
// alphabet, one Dense bit-vector per internal node partitioning the
// sequence into "goes left"/"goes right" at that node. Tree shape only
// affects constant factors, not correctness, so balancing on alphabet
// rank (rather than symbol frequency) is a faithful substitute for the
// operation contract spec.md §4.2 requires of run_heads.
type wavelet struct {
	alphabet []byte // sorted distinct symbols
	root     *waveletNode
	n        int
}

type waveletNode struct {
	// bits[i] = false routes sequence element i to left child, true to right.
	bits        *bitvector.Dense
	left, right *waveletNode
	lo, hi      int // index range into wavelet.alphabet this node covers [lo, hi)
}

// buildWavelet builds a wavelet tree over seq, whose symbols must all
// appear in alphabet (sorted, deduplicated).
func buildWavelet(seq []byte, alphabet []byte) *wavelet {
	w := &wavelet{alphabet: alphabet, n: len(seq)}
	w.build(seq)
	return w
}

func (w *wavelet) build(seq []byte) {
	if len(w.alphabet) == 0 {
		return
	}
	rank := make(map[byte]int, len(w.alphabet))
	for i, c := range w.alphabet {
		rank[c] = i
	}
	w.root = w.buildRec(seq, rank, 0, len(w.alphabet))
}

func (w *wavelet) buildRec(seq []byte, rank map[byte]int, lo, hi int) *waveletNode {
	node := &waveletNode{lo: lo, hi: hi}
	if hi-lo <= 1 {
		return node
	}
	mid := (lo + hi) / 2
	bits := bitvector.NewDenseBuilder(len(seq))
	var leftSeq, rightSeq []byte
	for i, c := range seq {
		if rank[c] < mid {
			leftSeq = append(leftSeq, c)
		} else {
			bits.Set(i)
			rightSeq = append(rightSeq, c)
		}
	}
	bits.Finish()
	node.bits = bits
	node.left = w.buildRec(leftSeq, rank, lo, mid)
	node.right = w.buildRec(rightSeq, rank, mid, hi)
	return node
}

func (w *wavelet) symbolRank(c byte) (int, bool) {
	lo, hi := 0, len(w.alphabet)
	for lo < hi {
		mid := (lo + hi) / 2
		if w.alphabet[mid] < c {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(w.alphabet) && w.alphabet[lo] == c {
		return lo, true
	}
	return 0, false
}

// Len returns the sequence length.
func (w *wavelet) Len() int { return w.n }

// Access returns the symbol at position i.
func (w *wavelet) Access(i int) byte {
	node := w.root
	for node.hi-node.lo > 1 {
		if node.bits.At(i) {
			i = node.bits.Rank(i)
			node = node.right
		} else {
			i = i - node.bits.Rank(i)
			node = node.left
		}
	}
	return w.alphabet[node.lo]
}

// Rank returns the number of occurrences of c in [0, i).
func (w *wavelet) Rank(i int, c byte) int {
	symRank, ok := w.symbolRank(c)
	if !ok {
		return 0
	}
	node := w.root
	for node.hi-node.lo > 1 {
		mid := (node.lo + node.hi) / 2
		if symRank < mid {
			i = i - node.bits.Rank(i)
			node = node.left
		} else {
			i = node.bits.Rank(i)
			node = node.right
		}
	}
	return i
}

// Select returns the position of the (i+1)-th occurrence of c
// (0-indexed), or -1 if it does not exist.
func (w *wavelet) Select(i int, c byte) int {
	symRank, ok := w.symbolRank(c)
	if !ok {
		return -1
	}
	// Descend to the leaf for c, tracking the path, then walk back up
	// converting a leaf-local index into a root-local position.
	type step struct {
		node     *waveletNode
		wentRight bool
	}
	var path []step
	node := w.root
	for node.hi-node.lo > 1 {
		mid := (node.lo + node.hi) / 2
		if symRank < mid {
			path = append(path, step{node, false})
			node = node.left
		} else {
			path = append(path, step{node, true})
			node = node.right
		}
	}
	pos := i
	for k := len(path) - 1; k >= 0; k-- {
		s := path[k]
		var err error
		if s.wentRight {
			pos, err = s.node.bits.Select(pos)
		} else {
			pos, err = selectZero(s.node.bits, pos)
		}
		if err != nil {
			return -1
		}
	}
	return pos
}

// selectZero returns the position of the (i+1)-th unset bit.
func selectZero(d *bitvector.Dense, i int) (int, error) {
	lo, hi := 0, d.Len()
	target := i + 1
	count := 0
	// Dense has no native select-zero; linear scan is acceptable here
	// since wavelet tree nodes are only as wide as a run-head sequence
	// (bounded by r, not n) and this path is cold relative to Access/Rank.
	for p := lo; p < hi; p++ {
		if !d.At(p) {
			count++
			if count == target {
				return p, nil
			}
		}
	}
	return 0, bitvector.ErrOutOfRange
}
