package bitvector

import "sort"

const sparseSampleRate = 64 // positions sampled into the coarse rank index

// Sparse is a positional bit-vector representation for vectors where
// only a small fraction of bits are set — the "runs" bit-vector
// (one bit per B-th run boundary) and the SA-sample "markers" vector
// are both built this way, mirroring the original's use of sdsl's
// sd_vector for exactly these fields. Rank/select are answered by
// binary search over a sorted position array with a coarse sample
// index, giving O(log r) queries without storing n bits.
type Sparse struct {
	n         int
	positions []int // sorted, deduplicated
	// sampleIdx[k] = index into positions of the first position >= k*sparseSampleRate
	sampleIdx []int
}

// NewSparse builds a Sparse bit-vector of length n from the positions
// of its set bits. positions need not be sorted or deduplicated.
func NewSparse(n int, positions []int) *Sparse {
	cp := make([]int, len(positions))
	copy(cp, positions)
	sort.Ints(cp)
	dedup := cp[:0]
	for i, p := range cp {
		if i == 0 || cp[i-1] != p {
			dedup = append(dedup, p)
		}
	}
	s := &Sparse{n: n, positions: dedup}
	s.buildIndex()
	return s
}

func (s *Sparse) buildIndex() {
	buckets := s.n/sparseSampleRate + 2
	s.sampleIdx = make([]int, buckets)
	pi := 0
	for b := 0; b < buckets; b++ {
		threshold := b * sparseSampleRate
		for pi < len(s.positions) && s.positions[pi] < threshold {
			pi++
		}
		s.sampleIdx[b] = pi
	}
}

func (s *Sparse) Len() int  { return s.n }
func (s *Sparse) Ones() int { return len(s.positions) }

func (s *Sparse) At(i int) bool {
	idx := sort.SearchInts(s.positions, i)
	return idx < len(s.positions) && s.positions[idx] == i
}

// Rank returns the count of set bits in [0, i).
func (s *Sparse) Rank(i int) int {
	if i <= 0 {
		return 0
	}
	bucket := i / sparseSampleRate
	if bucket >= len(s.sampleIdx) {
		bucket = len(s.sampleIdx) - 1
	}
	start := s.sampleIdx[bucket]
	// positions[start:] is the first candidate window; search forward
	// from there since the sample only guarantees a lower bound.
	idx := start + sort.SearchInts(s.positions[start:], i)
	return idx
}

func (s *Sparse) Select(i int) (int, error) {
	if i < 0 || i >= len(s.positions) {
		return 0, ErrOutOfRange
	}
	return s.positions[i], nil
}

func (s *Sparse) Gap(i int) (int, error) {
	cur, err := s.Select(i)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return cur + 1, nil
	}
	prev, err := s.Select(i - 1)
	if err != nil {
		return 0, err
	}
	return cur - prev, nil
}

// Positions returns the sorted set-bit positions (read-only use by
// callers that need to iterate, e.g. run-boundary scans).
func (s *Sparse) Positions() []int { return s.positions }
