// Package sasamples implements C5: the sparse suffix-array sample
// store keyed by BWT position, per spec.md §3/§4 and grounded on
// original_source/include/rimerge/sa-samples.hpp and
// src/sa-samples.cpp.
package sasamples

import (
	"math"
	"sort"

	"github.com/marco-oliva/rimerge/internal/bitvector"
	"github.com/pkg/errors"
)

// InvalidValue marks an absent sample, mirroring the original's
// invalid_value() (the max size_type).
const InvalidValue uint64 = math.MaxUint64

// SampleBytes is the on-disk width of one half of a sample pair
// (position or value), per the original's SA_samples::SAMPLE_BYTES.
const SampleBytes = 5

// Sample is a single (position, value) suffix-array sample.
type Sample struct {
	Position uint64
	Value    uint64
}

// Store is a sparse, rank-indexed suffix-array sample table: Init
// builds a markers bit-vector over [0, n) from the sampled positions
// and a parallel compressed-values slice, so that Get(i) resolves via
// one rank operation instead of a scan.
type Store struct {
	pending     []Sample
	initialized bool

	markers *bitvector.Sparse
	values  []uint64
}

// New returns an empty, uninitialized Store.
func New() *Store {
	return &Store{}
}

// Add appends a sample to be folded in at Init. Order does not matter;
// Init sorts by position and coalesces duplicate positions (last
// writer wins), matching the producer/consumer pipeline's append-any-
// order contract (spec.md §4.5).
func (s *Store) Add(position, value uint64) {
	if s.initialized {
		panic("sasamples: Add called after Init")
	}
	s.pending = append(s.pending, Sample{Position: position, Value: value})
}

// Init builds the markers bit-vector and compressed values array from
// the accumulated samples and discards the staging slice, mirroring
// SA_samples::init().
func (s *Store) Init(n uint64) {
	if s.initialized {
		return
	}
	s.initialized = true

	sort.SliceStable(s.pending, func(i, j int) bool { return s.pending[i].Position < s.pending[j].Position })

	positions := make([]int, 0, len(s.pending))
	values := make([]uint64, 0, len(s.pending))
	var lastPos uint64
	haveLast := false
	for _, sm := range s.pending {
		if haveLast && sm.Position == lastPos {
			values[len(values)-1] = sm.Value
			continue
		}
		positions = append(positions, int(sm.Position))
		values = append(values, sm.Value)
		lastPos = sm.Position
		haveLast = true
	}

	s.markers = bitvector.NewSparse(int(n), positions)
	s.values = values
	s.pending = nil
}

// Get returns the sample value at position i, or InvalidValue if i is
// not a sampled position, per SA_samples::operator[].
func (s *Store) Get(i uint64) uint64 {
	if !s.initialized {
		panic("sasamples: Get called before Init")
	}
	if int(i) >= s.markers.Len() {
		panic("sasamples: Get: invalid access")
	}
	if !s.markers.At(int(i)) {
		return InvalidValue
	}
	pos := s.markers.Rank(int(i))
	return s.values[pos]
}

// Has reports whether position i carries a sample.
func (s *Store) Has(i uint64) bool {
	return s.initialized && int(i) < s.markers.Len() && s.markers.At(int(i))
}

// Len returns the number of samples in the store.
func (s *Store) Len() int {
	if !s.initialized {
		return len(s.pending)
	}
	return len(s.values)
}

// All returns every (position, value) pair in ascending position
// order. Intended for serialization and tests.
func (s *Store) All() ([]Sample, error) {
	if !s.initialized {
		return nil, errors.New("sasamples: All called before Init")
	}
	out := make([]Sample, 0, len(s.values))
	for _, pos := range s.markers.Positions() {
		out = append(out, Sample{Position: uint64(pos), Value: s.values[len(out)]})
	}
	return out, nil
}
