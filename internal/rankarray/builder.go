// Package rankarray implements C7: the parallel rank-array builder
// that, for every sequence in R, walks its LF chain through L and
// emits corresponding positions in L (the "rank array", RA) into C8,
// while recording the interruption samples C9 needs along the way.
// Grounded on original_source/src/r-index-rle.cpp's buildRA and
// spec.md §4.4; the original's OpenMP `#pragma omp parallel for` is
// replaced with github.com/grailbio/base/traverse's worker-pool
// pattern, following pileup/snp/pileup.go's jobIdx-partitioned
// traverse.Each(parallelism, ...) shape so each worker owns one
// pipeline producer and one SA-update thread map for its lifetime.
package rankarray

import (
	"context"

	"github.com/grailbio/base/traverse"
	"github.com/marco-oliva/rimerge/internal/alphabet"
	"github.com/marco-oliva/rimerge/internal/pipeline"
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/saupdate"
)

// Builder owns the shared inputs for the RA walk.
type Builder struct {
	Left, Right *rindex.RIndex
	Pipeline    *pipeline.Pipeline
	Maps        *saupdate.Maps
}

// Run walks every sequence of Right against Left, in parallel across
// nThreads workers, each assigned a contiguous slice of sequences per
// spec.md §4.4. Must be called exactly once; Maps.Merge() must run
// only after Run returns.
func (b *Builder) Run(ctx context.Context, nThreads int) error {
	if nThreads < 1 {
		nThreads = 1
	}
	nSeq := int(b.Right.Sequences())
	if nSeq == 0 {
		return nil
	}
	if nThreads > nSeq {
		nThreads = nSeq
	}

	return traverse.Each(nThreads, func(t int) error {
		start := (t * nSeq) / nThreads
		end := ((t + 1) * nSeq) / nThreads

		producer := b.Pipeline.NewProducer()
		tm := b.Maps.Thread(t)

		for s := start; s < end; s++ {
			b.walkSequence(uint64(s), producer, tm)
		}
		producer.Flush()
		return nil
	})
}

// walkSequence implements one iteration of spec.md §4.4's per-sequence
// loop.
func (b *Builder) walkSequence(s uint64, producer *pipeline.ThreadBuffer, tm *saupdate.ThreadMaps) {
	left, right := b.Left, b.Right

	i := s
	raI := left.Sequences()
	rightSA := right.Samples.Get(s)

	producer.Add(raI)

	prevSamples := [2]uint64{left.Samples.Get(raI - 1), left.Samples.Get(raI)}
	tm.InsertLeft(raI-1, prevSamples[0])
	tm.InsertLeft(raI, prevSamples[1])

	for right.At(i) != alphabet.StringTerminator && right.At(i) != alphabet.DataTerminator {
		c := right.At(i)
		j := right.LFChar(i, c)
		raJ := left.LFChar(raI, c)
		rightSA--

		producer.Add(raJ)

		if cachedPrev, cachedCurr, ok := tm.CachedLeftPair(raJ); ok {
			prevSamples = [2]uint64{cachedPrev, cachedCurr}
		} else {
			prevSamples = saupdate.ComputeLeftPair(left, right, raI, raJ, prevSamples, i)
		}

		// Breaking a run: either side of the interruption point may
		// need a fresh sample recorded, per r-index-rle.cpp's buildRA.
		if raJ >= 1 && right.At(j) != left.At(raJ-1) && left.Genre(raJ-1) == rindex.NOT {
			tm.InsertLeft(raJ-1, prevSamples[0])
			tm.InsertLeft(raJ, prevSamples[1])
		}
		if raJ <= left.Size()-1 && right.At(j) != left.At(raJ) && left.Genre(raJ) == rindex.NOT {
			tm.InsertLeft(raJ-1, prevSamples[0])
			tm.InsertLeft(raJ, prevSamples[1])
		}

		tm.UpdateRightMin(left, right, raJ, j, rightSA)
		tm.UpdateRightMax(left, right, raJ, j, rightSA)

		i, raI = j, raJ
	}
}
