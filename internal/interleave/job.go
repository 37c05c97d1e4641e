package interleave

import (
	"context"

	"github.com/marco-oliva/rimerge/internal/pipeline"
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/rle"
	"github.com/marco-oliva/rimerge/internal/saupdate"
)

// Result is one job's contribution to the merge: its slice of the
// merged RLE BWT plus the (position, value) sample records discovered
// while producing it, in merged-position order.
type Result struct {
	Segment  []byte
	Metadata *rle.Metadata
	Samples  []byte
}

// raIter is a forward iterator over a job's RA value stream that
// separates "read current" from "advance", mirroring the C++
// ProducerBuffer iterator interleave()'s main loop dereferences twice
// per window shift (once for curr_ra, once held back for next_ra).
type raIter struct {
	vs  *valueStream
	cur uint64
	end bool
}

func newRaIter(vs *valueStream) *raIter {
	it := &raIter{vs: vs}
	it.advance()
	return it
}

func (it *raIter) advance() {
	v, ok := it.vs.next()
	if !ok {
		it.end = true
		return
	}
	it.cur = v
}

func (it *raIter) valueOrInvalid() uint64 {
	if it.end {
		return invalid
	}
	return it.cur
}

// RunJob executes C10 for one job: it opens that job's RA spill file,
// interleaves L and R's BWTs and SA samples over the job's slice of
// the merged output, and returns the resulting RLE segment and sample
// records. footers is every job's C8 Footer, in job order (needed for
// right_iter's running offset and cross-job next_ra lookahead);
// ranges is the same partition Pipeline binned RA values against.
// Grounded on original_source/src/r-index-rle.cpp's interleave().
func RunJob(ctx context.Context, job int, left, right *rindex.RIndex, maps *saupdate.Maps, pipe *pipeline.Pipeline, footers []pipeline.Footer) (Result, error) {
	ranges := pipe.Ranges()

	reader, err := pipeline.OpenReader(ctx, pipe.Dir(), job, pipe.CompressSpill())
	if err != nil {
		return Result{}, err
	}
	ra := newRaIter(newValueStream(reader))

	var leftIter uint64
	if job != 0 {
		leftIter = ranges[job-1].End
	}

	var rightIter uint64
	lastNonEmpty := 0
	for i := 0; i < job; i++ {
		rightIter += footers[i].Count
		if footers[i].Count != 0 {
			lastNonEmpty = i
		}
	}

	merger := newSamplesMerger(left, right, maps)
	if leftIter == 0 {
		merger.setLLI(0)
	} else {
		merger.setLLI(leftIter - 1)
	}
	if rightIter == 0 {
		merger.setLRI(0)
	} else {
		merger.setLRI(rightIter - 1)
	}

	var prevRA uint64
	if job != 0 {
		prevRA = footers[lastNonEmpty].Max
		merger.setLFL(prevRA != ranges[job-1].End)
	}

	enc := rle.NewEncoder()

	tok := true
	currRA := ra.valueOrInvalid()
	var nextRA uint64
	if currRA != invalid {
		ra.advance()
		nextRA = ra.valueOrInvalid()
	}

	for currRA != invalid {
		for leftIter < currRA {
			enc.Append(left.At(leftIter))
			if err := merger.emit(leftIter, true, leftIter+rightIter, currRA, prevRA, nextRA); err != nil {
				return Result{}, err
			}
			leftIter++
		}

		enc.Append(right.At(rightIter))
		if err := merger.emit(rightIter, false, leftIter+rightIter, currRA, prevRA, nextRA); err != nil {
			return Result{}, err
		}

		prevRA = currRA
		if !tok {
			currRA = invalid
		} else {
			currRA = nextRA
			ra.advance()
		}

		nextRange := job + 1
		for ra.end && nextRange < len(footers) {
			if footers[nextRange].Count != 0 {
				break
			}
			nextRange++
		}
		if ra.end && nextRange < len(footers) && tok {
			nextRA = footers[nextRange].Min
			tok = false
		} else {
			nextRA = ra.valueOrInvalid()
		}

		rightIter++
	}

	lastJob := len(ranges) - 1
	for (leftIter < ranges[job].End && job < lastJob) || (leftIter < left.Size() && job == lastJob) {
		enc.Append(left.At(leftIter))
		if err := merger.emit(leftIter, true, leftIter+rightIter, currRA, prevRA, nextRA); err != nil {
			return Result{}, err
		}
		leftIter++
	}

	segment, meta := enc.Close()
	return Result{Segment: segment, Metadata: meta, Samples: merger.out}, nil
}
