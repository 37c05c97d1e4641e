// Package interleave implements C10: the per-job interleaver that
// consumes one job's rank-array stream from C8 and merges L and R's
// BWTs (and SA samples) into that job's slice of the output. Grounded
// on original_source/src/r-index-rle.cpp's interleave() and
// SamplesMergerRLE::operator(), which together are the authoritative
// source for the sample-emission decision table spec.md §4.7
// summarizes.
package interleave

import "github.com/marco-oliva/rimerge/internal/pipeline"

// invalid is the sentinel curr_ra takes on once a job's RA stream (and
// any lookahead into later jobs) is exhausted, so the main loop's
// "while curr_ra is valid" condition becomes a plain comparison.
const invalid = ^uint64(0)

// valueStream replays a job's (value, count) runs as a sequence of
// individual values, expanding each run's count in place. C8 merges
// duplicate RA values into run-length pairs for compactness; this
// undoes that so the interleaver sees exactly the duplicate-preserving
// stream spec.md §4.5 promises.
type valueStream struct {
	r      *pipeline.Reader
	cur    uint64
	remain uint64
}

func newValueStream(r *pipeline.Reader) *valueStream {
	return &valueStream{r: r}
}

// next returns the next individual RA value, or ok=false once the
// underlying reader is exhausted.
func (vs *valueStream) next() (uint64, bool) {
	if vs.remain == 0 {
		v, c, ok := vs.r.Next()
		if !ok {
			return 0, false
		}
		vs.cur, vs.remain = v, c
	}
	vs.remain--
	return vs.cur, true
}
