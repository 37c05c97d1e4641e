// Package pipeline implements C8: the bounded producer/consumer
// buffers that sit between the rank-array builder (C7) and the
// interleaver (C10). Grounded on spec.md §4.5; the buffer-size
// defaults are carried over from
// original_source/include/rimerge/support.hpp's MergeParameters, the
// only concrete tunable-constants struct the original ships (no
// bwtmerge.hpp/.cpp equivalent exists in the retrieved source). The
// "bounded memory, block producers until drained" shape is grounded on
// encoding/pam/fieldio/writer.go's WriteBufPool/channel-gated flush
// queue.
package pipeline

const (
	// DefaultPosBufferSize is the per-thread buffer cap, in bytes,
	// before it must be sorted, merged, and spilled. Mirrors
	// MergeParameters::pos_buffer_size's 64 MB default.
	DefaultPosBufferSize = 64 << 20

	// DefaultThreadBufferSize is the cap, in bytes, on a merge slot's
	// pending (unwritten) spill items before producers block.
	// Mirrors MergeParameters::thread_buffer_size's 256 MB default.
	DefaultThreadBufferSize = 256 << 20

	// DefaultJobs is the number of merge slots (and, eventually, RA
	// files) C8 partitions the RA keyspace into. Mirrors
	// MergeParameters::merge_buffers's default of 6.
	DefaultJobs = 6

	// MaxJobs mirrors MergeParameters::MAX_MERGE_BUFFERS.
	MaxJobs = 16

	// spillItemBytes is the on-disk and in-channel footprint of one
	// (value, count) run: two little-endian uint64s.
	spillItemBytes = 16
)

// JobRange is a half-open [Start, End) partition of the RA keyspace
// assigned to one merge slot, per spec.md §4.5's "slot index is
// bin(value, job_ranges)".
type JobRange struct {
	Start, End uint64
}

// Partition splits [0, n) into count contiguous, roughly equal
// JobRanges. The last range absorbs any remainder so every RA value in
// [0, n) falls in exactly one job.
func Partition(n uint64, count int) []JobRange {
	if count < 1 {
		count = 1
	}
	ranges := make([]JobRange, count)
	step := n / uint64(count)
	if step == 0 {
		step = 1
	}
	start := uint64(0)
	for i := 0; i < count; i++ {
		end := start + step
		if i == count-1 || end > n {
			end = n
		}
		ranges[i] = JobRange{Start: start, End: end}
		start = end
	}
	return ranges
}

// Bin returns the index of the JobRange containing value, per
// spec.md §4.5's bin(value, job_ranges). Ranges must be sorted and
// contiguous, as produced by Partition. A value at or past the last
// range's end (possible when value == n, e.g. the synthetic "one past
// the last L position" RA key) is clamped to the last job.
func Bin(value uint64, ranges []JobRange) int {
	lo, hi := 0, len(ranges)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if value < ranges[mid].End {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
