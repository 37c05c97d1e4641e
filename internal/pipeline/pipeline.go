package pipeline

import (
	"context"
	"sync"

	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// Options configures a Pipeline, with MB-scale defaults carried over
// from original_source/include/rimerge/support.hpp's MergeParameters.
type Options struct {
	// PosBufferSize caps a single producer thread's buffer, in bytes.
	PosBufferSize int
	// ThreadBufferSize caps a merge slot's pending, undrained runs,
	// in bytes.
	ThreadBufferSize int
	// Jobs is the number of merge slots (and output RA files).
	Jobs int
	// Dir is the directory spill files are written into.
	Dir string
	// CompressSpill opts into zstd-compressing spill files. Off by
	// default to keep the hot path simple; spill files are transient
	// scratch, so this only matters for disk-constrained merges.
	CompressSpill bool
}

// DefaultOptions returns the support.hpp-derived tunable defaults.
func DefaultOptions(dir string) Options {
	return Options{
		PosBufferSize:    DefaultPosBufferSize,
		ThreadBufferSize: DefaultThreadBufferSize,
		Jobs:             DefaultJobs,
		Dir:              dir,
	}
}

// Pipeline is C8: it owns one ThreadBuffer per producer and one slot
// (bounded channel plus draining spill writer) per job.
type Pipeline struct {
	opts   Options
	ranges []JobRange
	slots  []*slot
	paths  []string

	mu      sync.Mutex
	threads []*ThreadBuffer
	started bool
}

// New partitions [0, keyspace) into opts.Jobs ranges and opens one
// spill file per job under opts.Dir, named ra.<job>.bin.
func New(ctx context.Context, opts Options, keyspace uint64) (*Pipeline, error) {
	if opts.Jobs < 1 {
		opts.Jobs = DefaultJobs
	}
	if opts.Jobs > MaxJobs {
		opts.Jobs = MaxJobs
	}
	if err := storage.MkdirAll(ctx, opts.Dir); err != nil {
		return nil, err
	}

	p := &Pipeline{opts: opts}
	p.ranges = Partition(keyspace, opts.Jobs)
	p.slots = make([]*slot, opts.Jobs)
	p.paths = make([]string, opts.Jobs)
	for j := range p.slots {
		path := RAPath(opts.Dir, j)
		p.slots[j] = newSlot(opts.ThreadBufferSize, opts.CompressSpill)
		p.paths[j] = path
		p.slots[j].start(ctx, path)
	}
	return p, nil
}

// Ranges returns the job partition, for C10 to compute each job's
// right_iter starting offset from the other jobs' counts.
func (p *Pipeline) Ranges() []JobRange { return p.ranges }

// Path returns the spill file path for job j.
func (p *Pipeline) Path(j int) string { return p.paths[j] }

// Dir returns the directory spill files were written into, for C10 to
// reopen a job's file with OpenReader.
func (p *Pipeline) Dir() string { return p.opts.Dir }

// CompressSpill reports whether this pipeline's spill files are
// zstd-compressed, for callers opening a Reader directly.
func (p *Pipeline) CompressSpill() bool { return p.opts.CompressSpill }

func (p *Pipeline) slotFor(value uint64) *slot {
	return p.slots[Bin(value, p.ranges)]
}

// NewProducer allocates a fresh per-thread buffer. Callers must not
// share a *ThreadBuffer across goroutines; each C7 worker gets its
// own.
func (p *Pipeline) NewProducer() *ThreadBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := newThreadBuffer(p, p.opts.PosBufferSize)
	p.threads = append(p.threads, b)
	return b
}

// Flush is the awaitable barrier of spec.md §4.5: it flushes every
// producer's buffer, then closes every job's channel and waits for its
// drain goroutine to finish writing the spill file and footer. Returns
// the footer recorded for each job, in job order. Must be called
// exactly once, after every producer is done adding values.
func (p *Pipeline) Flush() ([]Footer, error) {
	p.mu.Lock()
	threads := p.threads
	p.mu.Unlock()
	for _, b := range threads {
		b.Flush()
	}

	footers := make([]Footer, len(p.slots))
	var firstErr error
	for j, s := range p.slots {
		if err := s.close(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "pipeline: job %d", j)
		}
		footers[j] = Footer{Count: s.count, Min: s.min, Max: s.max, Checksum: s.checksum}
	}
	return footers, firstErr
}
