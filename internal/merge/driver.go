// Package merge implements C11, the merge driver that ties the rank
// array builder (C7), the producer/consumer buffers (C8), the
// SA-update maps (C9), and the interleaver (C10) together into one
// end-to-end "merge R into L" operation. Grounded on spec.md §4.8 and
// original_source/src/r-index-rle.cpp's RIndexRLE::merge().
package merge

import (
	"context"

	"github.com/grailbio/base/traverse"
	"github.com/marco-oliva/rimerge/internal/interleave"
	"github.com/marco-oliva/rimerge/internal/pipeline"
	"github.com/marco-oliva/rimerge/internal/rankarray"
	"github.com/marco-oliva/rimerge/internal/rerrors"
	"github.com/marco-oliva/rimerge/internal/rindex"
	"github.com/marco-oliva/rimerge/internal/rle"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/rlog"
	"github.com/marco-oliva/rimerge/internal/saupdate"
	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// Options configures one merge run, mirroring MergeParameters' two
// independent thread counts and C8's tunables.
type Options struct {
	// MergeJobs is the number of C10 consumer jobs (and output shards
	// before fusion). Mirrors MergeParameters::merge_jobs.
	MergeJobs int
	// SearchJobs is the number of C7 producer threads. Mirrors
	// MergeParameters::search_jobs.
	SearchJobs int
	// Pipeline configures C8's buffer sizes and spill directory.
	Pipeline pipeline.Options
	// BlockSize is the RLE BWT run-index sampling interval used when
	// loading L and R from disk.
	BlockSize int
	// UseMMap loads L and R via rindex.LoadMMap (mmap-go over local
	// files, page-cache backed) instead of rindex.Load's
	// storage.ReadFull path, per spec.md §6's "L and R are
	// memory-mapped". Only valid for local directories; turn off for
	// cloud-storage paths mmap-go cannot handle.
	UseMMap bool
}

// DefaultOptions returns the support.hpp-derived defaults, with C8's
// spill directory set to spillDir.
func DefaultOptions(spillDir string) Options {
	return Options{
		MergeJobs:  pipeline.DefaultJobs,
		SearchJobs: pipeline.DefaultJobs,
		Pipeline:   pipeline.DefaultOptions(spillDir),
		BlockSize:  rlebwt.DefaultBlockSize,
		UseMMap:    true,
	}
}

// loadInput opens dir per opts.UseMMap, returning a no-op closer on
// the storage.ReadFull path so callers can unconditionally defer the
// result.
func loadInput(ctx context.Context, dir string, opts Options) (*rindex.RIndex, func() error, error) {
	if opts.UseMMap {
		idx, closeFn, err := rindex.LoadMMap(dir, opts.BlockSize)
		if err != nil {
			return nil, nil, err
		}
		return idx, closeFn, nil
	}
	idx, err := rindex.Load(ctx, dir, opts.BlockSize)
	if err != nil {
		return nil, nil, err
	}
	return idx, func() error { return nil }, nil
}

// Merge reads the r-indexes at leftDir and rightDir, merges right into
// left, and writes the result to outDir, per spec.md §4.8's seven
// steps. An empty right index is a no-op (logged, not an error),
// matching RIndexRLE::merge()'s early return.
func Merge(ctx context.Context, leftDir, rightDir, outDir string, opts Options) error {
	left, closeLeft, err := loadInput(ctx, leftDir, opts)
	if err != nil {
		return errors.Wrap(err, "merge: load left index")
	}
	defer func() { _ = closeLeft() }()
	right, closeRight, err := loadInput(ctx, rightDir, opts)
	if err != nil {
		return errors.Wrap(err, "merge: load right index")
	}
	defer func() { _ = closeRight() }()
	if right.Empty() {
		rlog.Warnf("merge: right index at %v is empty, copying left index unchanged", rightDir)
		return copyIndex(ctx, leftDir, outDir)
	}

	pipeOpts := opts.Pipeline
	pipeOpts.Jobs = opts.MergeJobs
	pipe, err := pipeline.New(ctx, pipeOpts, left.Size()+1)
	if err != nil {
		return errors.Wrap(err, "merge: open pipeline")
	}

	maps := saupdate.New(opts.SearchJobs)
	builder := &rankarray.Builder{Left: left, Right: right, Pipeline: pipe, Maps: maps}
	if err := builder.Run(ctx, opts.SearchJobs); err != nil {
		return errors.Wrap(err, "merge: build rank array")
	}
	rlog.Infof("merge: rank array built across %d search jobs", opts.SearchJobs)

	footers, err := pipe.Flush()
	if err != nil {
		return errors.Wrap(err, "merge: flush rank array buffers")
	}
	maps.Merge()

	jobs := len(pipe.Ranges())
	segments := make([][]byte, jobs)
	metas := make([]*rle.Metadata, jobs)
	sampleChunks := make([][]byte, jobs)

	var firstErr rerrors.Once
	traverseErr := traverse.Each(jobs, func(j int) error {
		res, err := interleave.RunJob(ctx, j, left, right, maps, pipe, footers)
		if err != nil {
			err = errors.Wrapf(err, "merge: interleave job %d", j)
			firstErr.Set(err)
			return err
		}
		segments[j] = res.Segment
		metas[j] = res.Metadata
		sampleChunks[j] = res.Samples
		return nil
	})
	if err := firstErr.Err(); err != nil {
		return err
	}
	if traverseErr != nil {
		return traverseErr
	}
	rlog.Infof("merge: interleave complete across %d merge jobs", jobs)

	mergedSegment, mergedMeta, err := rle.MergeSegments(segments, metas)
	if err != nil {
		return errors.Wrap(err, "merge: fuse segments")
	}

	if err := storage.MkdirAll(ctx, outDir); err != nil {
		return errors.Wrap(err, "merge: create output directory")
	}
	if err := storage.WriteFileAtomic(storage.BWTPath(outDir), mergedSegment); err != nil {
		return errors.Wrap(err, "merge: write merged segment")
	}
	if err := storage.WriteFileAtomic(storage.MetaPath(outDir), mergedMeta.Encode()); err != nil {
		return errors.Wrap(err, "merge: write merged metadata")
	}

	var samples []byte
	for _, chunk := range sampleChunks {
		samples = append(samples, chunk...)
	}
	if err := storage.WriteFileAtomic(storage.SamplesPath(outDir), samples); err != nil {
		return errors.Wrap(err, "merge: write merged samples")
	}

	for j := 0; j < jobs; j++ {
		if err := storage.Remove(ctx, pipe.Path(j)); err != nil {
			rlog.Warnf("merge: cleanup of spill file for job %d failed: %v", j, err)
		}
	}

	rlog.Infof("merge: wrote merged index to %v (%d symbols, %d runs)", outDir, mergedMeta.Size, mergedMeta.Runs)
	return nil
}

// copyIndex copies the three on-disk index files verbatim from srcDir
// to dstDir, used for the "empty right input" no-op per spec.md §7.
func copyIndex(ctx context.Context, srcDir, dstDir string) error {
	if err := storage.MkdirAll(ctx, dstDir); err != nil {
		return errors.Wrap(err, "merge: create output directory")
	}
	paths := [][2]string{
		{storage.BWTPath(srcDir), storage.BWTPath(dstDir)},
		{storage.MetaPath(srcDir), storage.MetaPath(dstDir)},
		{storage.SamplesPath(srcDir), storage.SamplesPath(dstDir)},
	}
	for _, p := range paths {
		buf, err := storage.ReadFull(ctx, p[0])
		if err != nil {
			return errors.Wrapf(err, "merge: read %v", p[0])
		}
		if err := storage.WriteFileAtomic(p[1], buf); err != nil {
			return errors.Wrapf(err, "merge: write %v", p[1])
		}
	}
	return nil
}
