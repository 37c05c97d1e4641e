package rindex

import (
	"context"

	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/marco-oliva/rimerge/internal/storage"
)

// Load reads the bwt.rle/.meta and samples.saes files under dir and
// builds an RIndex, sequentially reading each file in full. This is
// the default, cloud-storage-transparent path (it goes through
// internal/storage, i.e. github.com/grailbio/base/file); see
// LoadMMap for the local memory-mapped alternative spec.md §9's
// design notes call "implementation-friendly" but not required.
func Load(ctx context.Context, dir string, blockSize int) (*RIndex, error) {
	bwt, err := rlebwt.Load(ctx, storage.BWTPath(dir), storage.MetaPath(dir), blockSize)
	if err != nil {
		return nil, err
	}
	samples, err := sasamples.Load(ctx, storage.SamplesPath(dir), bwt.Size())
	if err != nil {
		return nil, err
	}
	return New(bwt, samples), nil
}

// WriteSamples persists idx's sample store to dir. The BWT segment and
// its metadata are written directly by internal/rle's Encoder as part
// of the merge pipeline (C1/C11), not reconstructed from this
// container, so WriteSamples covers only the samples.saes file.
func (idx *RIndex) WriteSamples(ctx context.Context, dir string) error {
	if err := storage.MkdirAll(ctx, dir); err != nil {
		return err
	}
	return idx.Samples.WriteTo(ctx, storage.SamplesPath(dir))
}
