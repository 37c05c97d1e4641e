package rle

import (
	"context"

	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// MergeSegments fuses an ordered list of closed segment buffers (with
// their metadata) into one segment whose decoded stream equals their
// concatenation, per spec.md §4.1 "Segment fusion (RLEncoderMerger)":
// copy segment 0 verbatim; at each boundary, if the last record of the
// accumulated output and the first record of the next segment share a
// symbol, fuse them by setting the continuation bit on the last
// record (leaving the next segment's bytes untouched — the decoder's
// length accumulation naturally continues across the boundary).
func MergeSegments(segments [][]byte, metas []*Metadata) ([]byte, *Metadata, error) {
	if len(segments) != len(metas) {
		return nil, nil, errors.Errorf("rle: %d segments but %d metadata", len(segments), len(metas))
	}
	if len(segments) == 0 {
		return nil, &Metadata{}, nil
	}

	out := make([]byte, len(segments[0]))
	copy(out, segments[0])
	merged := &Metadata{}
	addMetadata(merged, metas[0])

	for i := 1; i < len(segments); i++ {
		next := segments[i]
		if len(out) < recordSize || len(next) < recordSize {
			return nil, nil, errors.Errorf("rle: segment %d shorter than one record", i)
		}
		lastRec, _ := ReadRecord(out[len(out)-recordSize:])
		firstRec, _ := ReadRecord(next[:recordSize])

		addMetadata(merged, metas[i])

		if lastRec.Symbol == firstRec.Symbol {
			fused := lastRec
			fused.Continuation = true
			fusedBytes := WriteRecord(nil, fused)
			copy(out[len(out)-recordSize:], fusedBytes)
			merged.Runs--
			merged.RunsPerChar[lastRec.Symbol]--
		}
		out = append(out, next...)
	}
	return out, merged, nil
}

func addMetadata(dst *Metadata, src *Metadata) {
	dst.Size += src.Size
	dst.Runs += src.Runs
	for i := 0; i < metaAlphabetSize; i++ {
		dst.SizePerChar[i] += src.SizePerChar[i]
		dst.RunsPerChar[i] += src.RunsPerChar[i]
	}
}

// FuseFiles reads each (segPath, metaPath) pair in order, fuses them
// with MergeSegments, and writes the result to outSegPath/outMetaPath.
func FuseFiles(ctx context.Context, segPaths, metaPaths []string, outSegPath, outMetaPath string) error {
	if len(segPaths) != len(metaPaths) {
		return errors.Errorf("rle: %d segment paths but %d metadata paths", len(segPaths), len(metaPaths))
	}
	segments := make([][]byte, len(segPaths))
	metas := make([]*Metadata, len(metaPaths))
	for i := range segPaths {
		data, err := storage.ReadFull(ctx, segPaths[i])
		if err != nil {
			return err
		}
		segments[i] = data
		meta, err := ReadMetadata(ctx, metaPaths[i])
		if err != nil {
			return err
		}
		metas[i] = meta
	}
	merged, meta, err := MergeSegments(segments, metas)
	if err != nil {
		return err
	}
	f, err := storage.Create(ctx, outSegPath)
	if err != nil {
		return err
	}
	if _, err := f.Writer(ctx).Write(merged); err != nil {
		_ = f.Close(ctx)
		return errors.Wrapf(err, "rle: write fused segment %v", outSegPath)
	}
	if err := f.Close(ctx); err != nil {
		return err
	}
	return WriteMetadata(ctx, outMetaPath, meta)
}
