package rle

import (
	"context"

	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// Run is a maximal same-symbol run in the underlying BWT string, per
// spec.md §3.
type Run struct {
	Offset    uint64
	Length    uint64
	Character byte
}

// Decoder yields one Run at a time from an in-memory segment buffer.
// On a continuation record, it accumulates length from subsequent
// records before yielding a Run, per spec.md §4.1.
type Decoder struct {
	buf        []byte
	pos        int
	offset     uint64
	runsServed uint64
	meta       *Metadata
}

// NewDecoder wraps a segment buffer and its metadata.
func NewDecoder(buf []byte, meta *Metadata) *Decoder {
	return &Decoder{buf: buf, meta: meta}
}

// LoadDecoder reads segPath and metaPath and returns a ready Decoder.
func LoadDecoder(ctx context.Context, segPath, metaPath string) (*Decoder, error) {
	meta, err := ReadMetadata(ctx, metaPath)
	if err != nil {
		return nil, err
	}
	data, err := storage.ReadFull(ctx, segPath)
	if err != nil {
		return nil, err
	}
	return NewDecoder(data, meta), nil
}

// Meta returns the decoder's metadata.
func (d *Decoder) Meta() *Metadata { return d.meta }

// End reports whether all runs recorded in the metadata have been
// served.
func (d *Decoder) End() bool {
	return d.runsServed >= d.meta.Runs
}

// Next decodes and returns the next Run.
func (d *Decoder) Next() (Run, error) {
	if d.End() {
		return Run{}, errors.New("rle: decoder exhausted")
	}
	var run Run
	run.Offset = d.offsetSoFar()
	more := true
	first := true
	for more {
		if d.pos+recordSize > len(d.buf) {
			return Run{}, errors.New("rle: truncated record")
		}
		rec, n := ReadRecord(d.buf[d.pos:])
		d.pos += n
		more = rec.Continuation
		if first {
			run.Character = rec.Symbol
			first = false
		}
		run.Length += uint64(rec.Length)
	}
	d.runsServed++
	d.offset += run.Length
	return run, nil
}

func (d *Decoder) offsetSoFar() uint64 { return d.offset }

// DecodeAll drains d and returns every Run in order. internal/rlebwt
// (Load, BuildFromString) and internal/rindex's mmap loader call it to
// materialize the full run list before BuildFromRuns.
func (d *Decoder) DecodeAll() ([]Run, error) {
	var runs []Run
	for !d.End() {
		r, err := d.Next()
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}
