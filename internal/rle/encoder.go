package rle

import (
	"context"

	"github.com/marco-oliva/rimerge/internal/storage"
)

// sentinel marks "no run started yet" the way the original's
// RLEncoder uses the NUL byte for curr_run_char before the first
// append.
const sentinel byte = 0x00

// dataTerminator is duplicated here (rather than importing
// internal/alphabet) to avoid a dependency cycle; alphabet.DataTerminator
// has the same value and the two are kept in sync by spec.md §6, which
// fixes both as reserved constants.
const dataTerminator byte = 0x01

// Encoder incrementally run-length encodes a byte stream into a
// segment file plus its metadata sidecar, per spec.md §4.1.
type Encoder struct {
	buf           []byte
	meta          Metadata
	currChar      byte
	currLength    uint64
	started       bool
	firstAppend   bool
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{firstAppend: true}
}

// Append extends the current run if c matches its character;
// otherwise flushes the pending run and starts a new one. Per
// spec.md §4.1's documented edge case, a symbol value of 0 on the very
// first Append is substituted with the data terminator, and a symbol
// value of 0 is never written to the stream.
func (e *Encoder) Append(c byte) {
	if e.firstAppend {
		e.firstAppend = false
		if c == sentinel {
			c = dataTerminator
		}
	}
	e.meta.Size++
	e.meta.SizePerChar[c]++

	if !e.started {
		e.started = true
		e.currChar = c
		e.currLength = 1
		e.meta.Runs = 1
		e.meta.RunsPerChar[c]++
		return
	}
	if c == e.currChar {
		e.currLength++
		return
	}
	e.meta.Runs++
	e.meta.RunsPerChar[c]++
	e.flushRun(e.currChar, e.currLength)
	e.currChar = c
	e.currLength = 1
}

// AppendRun appends length copies of c.
func (e *Encoder) AppendRun(c byte, length uint64) {
	for i := uint64(0); i < length; i++ {
		e.Append(c)
	}
}

func (e *Encoder) flushRun(c byte, length uint64) {
	parts := SplitLength(length)
	for i, l := range parts {
		e.buf = WriteRecord(e.buf, Record{
			Continuation: i != len(parts)-1,
			Length:       l,
			Symbol:       c,
		})
	}
}

// Close flushes the pending run and returns the encoded segment bytes
// and final metadata. The Encoder must not be used after Close.
func (e *Encoder) Close() ([]byte, *Metadata) {
	if e.started {
		e.flushRun(e.currChar, e.currLength)
	}
	meta := e.meta
	return e.buf, &meta
}

// WriteTo closes e and writes the segment to segPath and its metadata
// sidecar to metaPath.
func (e *Encoder) WriteTo(ctx context.Context, segPath, metaPath string) error {
	data, meta := e.Close()
	f, err := storage.Create(ctx, segPath)
	if err != nil {
		return err
	}
	if _, err := f.Writer(ctx).Write(data); err != nil {
		_ = f.Close(ctx)
		return err
	}
	if err := f.Close(ctx); err != nil {
		return err
	}
	return WriteMetadata(ctx, metaPath, meta)
}
