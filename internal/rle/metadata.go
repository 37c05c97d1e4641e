package rle

import (
	"context"
	"encoding/binary"

	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

const metaAlphabetSize = 256

// Metadata is the ".meta" sidecar of a segment file: total symbols,
// total runs, and per-symbol size/run counts, per spec.md §6.
type Metadata struct {
	Size         uint64
	Runs         uint64
	SizePerChar  [metaAlphabetSize]uint64
	RunsPerChar  [metaAlphabetSize]uint64
}

const metadataByteLen = 8 + 8 + metaAlphabetSize*8 + metaAlphabetSize*8

// Encode serializes m to its fixed-width little-endian wire form.
func (m *Metadata) Encode() []byte {
	buf := make([]byte, metadataByteLen)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], m.Size)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], m.Runs)
	off += 8
	for _, v := range m.SizePerChar {
		binary.LittleEndian.PutUint64(buf[off:], v)
		off += 8
	}
	for _, v := range m.RunsPerChar {
		binary.LittleEndian.PutUint64(buf[off:], v)
		off += 8
	}
	return buf
}

// DecodeMetadata parses the fixed-width wire form produced by Encode.
func DecodeMetadata(buf []byte) (*Metadata, error) {
	if len(buf) != metadataByteLen {
		return nil, errors.Errorf("rle: metadata has %d bytes, want %d", len(buf), metadataByteLen)
	}
	m := &Metadata{}
	off := 0
	m.Size = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	m.Runs = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	for i := range m.SizePerChar {
		m.SizePerChar[i] = binary.LittleEndian.Uint64(buf[off:])
		off += 8
	}
	for i := range m.RunsPerChar {
		m.RunsPerChar[i] = binary.LittleEndian.Uint64(buf[off:])
		off += 8
	}
	return m, nil
}

// WriteMetadata writes m to path.
func WriteMetadata(ctx context.Context, path string, m *Metadata) error {
	f, err := storage.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close(ctx) }()
	if _, err := f.Writer(ctx).Write(m.Encode()); err != nil {
		return errors.Wrapf(err, "rle: write metadata %v", path)
	}
	return nil
}

// ReadMetadata reads and validates the metadata file at path.
func ReadMetadata(ctx context.Context, path string) (*Metadata, error) {
	buf, err := storage.ReadFull(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeMetadata(buf)
}

// Validate checks the invariant of spec.md §3: size equals the sum of
// SizePerChar, and runs equals the sum of RunsPerChar.
func (m *Metadata) Validate() error {
	var size, runs uint64
	for i := 0; i < metaAlphabetSize; i++ {
		size += m.SizePerChar[i]
		runs += m.RunsPerChar[i]
	}
	if size != m.Size {
		return errors.Errorf("rle: metadata size %d != sum(size_per_char) %d", m.Size, size)
	}
	if runs != m.Runs {
		return errors.Errorf("rle: metadata runs %d != sum(runs_per_char) %d", m.Runs, runs)
	}
	return nil
}
