package sasamples

import (
	"context"
	"encoding/binary"

	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// recordBytes is the on-disk width of one (position, value) pair:
// two SampleBytes-wide little-endian fields, matching the original's
// SA_samples::write (two 5-byte writes per sample).
const recordBytes = 2 * SampleBytes

func putUint40(buf []byte, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	copy(buf, tmp[:SampleBytes])
}

func getUint40(buf []byte) uint64 {
	var tmp [8]byte
	copy(tmp[:SampleBytes], buf)
	return binary.LittleEndian.Uint64(tmp[:])
}

// AppendRecord encodes one (position, value) sample record onto buf,
// in the on-disk format WriteTo/Load use. Exported for C10, which
// writes samples as it discovers them rather than from a populated
// Store.
func AppendRecord(buf []byte, position, value uint64) []byte {
	var rec [recordBytes]byte
	putUint40(rec[:SampleBytes], position)
	putUint40(rec[SampleBytes:], value)
	return append(buf, rec[:]...)
}

// WriteTo serializes the store's samples, in ascending position order,
// to path as a flat sequence of (position, value) records. The store
// must be initialized.
func (s *Store) WriteTo(ctx context.Context, path string) error {
	samples, err := s.All()
	if err != nil {
		return err
	}
	buf := make([]byte, len(samples)*recordBytes)
	off := 0
	for _, sm := range samples {
		putUint40(buf[off:], sm.Position)
		putUint40(buf[off+SampleBytes:], sm.Value)
		off += recordBytes
	}
	f, err := storage.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close(ctx) }()
	if _, err := f.Writer(ctx).Write(buf); err != nil {
		return errors.Wrapf(err, "sasamples: write %v", path)
	}
	return nil
}

// Load reads a samples file written by WriteTo and returns an
// initialized Store over [0, n).
func Load(ctx context.Context, path string, n uint64) (*Store, error) {
	buf, err := storage.ReadFull(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(buf)%recordBytes != 0 {
		return nil, errors.Errorf("sasamples: %v has %d bytes, not a multiple of %d", path, len(buf), recordBytes)
	}
	s := New()
	for off := 0; off < len(buf); off += recordBytes {
		pos := getUint40(buf[off:])
		val := getUint40(buf[off+SampleBytes:])
		s.Add(pos, val)
	}
	s.Init(n)
	return s, nil
}
