package pipeline

import (
	"context"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// Reader replays one job's spill file for C10: a sequence of (value,
// count) runs in the order C8 wrote them, followed by the Footer this
// Reader validates on open.
type Reader struct {
	data   []byte
	off    int
	Footer Footer
}

// OpenReader reads job j's spill file in full, checks its checksum
// footer (computed over the file's on-disk bytes, pre-decompression,
// so it also catches disk corruption), and decompresses it if compress
// is true, matching the writer side's Options.CompressSpill.
func OpenReader(ctx context.Context, dir string, job int, compress bool) (*Reader, error) {
	path := RAPath(dir, job)
	data, err := storage.ReadFull(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(data) < footerBytes {
		return nil, errors.Errorf("pipeline: spill %v is %d bytes, too short for a footer", path, len(data))
	}
	body := data[:len(data)-footerBytes]

	trailer := data[len(data)-footerBytes:]
	footer := Footer{
		Count:    binary.LittleEndian.Uint64(trailer[0:8]),
		Min:      binary.LittleEndian.Uint64(trailer[8:16]),
		Max:      binary.LittleEndian.Uint64(trailer[16:24]),
		Checksum: binary.LittleEndian.Uint64(trailer[24:32]),
	}
	if got := xxhash.Sum64(body); got != footer.Checksum {
		return nil, errors.Errorf("pipeline: spill %v checksum mismatch: got %x, want %x", path, got, footer.Checksum)
	}

	runBytes := body
	if compress {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline: zstd reader for %v", path)
		}
		defer dec.Close()
		runBytes, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline: zstd decode %v", path)
		}
	}
	if len(runBytes)%spillItemBytes != 0 {
		return nil, errors.Errorf("pipeline: spill %v has %d run bytes, not a multiple of %d", path, len(runBytes), spillItemBytes)
	}

	return &Reader{data: runBytes, Footer: footer}, nil
}

// Next returns the next (value, count) run, or ok=false once every
// run has been consumed.
func (r *Reader) Next() (value, count uint64, ok bool) {
	if r.off >= len(r.data) {
		return 0, 0, false
	}
	value = binary.LittleEndian.Uint64(r.data[r.off : r.off+8])
	count = binary.LittleEndian.Uint64(r.data[r.off+8 : r.off+16])
	r.off += spillItemBytes
	return value, count, true
}
