package pipeline

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// run is one (value, count) pair: count occurrences of value landed
// in this job's range during a single producer flush. Values are
// written in ascending order within a flush, and flushes are written
// to the file in the order their buffer filled, so the file preserves
// the relative order distinct producers observed their values in,
// per spec.md §4.5.
type run struct {
	value uint64
	count uint64
}

// Footer is the trailer written after the last run: the number of RA
// values (with multiplicity) that landed in the job, the minimum and
// maximum value seen, and an xxhash64 checksum of the on-disk bytes
// that precede it (zstd-compressed when compression is on), per spec.md §4.5's "track the minimum and maximum
// RA value... plus the total count."
type Footer struct {
	Count    uint64
	Min, Max uint64
	Checksum uint64
}

const footerBytes = 4 * 8

// slot is one merge slot: a bounded channel of runs from every
// producer thread, drained by a single goroutine into one spill file.
type slot struct {
	ch       chan run
	wg       sync.WaitGroup
	mu       sync.Mutex
	err      error
	min, max uint64
	count    uint64
	checksum uint64
	seenAny  bool
	compress bool
}

func newSlot(bufferSize int, compress bool) *slot {
	capacity := bufferSize / spillItemBytes
	if capacity < 1 {
		capacity = 1
	}
	return &slot{ch: make(chan run, capacity), compress: compress}
}

// start launches the drain goroutine writing to path. Call close to
// stop it and flush the footer.
func (s *slot) start(ctx context.Context, path string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.drain(ctx, path); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
	}()
}

func (s *slot) drain(ctx context.Context, path string) error {
	f, err := storage.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close(ctx) }()

	fw := f.Writer(ctx)
	h := xxhash.New()
	bw := bufio.NewWriter(io.MultiWriter(fw, h))
	var out io.Writer = bw
	var enc *zstd.Encoder
	if s.compress {
		enc, err = zstd.NewWriter(bw)
		if err != nil {
			return errors.Wrapf(err, "pipeline: zstd writer for %v", path)
		}
		out = enc
	}

	var scratch [spillItemBytes]byte
	for r := range s.ch {
		binary.LittleEndian.PutUint64(scratch[0:8], r.value)
		binary.LittleEndian.PutUint64(scratch[8:16], r.count)
		if _, err := out.Write(scratch[:]); err != nil {
			return errors.Wrapf(err, "pipeline: write spill %v", path)
		}
		s.observe(r)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return errors.Wrapf(err, "pipeline: close zstd writer for %v", path)
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "pipeline: flush spill %v", path)
	}

	s.checksum = h.Sum64()
	footer := Footer{Count: s.count, Min: s.min, Max: s.max, Checksum: s.checksum}
	return writeFooter(fw, footer)
}

// observe folds r into the running min/max/count. The drain goroutine
// is the sole writer to these fields, so no lock is needed here; s.mu
// only guards s.err in start's goroutine, and the other fields are read
// after the drain goroutine has been waited on.
func (s *slot) observe(r run) {
	if !s.seenAny {
		s.seenAny = true
		s.min, s.max = r.value, r.value
	} else {
		if r.value < s.min {
			s.min = r.value
		}
		if r.value > s.max {
			s.max = r.value
		}
	}
	s.count += r.count
}

func writeFooter(w io.Writer, footer Footer) error {
	var buf [footerBytes]byte
	binary.LittleEndian.PutUint64(buf[0:8], footer.Count)
	binary.LittleEndian.PutUint64(buf[8:16], footer.Min)
	binary.LittleEndian.PutUint64(buf[16:24], footer.Max)
	binary.LittleEndian.PutUint64(buf[24:32], footer.Checksum)
	_, err := w.Write(buf[:])
	return err
}

// send delivers a run to the slot, blocking if the channel (and thus
// the bounded thread-buffer-size budget) is full.
func (s *slot) send(r run) {
	s.ch <- r
}

// close stops accepting runs and waits for the drain goroutine to
// finish writing the file and its footer.
func (s *slot) close() error {
	close(s.ch)
	s.wg.Wait()
	return s.err
}
