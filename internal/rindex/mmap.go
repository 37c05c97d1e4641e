package rindex

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/marco-oliva/rimerge/internal/rle"
	"github.com/marco-oliva/rimerge/internal/rlebwt"
	"github.com/marco-oliva/rimerge/internal/sasamples"
	"github.com/marco-oliva/rimerge/internal/storage"
	"github.com/pkg/errors"
)

// mappedFile pairs an mmap region with the descriptor that must stay
// open for its lifetime.
type mappedFile struct {
	f    *os.File
	data mmap.MMap
}

func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "rindex: open %v", path)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "rindex: stat %v", path)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return &mappedFile{f: f, data: nil}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "rindex: mmap %v", path)
	}
	return &mappedFile{f: f, data: m}, nil
}

func (m *mappedFile) Close() error {
	var err error
	if m.data != nil {
		err = m.data.Unmap()
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// LoadMMap memory-maps the bwt.rle and samples.saes files under dir
// (a local path; mmap-go has no remote-filesystem support), building
// an RIndex whose backing memory is the OS page cache rather than a
// heap copy. Per spec.md §9's design notes, this is an
// implementation-friendly default, not a hard requirement — Load
// above is the portable (and cloud-storage-capable) equivalent. The
// returned close function must be called once the index is no longer
// needed, after which BWT decode results stay valid (the succinct
// structures are built eagerly at load time) but any lazy reads of the
// mapped region would not be.
func LoadMMap(dir string, blockSize int) (*RIndex, func() error, error) {
	bwtMap, err := openMapped(storage.BWTPath(dir))
	if err != nil {
		return nil, nil, err
	}
	samplesMap, err := openMapped(storage.SamplesPath(dir))
	if err != nil {
		_ = bwtMap.Close()
		return nil, nil, err
	}
	closeAll := func() error {
		err1 := bwtMap.Close()
		err2 := samplesMap.Close()
		if err1 != nil {
			return err1
		}
		return err2
	}

	metaBuf, err := os.ReadFile(storage.MetaPath(dir))
	if err != nil {
		_ = closeAll()
		return nil, nil, errors.Wrapf(err, "rindex: read %v", storage.MetaPath(dir))
	}
	meta, err := rle.DecodeMetadata(metaBuf)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}

	dec := rle.NewDecoder([]byte(bwtMap.data), meta)
	runs, err := dec.DecodeAll()
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	bwt, err := rlebwt.BuildFromRuns(runs, meta.Size, blockSize)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}

	samples := sasamples.New()
	buf := []byte(samplesMap.data)
	const recordBytes = 2 * sasamples.SampleBytes
	if len(buf)%recordBytes != 0 {
		_ = closeAll()
		return nil, nil, errors.Errorf("rindex: samples file has %d bytes, not a multiple of %d", len(buf), recordBytes)
	}
	for off := 0; off < len(buf); off += recordBytes {
		pos := readUint40(buf[off:])
		val := readUint40(buf[off+sasamples.SampleBytes:])
		samples.Add(pos, val)
	}
	samples.Init(bwt.Size())

	return New(bwt, samples), closeAll, nil
}

func readUint40(buf []byte) uint64 {
	var v uint64
	for i := 0; i < sasamples.SampleBytes; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v
}
