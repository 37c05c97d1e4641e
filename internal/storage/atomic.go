package storage

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// WriteFileAtomic writes buf to a temp file beside path, fsyncs it,
// and renames it into place with unix.Rename so a reader never
// observes a partially written bwt.rle/.meta/samples.saes file if the
// process dies mid-write. Grounded on the write-temp-fsync-rename
// shape of a local-filesystem cache finalizer in the retrieved
// examples, with golang.org/x/sys/unix's Rename standing in for that
// example's plain syscall.Rename. Local paths only (unlike the rest
// of this package, which goes through file.Create for cloud-storage
// transparency); callers that need atomic finalization on a cloud
// path should fall back to Create.
func WriteFileAtomic(path string, buf []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "storage: create temp file in %v", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "storage: write %v", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "storage: sync %v", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "storage: close %v", tmpPath)
	}
	if err := unix.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "storage: rename %v -> %v", tmpPath, path)
	}
	return nil
}
