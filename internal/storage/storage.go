// Package storage centralizes rimerge's file-path conventions and
// I/O, going through github.com/grailbio/base/file the way
// encoding/pam/sharder.go and encoding/pam/fieldio do, rather than
// calling os.Open directly. This keeps every segment/meta/sample/spill
// path local-vs-cloud transparent, matching the teacher's convention.
package storage

import (
	"context"
	"io"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Filenames within an r-index directory, per spec.md §6.
const (
	BWTFileName     = "bwt.rle"
	MetaFileName    = "bwt.rle.meta"
	SamplesFileName = "samples.saes"
)

// BWTPath, MetaPath, SamplesPath join an index directory with the
// fixed filenames above.
func BWTPath(dir string) string     { return file.Join(dir, BWTFileName) }
func MetaPath(dir string) string    { return file.Join(dir, MetaFileName) }
func SamplesPath(dir string) string { return file.Join(dir, SamplesFileName) }

// Open opens path for sequential reading.
func Open(ctx context.Context, path string) (file.File, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: open %v", path)
	}
	return f, nil
}

// Create creates (or truncates) path for writing.
func Create(ctx context.Context, path string) (file.File, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "storage: create %v", path)
	}
	return f, nil
}

// Size returns the size in bytes of path, or an error if it does not
// exist.
func Size(ctx context.Context, path string) (int64, error) {
	info, err := file.Stat(ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, "storage: stat %v", path)
	}
	return info.Size(), nil
}

// Exists reports whether path can be stat'd successfully.
func Exists(ctx context.Context, path string) bool {
	_, err := file.Stat(ctx, path)
	return err == nil
}

// ReadFull opens path and reads it in its entirety.
func ReadFull(ctx context.Context, path string) ([]byte, error) {
	f, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close(ctx) }()
	data, err := io.ReadAll(f.Reader(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "storage: read %v", path)
	}
	return data, nil
}

// Remove deletes path; missing files are not an error, matching the
// merge driver's best-effort spill cleanup (spec.md §4.8 step 7).
func Remove(ctx context.Context, path string) error {
	if err := file.Remove(ctx, path); err != nil && !Exists(ctx, path) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "storage: remove %v", path)
	}
	return nil
}

// MkdirAll ensures dir and its parents exist.
func MkdirAll(ctx context.Context, dir string) error {
	if err := file.MkdirAll(ctx, dir, 0755); err != nil {
		return errors.Wrapf(err, "storage: mkdir %v", dir)
	}
	return nil
}
