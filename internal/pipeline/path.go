package pipeline

import (
	"fmt"

	"github.com/grailbio/base/file"
)

// RAPath names the spill file for job j within dir. Spill files are a
// pipeline-internal intermediate, not part of the on-disk r-index
// layout storage.go's constants describe, so the naming lives here
// rather than in internal/storage.
func RAPath(dir string, job int) string {
	return file.Join(dir, fmt.Sprintf("ra.%d.bin", job))
}
