// Package rerrors provides the "first error wins" aggregation used to
// collect failures out of concurrent workers (the merge driver's
// per-job interleave consumers) and check
// them at a phase barrier, per spec.md §7: "worker threads set a
// single atomic error flag ... callers check the flag at phase
// barriers."
package rerrors

import "sync"

// Once captures the first non-nil error reported to it. Safe for
// concurrent use. Modeled on github.com/grailbio/base/errors.Once,
// used the same way by encoding/pam/fieldio.Reader and
// encoding/pam/pamwriter.go in the teacher.
type Once struct {
	mu  sync.Mutex
	err error
}

// Set records err if it is the first non-nil error seen. Later errors
// are dropped, matching the teacher's dominance rule for the left
// SA-update map (first writer wins, spec.md §4.4 tie-break rule).
func (o *Once) Set(err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err == nil {
		o.err = err
	}
}

// Err returns the first recorded error, or nil.
func (o *Once) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}
