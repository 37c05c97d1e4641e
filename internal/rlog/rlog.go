// Package rlog centralizes rimerge's logging through vlog, the same
// leveled-logging package the rest of the pack uses. It exists so that
// callers (the CLI, the merge driver, the alphabet)
// depend on one small surface instead of importing v.io/x/lib/vlog
// directly everywhere, and so flag registration happens in one place.
package rlog

import (
	"v.io/x/lib/vlog"
)

// ConfigureFromFlags wires vlog's own flags (-v, -logtostderr, ...)
// into the process. Call once from main, before any other rlog call.
func ConfigureFromFlags() error {
	return vlog.ConfigureLibraryLoggerFromFlags()
}

// Infof logs at the default verbosity.
func Infof(format string, args ...interface{}) {
	vlog.Infof(format, args...)
}

// VInfof logs at the given verbosity level, matching the density the
// teacher uses for per-block / per-shard progress lines.
func VInfof(level int, format string, args ...interface{}) {
	vlog.VI(vlog.Level(level)).Infof(format, args...)
}

// Warnf logs a warning-level message; vlog has no distinct warning
// level, so this matches the teacher's own convention of folding
// warnings into Infof with a prefix (see spec.md §7: "Empty right
// input ... logged as a warning").
func Warnf(format string, args ...interface{}) {
	vlog.Infof("WARNING: "+format, args...)
}

// Error logs an error-level message without terminating the process.
func Error(args ...interface{}) {
	vlog.Error(args...)
}

// Errorf logs a formatted error-level message without terminating the
// process.
func Errorf(format string, args ...interface{}) {
	vlog.Errorf(format, args...)
}
