package cmd

import (
	"bufio"
	"flag"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// applyConfigFile fills in any flag in fs that was not set on the
// command line from a flat "name = value" file at path, one
// assignment per line, '#' starting a comment. Flags already set on
// argv always win. There is no config-file library anywhere in the
// retrieved pack, so this is a small pass over the stdlib
// flag.FlagSet rather than a borrowed dependency.
func applyConfigFile(fs *flag.FlagSet, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "rimerge-merge: open config file %v", path)
	}
	defer f.Close()

	explicit := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })

	values := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return errors.Errorf("rimerge-merge: %v: malformed line %q, want \"name = value\"", path, line)
		}
		values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "rimerge-merge: read config file %v", path)
	}

	var setErr error
	fs.VisitAll(func(fl *flag.Flag) {
		if setErr != nil || explicit[fl.Name] {
			return
		}
		v, ok := values[fl.Name]
		if !ok {
			return
		}
		if err := fs.Set(fl.Name, v); err != nil {
			setErr = errors.Wrapf(err, "rimerge-merge: %v: set %s=%s", path, fl.Name, v)
		}
	})
	return setErr
}
