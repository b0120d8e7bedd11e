package pebblestore

import (
	"errors"
	"os"
	"strings"

	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/multierr"
)

// isEngineFile reports whether name is a file Pebble creates in its data
// directory.
func isEngineFile(name string) bool {
	switch name {
	case "CURRENT", "LOCK":
		return true
	}
	for _, prefix := range []string{"MANIFEST-", "OPTIONS-", "marker.", "temporary."} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, suffix := range []string{".sst", ".log", ".dbtmp"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// destroy removes Pebble's files under dir and then dir itself when nothing
// else is left in it. A missing dir is not an error.
func destroy(fs vfs.FS, dir string) error {
	if fs == nil {
		fs = vfs.Default
	}
	names, err := fs.List(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var errs error
	remaining := 0
	for _, name := range names {
		path := fs.PathJoin(dir, name)
		switch {
		case name == "archive":
			errs = multierr.Append(errs, fs.RemoveAll(path))
		case isEngineFile(name):
			errs = multierr.Append(errs, fs.Remove(path))
		default:
			remaining++
		}
	}
	if errs != nil {
		return errs
	}
	if remaining == 0 {
		if err := fs.Remove(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
