package engine

import (
	"errors"
	"fmt"
	"syscall"
	"unicode/utf8"
)

var (
	// ErrInitFailed is reported when an engine produced neither a handle nor
	// an error message.
	ErrInitFailed = errors.New("could not initialize database")
	// ErrUnmergeable is reported when a merge operator declines its operands.
	ErrUnmergeable = errors.New("merge operands could not be combined")
	// ErrUnknownEngine is reported by Lookup for an unregistered name.
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrNotExist is reported when opening a missing store without
	// create-if-missing.
	ErrNotExist = errors.New("database does not exist")
)

const noOSDetails = "none provided by OS"

// Failure converts an engine error message into an error. An empty or
// undecodable message falls back to the OS error osErr.
func Failure(msg string, osErr error) error {
	if msg != "" && utf8.ValidString(msg) {
		return errors.New(msg)
	}
	return OSError(osErr)
}

// OSError describes err as an operating-system failure.
func OSError(err error) error {
	var errno syscall.Errno
	switch {
	case err == nil:
		return &osError{desc: "unknown error", details: noOSDetails}
	case errors.As(err, &errno) && errno != 0:
		return &osError{desc: errno.Error(), details: fmt.Sprintf("errno %d", int(errno)), err: err}
	case errors.As(err, &errno):
		return &osError{desc: "unknown error", details: noOSDetails}
	default:
		return &osError{desc: err.Error(), details: noOSDetails, err: err}
	}
}

type osError struct {
	desc    string
	details string
	err     error
}

func (e *osError) Error() string {
	return fmt.Sprintf("desc: %s, details: %s", e.desc, e.details)
}

func (e *osError) Unwrap() error { return e.err }

// Describe returns err unless its message is empty, in which case the OS
// fallback is used.
func Describe(err error) error {
	if err == nil || err.Error() != "" {
		return err
	}
	return OSError(errors.Unwrap(err))
}
