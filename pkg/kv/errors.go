package kv

import (
	"errors"
	"fmt"

	"github.com/rzbill/kvbind/internal/engine"
)

var (
	// ErrClosed is returned by a second Close.
	ErrClosed = errors.New("database is closed")
	// ErrOptionsConsumed is returned when Options are reused after Open or
	// Destroy.
	ErrOptionsConsumed = errors.New("options already consumed")
	// ErrNotUTF8 is returned by GetString for values that are not valid UTF-8.
	ErrNotUTF8 = errors.New("value is not valid UTF-8")

	// ErrInitFailed is returned by Open when the engine produced neither a
	// handle nor a message.
	ErrInitFailed = engine.ErrInitFailed
	// ErrUnmergeable marks merges the operator declined.
	ErrUnmergeable = engine.ErrUnmergeable
	// ErrUnknownEngine is returned by NewOptionsFor for unregistered engines.
	ErrUnknownEngine = engine.ErrUnknownEngine
	// ErrNotExist is returned by Open for a missing store when
	// create-if-missing is off.
	ErrNotExist = engine.ErrNotExist
)

// Error records a failed operation and the path of the store it ran on.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("kv: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kv: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
