package engine

import (
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// Driver creates option handles and opens databases for one engine.
type Driver interface {
	// Name is the registry key of the engine.
	Name() string
	// NewOptions allocates a fresh options handle. An error here means the
	// engine could not allocate and callers treat it as fatal.
	NewOptions() (Options, error)
	// Open opens or creates the store at path. On success the returned DB
	// takes its own reference on any merge operator set on opts.
	Open(opts Options, path string) (DB, error)
	// Destroy removes the persisted state at path. The store must not be open.
	Destroy(opts Options, path string) error
}

// Options is a mutable engine configuration handle. Setters forward directly
// to the engine without validation.
type Options interface {
	SetCreateIfMissing(bool)
	IncreaseParallelism(n int)
	OptimizeLevelStyleCompaction(memtableBudget uint64)
	SetMergeOperator(op MergeOperator)
	SetLogger(logger logpkg.Logger)
	// Destroy releases the handle. DBs opened from it stay valid.
	Destroy()
}

// DB is an open engine instance. Implementations must be safe for
// concurrent Put, Get, Delete and Merge.
type DB interface {
	Put(key, value []byte) error
	// Get returns the value for key. A nil Slice with a nil error means the
	// key is absent.
	Get(key []byte) (Slice, error)
	Delete(key []byte) error
	Merge(key, operand []byte) error
	Close() error
}

// Slice is a byte sequence owned by the engine. Data is valid until Free,
// and Free must be called exactly once.
type Slice interface {
	Data() []byte
	Free()
}

// MergeOperator combines merge operands for a key.
//
// FullMerge receives the stored value, or nil when the key has none, and
// every pending operand oldest first. PartialMerge folds a run of operands
// into one. Returning false reports the operands cannot be combined.
//
// Both run on engine goroutines, possibly long after registration, and must
// not retain key, existing or operand bytes past the call.
type MergeOperator interface {
	Name() string
	FullMerge(key, existing []byte, operands *MergeOperands) ([]byte, bool)
	PartialMerge(key []byte, operands *MergeOperands) ([]byte, bool)
}

// BytesSlice is a Slice over Go memory. Free drops the reference.
type BytesSlice struct {
	b []byte
}

// NewBytesSlice wraps b.
func NewBytesSlice(b []byte) *BytesSlice { return &BytesSlice{b: b} }

// Data returns the wrapped bytes.
func (s *BytesSlice) Data() []byte { return s.b }

// Free drops the reference to the bytes.
func (s *BytesSlice) Free() { s.b = nil }
