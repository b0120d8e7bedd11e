package kv

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rzbill/kvbind/internal/engine"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// DB is an open store. Put, Get, Delete and Merge are safe for concurrent use.
// Close must not race with them; using a DB after Close panics.
type DB struct {
	inner   engine.DB
	path    string
	engine  string
	logger  logpkg.Logger
	metrics MetricsHook
	closed  atomic.Bool
}

// OpenDefault opens or creates the store at path with the default engine.
func OpenDefault(path string) (*DB, error) {
	opts := NewOptions()
	opts.SetCreateIfMissing(true)
	return Open(opts, path)
}

// Open opens the store at path, consuming opts.
func Open(opts *Options, path string) (*DB, error) {
	if !opts.consume() {
		return nil, &Error{Op: "open", Path: path, Err: ErrOptionsConsumed}
	}
	defer opts.inner.Destroy()

	logger := opts.logger.With(logpkg.Component("kv"), logpkg.Str("engine", opts.drv.Name()), logpkg.Str("path", path))
	inner, err := opts.drv.Open(opts.inner, path)
	if err == nil && inner == nil {
		err = engine.ErrInitFailed
	}
	if err != nil {
		err = engine.Describe(err)
		opts.metrics.ObserveFailure("open")
		logger.Warn("open failed", logpkg.Err(err))
		return nil, &Error{Op: "open", Path: path, Err: err}
	}
	logger.Info("database opened")
	return &DB{
		inner:   inner,
		path:    path,
		engine:  opts.drv.Name(),
		logger:  logger,
		metrics: opts.metrics,
	}, nil
}

// Destroy removes the store at path, consuming opts. The store must not be
// open anywhere.
func Destroy(opts *Options, path string) error {
	if !opts.consume() {
		return &Error{Op: "destroy", Path: path, Err: ErrOptionsConsumed}
	}
	defer opts.inner.Destroy()

	logger := opts.logger.With(logpkg.Component("kv"), logpkg.Str("engine", opts.drv.Name()), logpkg.Str("path", path))
	if err := opts.drv.Destroy(opts.inner, path); err != nil {
		err = engine.Describe(err)
		opts.metrics.ObserveFailure("destroy")
		logger.Warn("destroy failed", logpkg.Err(err))
		return &Error{Op: "destroy", Path: path, Err: err}
	}
	logger.Info("database destroyed")
	return nil
}

// Path is the directory the store was opened at.
func (db *DB) Path() string { return db.path }

// Engine is the name of the engine backing the store.
func (db *DB) Engine() string { return db.engine }

func (db *DB) mustBeOpen(op string) {
	if db.closed.Load() {
		panic(fmt.Sprintf("kv: %s on closed database %s", op, db.path))
	}
}

func (db *DB) write(op string, n int, fn func() error) error {
	db.mustBeOpen(op)
	start := time.Now()
	if err := fn(); err != nil {
		err = engine.Describe(err)
		db.metrics.ObserveFailure(op)
		db.logger.Warn(op+" failed", logpkg.Err(err))
		return &Error{Op: op, Path: db.path, Err: err}
	}
	db.metrics.ObserveWrite(op, time.Since(start), n)
	return nil
}

// Put stores value under key.
func (db *DB) Put(key, value []byte) error {
	return db.write("put", len(key)+len(value), func() error { return db.inner.Put(key, value) })
}

// Delete removes key. Deleting a missing key succeeds.
func (db *DB) Delete(key []byte) error {
	return db.write("delete", len(key), func() error { return db.inner.Delete(key) })
}

// Merge records operand for key, to be combined by the registered merge
// operator. Without one, engines concatenate operands onto the value.
func (db *DB) Merge(key, operand []byte) error {
	return db.write("merge", len(key)+len(operand), func() error { return db.inner.Merge(key, operand) })
}

// Get reads key. A Found result holds a Buffer the caller must Release.
func (db *DB) Get(key []byte) Result[*Buffer] {
	db.mustBeOpen("get")
	start := time.Now()
	s, err := db.inner.Get(key)
	if err != nil {
		if s != nil {
			s.Free()
		}
		err = engine.Describe(err)
		db.metrics.ObserveFailure("get")
		db.logger.Warn("get failed", logpkg.Err(err))
		return Failed[*Buffer](&Error{Op: "get", Path: db.path, Err: err})
	}
	if s == nil {
		db.metrics.ObserveRead(time.Since(start), 0, false)
		return Absent[*Buffer]()
	}
	db.metrics.ObserveRead(time.Since(start), len(s.Data()), true)
	return Found(newBuffer(s))
}

// View calls fn with the value of key and releases it when fn returns, even
// if fn panics. It reports whether the key was found; fn is not called when
// it was not.
func (db *DB) View(key []byte, fn func(value []byte) error) (bool, error) {
	res := db.Get(key)
	switch {
	case res.IsFailed():
		return false, res.Err()
	case res.IsAbsent():
		return false, nil
	}
	buf := res.Value()
	defer buf.Release()
	return true, fn(buf.Bytes())
}

// GetString reads key as UTF-8 text. Values that are not valid UTF-8 fail
// with ErrNotUTF8.
func (db *DB) GetString(key []byte) Result[string] {
	res := db.Get(key)
	switch {
	case res.IsFailed():
		return Failed[string](res.Err())
	case res.IsAbsent():
		return Absent[string]()
	}
	buf := res.Value()
	defer buf.Release()
	s, ok := buf.UTF8()
	if !ok {
		return Failed[string](&Error{Op: "get", Path: db.path, Err: ErrNotUTF8})
	}
	return Found(s)
}

// Close releases the engine instance. Only the first call closes; later
// calls return ErrClosed.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return &Error{Op: "close", Path: db.path, Err: ErrClosed}
	}
	if err := db.inner.Close(); err != nil {
		err = engine.Describe(err)
		db.logger.Warn("close failed", logpkg.Err(err))
		return &Error{Op: "close", Path: db.path, Err: err}
	}
	db.logger.Info("database closed")
	return nil
}
