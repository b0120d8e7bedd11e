package pebblestore

import (
	"errors"
	"io"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/kvbind/internal/engine"
)

// DB wraps a Pebble database instance with the configured fsync policy.
type DB struct {
	inner     *pebble.DB
	writeOpts *pebble.WriteOptions
}

var _ engine.DB = (*DB)(nil)

// Put stores value under key.
func (db *DB) Put(key, value []byte) error {
	return db.inner.Set(key, encode(tagSet, value), db.writeOpts)
}

// Delete removes key.
func (db *DB) Delete(key []byte) error {
	return db.inner.Delete(key, db.writeOpts)
}

// Merge records operand for key.
func (db *DB) Merge(key, operand []byte) error {
	return db.inner.Merge(key, encode(tagMerge, operand), db.writeOpts)
}

// Get returns the value for key without copying it. The returned slice pins
// Pebble memory until Free.
func (db *DB) Get(key []byte) (engine.Slice, error) {
	val, closer, err := db.inner.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	tag, payload := decode(val)
	if tag == tagFailed {
		err := unmergeable(payload)
		_ = closer.Close()
		return nil, err
	}
	return &slice{data: payload, closer: closer}, nil
}

// Close closes the Pebble database.
func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

type slice struct {
	data   []byte
	closer io.Closer
}

func (s *slice) Data() []byte { return s.data }

func (s *slice) Free() {
	s.data = nil
	if s.closer != nil {
		_ = s.closer.Close()
		s.closer = nil
	}
}
