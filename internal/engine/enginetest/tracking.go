// Package enginetest provides test helpers for engine drivers: a tracking
// wrapper that audits Slice ownership and a conformance suite every driver
// runs.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/rzbill/kvbind/internal/engine"
)

// Stats counts Slices handed out and freed.
type Stats struct {
	Allocs int
	Frees  int
}

// Tracking wraps a Driver and audits every Slice its databases return:
// each must be freed exactly once and never read after Free.
type Tracking struct {
	engine.Driver

	mu     sync.Mutex
	stats  Stats
	faults []string
	nextID int
}

var _ engine.Driver = (*Tracking)(nil)

// Track wraps drv.
func Track(drv engine.Driver) *Tracking {
	return &Tracking{Driver: drv}
}

// Open opens through the wrapped driver and tracks the returned DB.
func (t *Tracking) Open(opts engine.Options, path string) (engine.DB, error) {
	db, err := t.Driver.Open(opts, path)
	if err != nil {
		return nil, err
	}
	return &trackedDB{DB: db, t: t}, nil
}

// Stats returns a snapshot of the counters.
func (t *Tracking) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Live is the number of Slices not yet freed.
func (t *Tracking) Live() int {
	s := t.Stats()
	return s.Allocs - s.Frees
}

// Faults lists double frees and reads after free, in order.
func (t *Tracking) Faults() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.faults...)
}

func (t *Tracking) fault(format string, args ...any) {
	t.mu.Lock()
	t.faults = append(t.faults, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

type trackedDB struct {
	engine.DB
	t *Tracking
}

func (db *trackedDB) Get(key []byte) (engine.Slice, error) {
	s, err := db.DB.Get(key)
	if err != nil || s == nil {
		return s, err
	}
	db.t.mu.Lock()
	db.t.stats.Allocs++
	db.t.nextID++
	id := db.t.nextID
	db.t.mu.Unlock()
	return &trackedSlice{inner: s, t: db.t, id: id}, nil
}

type trackedSlice struct {
	inner engine.Slice
	t     *Tracking
	id    int
	freed bool
}

func (s *trackedSlice) Data() []byte {
	if s.freed {
		s.t.fault("slice %d: read after free", s.id)
		return nil
	}
	return s.inner.Data()
}

func (s *trackedSlice) Free() {
	if s.freed {
		s.t.fault("slice %d: double free", s.id)
		return
	}
	s.freed = true
	s.inner.Free()
	s.t.mu.Lock()
	s.t.stats.Frees++
	s.t.mu.Unlock()
}
