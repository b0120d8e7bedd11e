package kv

import (
	"fmt"
	"sync/atomic"

	"github.com/rzbill/kvbind/internal/engine"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// Options configure a store before Open or Destroy. Setters forward to the
// engine as they are called. The first Open or Destroy consumes the Options;
// they must not be used afterwards.
type Options struct {
	drv      engine.Driver
	inner    engine.Options
	logger   logpkg.Logger
	metrics  MetricsHook
	merge    *mergeBridge
	consumed atomic.Bool
}

// NewOptions returns Options for the default engine. It panics if the engine
// cannot allocate an options handle.
func NewOptions() *Options {
	opts, err := NewOptionsFor(engine.DefaultEngine)
	if err != nil {
		panic(err)
	}
	return opts
}

// NewOptionsFor returns Options for the engine registered as name. It panics
// if the engine cannot allocate an options handle.
func NewOptionsFor(name string) (*Options, error) {
	drv, err := engine.Lookup(name)
	if err != nil {
		return nil, &Error{Op: "options", Err: err}
	}
	return NewOptionsWith(drv), nil
}

// NewOptionsWith returns Options for drv. It panics if drv cannot allocate an
// options handle.
func NewOptionsWith(drv engine.Driver) *Options {
	inner, err := drv.NewOptions()
	if err != nil || inner == nil {
		panic(fmt.Sprintf("kv: could not create %s options: %v", drv.Name(), err))
	}
	logger := logpkg.Discard()
	inner.SetLogger(logger)
	return &Options{
		drv:     drv,
		inner:   inner,
		logger:  logger,
		metrics: NoopMetrics{},
	}
}

func (o *Options) mustBeUnused() {
	if o.consumed.Load() {
		panic("kv: Options used after Open or Destroy")
	}
}

// Engine is the name of the engine these Options open.
func (o *Options) Engine() string { return o.drv.Name() }

// SetCreateIfMissing makes Open create the store when it does not exist.
func (o *Options) SetCreateIfMissing(v bool) {
	o.mustBeUnused()
	o.inner.SetCreateIfMissing(v)
}

// IncreaseParallelism lets the engine use up to n background threads.
func (o *Options) IncreaseParallelism(n int) {
	o.mustBeUnused()
	o.inner.IncreaseParallelism(n)
}

// OptimizeLevelStyleCompaction tunes the engine for level-style compaction
// within a memtable memory budget in bytes.
func (o *Options) OptimizeLevelStyleCompaction(memtableBudget uint64) {
	o.mustBeUnused()
	o.inner.OptimizeLevelStyleCompaction(memtableBudget)
}

// SetMergeOperator registers fn under name. The engine keeps fn for the life
// of every store opened with these Options.
func (o *Options) SetMergeOperator(name string, fn MergeFunc) {
	o.mustBeUnused()
	o.merge = &mergeBridge{name: name, fn: fn, metrics: NoopMetrics{}}
	o.inner.SetMergeOperator(o.merge)
}

// SetLogger sets the logger used by the store and the engine.
func (o *Options) SetLogger(logger logpkg.Logger) {
	o.mustBeUnused()
	if logger == nil {
		logger = logpkg.Discard()
	}
	o.logger = logger
	o.inner.SetLogger(logger)
}

// SetMetrics sets the hook that observes the store's operations.
func (o *Options) SetMetrics(m MetricsHook) {
	o.mustBeUnused()
	if m == nil {
		m = NoopMetrics{}
	}
	o.metrics = m
}

// consume marks the Options used. It reports false if they already were.
func (o *Options) consume() bool {
	if !o.consumed.CompareAndSwap(false, true) {
		return false
	}
	if o.merge != nil {
		o.merge.metrics = o.metrics
	}
	return true
}
