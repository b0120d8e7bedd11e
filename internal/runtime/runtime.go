package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	cfgpkg "github.com/rzbill/kvbind/internal/config"
	pebblestore "github.com/rzbill/kvbind/internal/engine/pebble"
	"github.com/rzbill/kvbind/internal/mergeops"
	"github.com/rzbill/kvbind/internal/metrics"
	"github.com/rzbill/kvbind/pkg/kv"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// healthKey is read by CheckHealth. It is never written.
var healthKey = []byte("\x00kvbind/health")

// Options for building the Runtime.
type Options struct {
	// DataDir overrides Config.DataDir when set.
	DataDir string
	Config  cfgpkg.Config
	// Logger defaults to a discarding logger.
	Logger logpkg.Logger
	// Registry receives the store collector. A private registry is created
	// when nil.
	Registry *prometheus.Registry
}

// Runtime wires config, logging, metrics and one open store.
type Runtime struct {
	mu       sync.RWMutex
	db       *kv.DB
	config   cfgpkg.Config
	logger   logpkg.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
}

// Open validates the configuration, opens the store and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.Discard()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	kvOpts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	collector := metrics.New(kvOpts.Engine())
	if err := reg.Register(collector); err != nil {
		return nil, fmt.Errorf("runtime: register metrics: %w", err)
	}
	kvOpts.SetLogger(logger)
	kvOpts.SetMetrics(collector)

	db, err := kv.Open(kvOpts, cfg.DataDir)
	if err != nil {
		reg.Unregister(collector)
		return nil, err
	}
	return &Runtime{
		db:       db,
		config:   cfg,
		logger:   logger.WithComponent("runtime"),
		registry: reg,
		metrics:  collector,
	}, nil
}

// Destroy removes the store described by cfg. The store must not be open.
func Destroy(cfg cfgpkg.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	kvOpts, err := buildOptions(cfg)
	if err != nil {
		return err
	}
	return kv.Destroy(kvOpts, cfg.DataDir)
}

// buildOptions turns cfg into store Options. Pebble gets a dedicated driver
// when an fsync policy is configured.
func buildOptions(cfg cfgpkg.Config) (*kv.Options, error) {
	var opts *kv.Options
	if cfg.Fsync != "" && (cfg.Engine == "" || cfg.Engine == pebblestore.Name) {
		mode, err := pebblestore.ParseFsyncMode(cfg.Fsync)
		if err != nil {
			return nil, err
		}
		opts = kv.NewOptionsWith(pebblestore.New(pebblestore.Config{
			Fsync:         mode,
			FsyncInterval: time.Duration(cfg.FsyncIntervalMs) * time.Millisecond,
		}))
	} else {
		var err error
		if opts, err = kv.NewOptionsFor(cfg.Engine); err != nil {
			return nil, err
		}
	}
	opts.SetCreateIfMissing(cfg.CreateIfMissing)
	if cfg.Parallelism > 0 {
		opts.IncreaseParallelism(cfg.Parallelism)
	}
	if cfg.MemtableBudgetBytes > 0 {
		opts.OptimizeLevelStyleCompaction(cfg.MemtableBudgetBytes)
	}
	if cfg.MergeOperator != "" {
		fn, ok := mergeops.Lookup(cfg.MergeOperator)
		if !ok {
			return nil, fmt.Errorf("runtime: unknown merge operator %q (have %v)", cfg.MergeOperator, mergeops.Names())
		}
		opts.SetMergeOperator(cfg.MergeOperator, fn)
	}
	return opts, nil
}

// Close closes the store and drops the collector from the registry.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	var err error
	if cerr := r.db.Close(); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	if !r.registry.Unregister(r.metrics) {
		err = multierr.Append(err, errors.New("runtime: metrics collector was not registered"))
	}
	r.db = nil
	return err
}

// CheckHealth performs a read against the store.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return errors.New("db not open")
	}
	res := r.db.Get(healthKey)
	if res.IsFailed() {
		r.logger.Warn("health check failed", logpkg.Err(res.Err()))
		return res.Err()
	}
	if res.IsFound() {
		res.Value().Release()
	}
	return nil
}

// DB exposes the open store. It is nil after Close.
func (r *Runtime) DB() *kv.DB {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db
}

// Gatherer serves the metrics registered by this Runtime.
func (r *Runtime) Gatherer() prometheus.Gatherer { return r.registry }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
