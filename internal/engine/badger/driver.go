package badgerstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/multierr"

	"github.com/rzbill/kvbind/internal/engine"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// Name is the registry key of this driver.
const Name = "badger"

func init() {
	engine.Register(Driver{})
}

// Driver opens Badger stores.
type Driver struct {
	// SyncWrites makes every commit fsync before returning.
	SyncWrites bool
}

var _ engine.Driver = Driver{}

// Name implements engine.Driver.
func (Driver) Name() string { return Name }

// NewOptions implements engine.Driver.
func (d Driver) NewOptions() (engine.Options, error) {
	return &Options{syncWrites: d.SyncWrites}, nil
}

// Open implements engine.Driver.
func (Driver) Open(opts engine.Options, path string) (engine.DB, error) {
	o, err := asOptions(opts)
	if err != nil {
		return nil, err
	}
	if !o.createIfMissing {
		if _, err := os.Stat(filepath.Join(path, "MANIFEST")); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", engine.ErrNotExist, path)
		}
	}

	inner, err := badger.Open(o.build(path))
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, engine.ErrInitFailed
	}
	op := o.mergeOp
	if op == nil {
		op = engine.Concatenate{}
	}
	return &DB{inner: inner, op: op}, nil
}

// Destroy removes Badger's files under path, then path itself when empty. A
// missing path is not an error.
func (Driver) Destroy(opts engine.Options, path string) error {
	if _, err := asOptions(opts); err != nil {
		return err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var errs error
	remaining := 0
	for _, e := range entries {
		if e.IsDir() || !isEngineFile(e.Name()) {
			remaining++
			continue
		}
		errs = multierr.Append(errs, os.Remove(filepath.Join(path, e.Name())))
	}
	if errs != nil {
		return errs
	}
	if remaining == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func isEngineFile(name string) bool {
	switch name {
	case "MANIFEST", "KEYREGISTRY", "DISCARD", "LOCK":
		return true
	}
	for _, suffix := range []string{".sst", ".vlog", ".mem"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func asOptions(opts engine.Options) (*Options, error) {
	o, ok := opts.(*Options)
	if !ok || o == nil {
		return nil, fmt.Errorf("badger: options of type %T were not created by this driver", opts)
	}
	return o, nil
}

// Options is the Badger options handle. Tunables are recorded and applied on
// top of badger.DefaultOptions at open time.
type Options struct {
	createIfMissing bool
	syncWrites      bool
	compactors      int
	memtableBudget  uint64
	mergeOp         engine.MergeOperator
	logger          logpkg.Logger
}

var _ engine.Options = (*Options)(nil)

func (o *Options) SetCreateIfMissing(v bool) { o.createIfMissing = v }

// IncreaseParallelism sets the number of compactors. Badger needs at least two.
func (o *Options) IncreaseParallelism(n int) { o.compactors = max(n, 2) }

func (o *Options) OptimizeLevelStyleCompaction(budget uint64) { o.memtableBudget = budget }

func (o *Options) SetMergeOperator(op engine.MergeOperator) { o.mergeOp = op }

func (o *Options) SetLogger(logger logpkg.Logger) { o.logger = logger }

// Destroy is a no-op; the handle holds no engine resources.
func (o *Options) Destroy() {}

func (o *Options) build(path string) badger.Options {
	opts := badger.DefaultOptions(path).WithSyncWrites(o.syncWrites)
	if o.compactors > 0 {
		opts = opts.WithNumCompactors(o.compactors)
	}
	if o.memtableBudget > 0 {
		opts = opts.
			WithMemTableSize(int64(o.memtableBudget / 4)).
			WithNumMemtables(6).
			WithNumLevelZeroTables(2)
	}
	if o.logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: o.logger.WithComponent("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}
	return opts
}
