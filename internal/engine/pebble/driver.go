package pebblestore

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/rzbill/kvbind/internal/engine"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// Name is the registry key of this driver.
const Name = "pebble"

func init() {
	engine.Register(New(Config{}))
}

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed write.
	FsyncModeAlways
	// FsyncModeInterval enables group-commit by allowing Pebble to coalesce WAL
	// syncs for operations within the configured interval.
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application. Pebble may
	// still sync based on its own policies.
	FsyncModeNever
)

// ParseFsyncMode maps "always", "interval", "never" or "" to a FsyncMode.
func ParseFsyncMode(s string) (FsyncMode, error) {
	switch s {
	case "":
		return FsyncModeUnspecified, nil
	case "always":
		return FsyncModeAlways, nil
	case "interval":
		return FsyncModeInterval, nil
	case "never":
		return FsyncModeNever, nil
	default:
		return FsyncModeUnspecified, fmt.Errorf("pebble: unknown fsync mode %q", s)
	}
}

// Config holds driver-wide settings that sit outside the engine options
// surface.
type Config struct {
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group-commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// FS overrides the filesystem, e.g. vfs.NewMem() in tests.
	FS vfs.FS
}

// Driver opens Pebble stores.
type Driver struct {
	cfg Config
}

var _ engine.Driver = (*Driver)(nil)

// New returns a driver using cfg.
func New(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Name implements engine.Driver.
func (d *Driver) Name() string { return Name }

// NewOptions implements engine.Driver.
func (d *Driver) NewOptions() (engine.Options, error) {
	po := &pebble.Options{FS: d.cfg.FS}
	po = po.EnsureDefaults()

	// Configure group-commit via WALMinSyncInterval when desired.
	switch d.cfg.Fsync {
	case FsyncModeAlways, FsyncModeNever:
		// Sync is chosen per write; WALMinSyncInterval stays at 0.
	case FsyncModeInterval:
		interval := d.cfg.FsyncInterval
		if interval <= 0 {
			interval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return interval }
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}
	return &Options{po: po}, nil
}

// Open implements engine.Driver.
func (d *Driver) Open(opts engine.Options, path string) (engine.DB, error) {
	o, err := d.options(opts)
	if err != nil {
		return nil, err
	}
	po := o.po.Clone()
	po.ErrorIfNotExists = !o.createIfMissing
	po.Merger = newMerger(o.mergeOp)

	inner, err := pebble.Open(path, po)
	if err != nil {
		if errors.Is(err, pebble.ErrDBDoesNotExist) {
			return nil, fmt.Errorf("%w: %s", engine.ErrNotExist, path)
		}
		return nil, err
	}
	if inner == nil {
		return nil, engine.ErrInitFailed
	}

	// Interval mode still syncs every write; WALMinSyncInterval lets Pebble
	// batch those syncs into one group commit.
	writeOpts := pebble.NoSync
	if d.cfg.Fsync == FsyncModeAlways || d.cfg.Fsync == FsyncModeInterval {
		writeOpts = pebble.Sync
	}
	return &DB{inner: inner, writeOpts: writeOpts}, nil
}

// Destroy implements engine.Driver.
func (d *Driver) Destroy(opts engine.Options, path string) error {
	o, err := d.options(opts)
	if err != nil {
		return err
	}
	return destroy(o.po.FS, path)
}

func (d *Driver) options(opts engine.Options) (*Options, error) {
	o, ok := opts.(*Options)
	if !ok || o == nil {
		return nil, fmt.Errorf("pebble: options of type %T were not created by this driver", opts)
	}
	if o.po == nil {
		return nil, errors.New("pebble: options already destroyed")
	}
	return o, nil
}

// Options is the Pebble options handle.
type Options struct {
	po              *pebble.Options
	createIfMissing bool
	mergeOp         engine.MergeOperator
}

var _ engine.Options = (*Options)(nil)

// SetCreateIfMissing controls whether Open creates a missing store.
func (o *Options) SetCreateIfMissing(v bool) { o.createIfMissing = v }

// IncreaseParallelism caps concurrent compactions at n.
func (o *Options) IncreaseParallelism(n int) {
	if n < 1 {
		n = 1
	}
	o.po.MaxConcurrentCompactions = func() int { return n }
}

// maxMemTableSize stays under Pebble's 4 GiB memtable limit.
const maxMemTableSize = 4<<30 - 1<<20

// OptimizeLevelStyleCompaction sizes memtables and the L0/Lbase shape from a
// memtable memory budget. The memtable is capped at maxMemTableSize, so any
// budget opens.
func (o *Options) OptimizeLevelStyleCompaction(budget uint64) {
	o.po.MemTableSize = min(budget/4, maxMemTableSize)
	o.po.MemTableStopWritesThreshold = 6
	o.po.L0CompactionThreshold = 2
	o.po.LBaseMaxBytes = clampInt64(budget)
	if len(o.po.Levels) > 0 {
		o.po.Levels[0].TargetFileSize = clampInt64(budget / 8)
	}
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// SetMergeOperator installs op for stores opened with these options.
func (o *Options) SetMergeOperator(op engine.MergeOperator) { o.mergeOp = op }

// SetLogger routes Pebble's own logging into logger.
func (o *Options) SetLogger(logger logpkg.Logger) {
	if logger == nil {
		return
	}
	o.po.Logger = &pebbleLogger{logger: logger.WithComponent("pebble")}
}

// Destroy releases the handle.
func (o *Options) Destroy() {
	o.po = nil
	o.mergeOp = nil
}
