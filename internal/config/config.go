package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Engine names a registered engine driver ("pebble", "badger", "rocksdb").
	Engine          string `json:"engine" yaml:"engine"`
	DataDir         string `json:"dataDir" yaml:"dataDir"`
	CreateIfMissing bool   `json:"createIfMissing" yaml:"createIfMissing"`
	// Parallelism is forwarded to IncreaseParallelism when positive.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
	// MemtableBudgetBytes is forwarded to OptimizeLevelStyleCompaction when
	// positive.
	MemtableBudgetBytes uint64 `json:"memtableBudgetBytes" yaml:"memtableBudgetBytes"`
	// MergeOperator names a built-in merge operator; empty means none.
	MergeOperator string `json:"mergeOperator" yaml:"mergeOperator"`
	// Fsync is one of "always", "interval", "never" or empty. Pebble only.
	Fsync           string `json:"fsync" yaml:"fsync"`
	FsyncIntervalMs int    `json:"fsyncIntervalMs" yaml:"fsyncIntervalMs"`

	Log LogConfig `json:"log" yaml:"log"`

	// MetricsAddr, when set, serves /metrics and /v1/healthz on this address.
	MetricsAddr string `json:"metricsAddr" yaml:"metricsAddr"`
}

// LogConfig selects the process logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	// File, when set, receives log lines instead of stderr.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// RedactKeys lists field names whose values are replaced in output.
	RedactKeys []string `json:"redactKeys,omitempty" yaml:"redactKeys,omitempty"`
	// SampleInitial and SampleThereafter keep the first SampleInitial entries
	// per message and then every SampleThereafter-th. Zero disables sampling.
	SampleInitial    int `json:"sampleInitial,omitempty" yaml:"sampleInitial,omitempty"`
	SampleThereafter int `json:"sampleThereafter,omitempty" yaml:"sampleThereafter,omitempty"`
}

// Logger converts c into the logging package's declarative config.
func (c LogConfig) Logger() *logpkg.Config {
	out := &logpkg.Config{
		Level:            c.Level,
		Format:           c.Format,
		RedactKeys:       c.RedactKeys,
		SampleInitial:    c.SampleInitial,
		SampleThereafter: c.SampleThereafter,
	}
	if c.File != "" {
		out.Output = []logpkg.OutputConfig{{Type: "file", Path: c.File}}
	}
	return out
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Engine:          "pebble",
		DataDir:         DefaultDataDir(),
		CreateIfMissing: true,
		FsyncIntervalMs: 5,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is
// empty, returns defaults. Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Validate reports settings no component can act on.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: dataDir is required")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("config: parallelism must not be negative, got %d", c.Parallelism)
	}
	switch c.Fsync {
	case "", "always", "interval", "never":
	default:
		return fmt.Errorf("config: fsync must be always, interval or never, got %q", c.Fsync)
	}
	if c.Log.SampleInitial < 0 || c.Log.SampleThereafter < 0 {
		return fmt.Errorf("config: log sampling must not be negative")
	}
	if c.FsyncIntervalMs < 0 {
		return fmt.Errorf("config: fsyncIntervalMs must not be negative, got %d", c.FsyncIntervalMs)
	}
	return nil
}
