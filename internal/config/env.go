package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays KVBIND_* environment variables onto cfg. Values that do
// not parse are ignored.
func FromEnv(cfg *Config) {
	if v := os.Getenv("KVBIND_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("KVBIND_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("KVBIND_CREATE_IF_MISSING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CreateIfMissing = b
		}
	}
	if v := os.Getenv("KVBIND_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parallelism = n
		}
	}
	if v := os.Getenv("KVBIND_MEMTABLE_BUDGET_BYTES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MemtableBudgetBytes = n
		}
	}
	if v := os.Getenv("KVBIND_MERGE_OPERATOR"); v != "" {
		cfg.MergeOperator = v
	}
	if v := os.Getenv("KVBIND_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("KVBIND_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
	if v := os.Getenv("KVBIND_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KVBIND_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("KVBIND_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("KVBIND_LOG_REDACT_KEYS"); v != "" {
		cfg.Log.RedactKeys = strings.Split(v, ",")
	}
	if v := os.Getenv("KVBIND_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
}
