package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine != "pebble" {
		t.Fatalf("default engine = %q", cfg.Engine)
	}
	if !cfg.CreateIfMissing {
		t.Fatalf("default createIfMissing should be true")
	}
	if cfg.DataDir == "" {
		t.Fatalf("default data dir")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kvbind.json")
	data := []byte(`{"engine":"badger","dataDir":"/srv/kv","parallelism":4,"mergeOperator":"sum","log":{"level":"debug"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine != "badger" || cfg.DataDir != "/srv/kv" || cfg.Parallelism != 4 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.MergeOperator != "sum" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("unset fields should keep defaults, got format %q", cfg.Log.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kvbind.yaml")
	data := []byte(`engine: pebble
dataDir: /var/lib/kv
createIfMissing: false
memtableBudgetBytes: 536870912
fsync: interval
fsyncIntervalMs: 2
metricsAddr: ":9108"
log:
  level: warn
  format: json
`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CreateIfMissing {
		t.Fatalf("expected createIfMissing false")
	}
	if cfg.MemtableBudgetBytes != 512<<20 || cfg.Fsync != "interval" || cfg.FsyncIntervalMs != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Log.Format != "json" || cfg.MetricsAddr != ":9108" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadYAMLLogRedactionAndSampling(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kvbind.yml")
	data := []byte(`log:
  level: debug
  file: /var/log/kvbind.log
  redactKeys: [token, password]
  sampleInitial: 10
  sampleThereafter: 100
`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	lc := cfg.Log.Logger()
	if lc.Level != "debug" || lc.Format != "text" {
		t.Fatalf("level/format: %+v", lc)
	}
	if len(lc.RedactKeys) != 2 || lc.RedactKeys[1] != "password" {
		t.Fatalf("redact keys: %v", lc.RedactKeys)
	}
	if lc.SampleInitial != 10 || lc.SampleThereafter != 100 {
		t.Fatalf("sampling: %+v", lc)
	}
	if len(lc.Output) != 1 || lc.Output[0].Type != "file" || lc.Output[0].Path != "/var/log/kvbind.log" {
		t.Fatalf("output: %+v", lc.Output)
	}
	if out := Default().Log.Logger().Output; len(out) != 0 {
		t.Fatalf("default logger should use the console, got %+v", out)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(file, []byte("engine: [unterminated"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(file); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("KVBIND_ENGINE", "badger")
	t.Setenv("KVBIND_CREATE_IF_MISSING", "false")
	t.Setenv("KVBIND_PARALLELISM", "8")
	t.Setenv("KVBIND_MEMTABLE_BUDGET_BYTES", "1048576")
	t.Setenv("KVBIND_FSYNC", "always")
	t.Setenv("KVBIND_LOG_LEVEL", "error")
	t.Setenv("KVBIND_FSYNC_INTERVAL_MS", "not-a-number")
	t.Setenv("KVBIND_LOG_REDACT_KEYS", "token,secret")
	FromEnv(&cfg)
	if cfg.Engine != "badger" || cfg.CreateIfMissing || cfg.Parallelism != 8 {
		t.Fatalf("env overrides: %+v", cfg)
	}
	if cfg.MemtableBudgetBytes != 1<<20 || cfg.Fsync != "always" || cfg.Log.Level != "error" {
		t.Fatalf("env overrides: %+v", cfg)
	}
	if len(cfg.Log.RedactKeys) != 2 || cfg.Log.RedactKeys[0] != "token" {
		t.Fatalf("redact keys from env: %v", cfg.Log.RedactKeys)
	}
	if cfg.FsyncIntervalMs != 5 {
		t.Fatalf("unparseable value should be ignored, got %d", cfg.FsyncIntervalMs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no data dir", func(c *Config) { c.DataDir = "" }, true},
		{"negative parallelism", func(c *Config) { c.Parallelism = -1 }, true},
		{"bad fsync", func(c *Config) { c.Fsync = "sometimes" }, true},
		{"negative interval", func(c *Config) { c.FsyncIntervalMs = -3 }, true},
		{"negative sampling", func(c *Config) { c.Log.SampleThereafter = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
