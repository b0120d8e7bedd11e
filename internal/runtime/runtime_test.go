package runtime

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	cfgpkg "github.com/rzbill/kvbind/internal/config"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	cfg := cfgpkg.Default()
	cfg.Fsync = "always"
	rt, err := Open(Options{DataDir: dir, Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err == nil {
		t.Fatalf("health should fail after close")
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestMergeOperatorFromConfig(t *testing.T) {
	for _, engine := range []string{"pebble", "badger"} {
		t.Run(engine, func(t *testing.T) {
			cfg := cfgpkg.Default()
			cfg.Engine = engine
			cfg.MergeOperator = "sum"
			rt, err := Open(Options{DataDir: t.TempDir(), Config: cfg})
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer rt.Close()
			db := rt.DB()
			for _, v := range []string{"5", "6", "7"} {
				if err := db.Merge([]byte("hits"), []byte(v)); err != nil {
					t.Fatalf("merge: %v", err)
				}
			}
			res := db.GetString([]byte("hits"))
			if !res.IsFound() || res.Value() != "18" {
				t.Fatalf("got %v", res)
			}
			n, err := testutil.GatherAndCount(rt.Gatherer(), "kvbind_operations_total")
			if err != nil {
				t.Fatalf("gather: %v", err)
			}
			if n == 0 {
				t.Fatalf("expected operation series")
			}
		})
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.MergeOperator = "nope"
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected unknown merge operator error")
	}
	cfg = cfgpkg.Default()
	cfg.Engine = "leveldb"
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected unknown engine error")
	}
	cfg = cfgpkg.Default()
	cfg.CreateIfMissing = false
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected missing store error")
	}
}

func TestDestroy(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.DataDir = t.TempDir()
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := rt.DB().Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := Destroy(cfg); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	rt, err = Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rt.Close()
	if !rt.DB().Get([]byte("a")).IsAbsent() {
		t.Fatalf("expected empty store after destroy")
	}
}
