//go:build rocksdb

package kv

import (
	_ "github.com/rzbill/kvbind/internal/engine/rocksdb"
)
