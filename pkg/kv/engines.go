package kv

import (
	_ "github.com/rzbill/kvbind/internal/engine/badger"
	_ "github.com/rzbill/kvbind/internal/engine/pebble"
)
