package pebblestore

import (
	"testing"

	"github.com/rzbill/kvbind/internal/engine/enginetest"
)

func TestDriverSuite(t *testing.T) {
	enginetest.RunDriverSuite(t, New(Config{Fsync: FsyncModeNever}))
}
