// Package pebblestore is the default engine driver, backed by Pebble.
//
// Values are stored behind a one-byte envelope that records whether a record
// is a full value or a pending merge operand, so the merge trampoline can tell
// the base value apart from operands in every compaction and read path.
//
// Usage:
//
//	drv := pebblestore.New(pebblestore.Config{
//	    Fsync: pebblestore.FsyncModeInterval,
//	})
//	opts, _ := drv.NewOptions()
//	opts.SetCreateIfMissing(true)
//	db, err := drv.Open(opts, "./data")
//	if err != nil { /* handle */ }
//	defer db.Close()
//
// Importing the package registers a driver with default Config under the
// name "pebble".
package pebblestore
