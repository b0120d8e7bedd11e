// Package engine defines the narrow boundary between kvbind and a native
// embedded key-value engine.
//
// An engine is reached through a Driver which hands out an Options handle and
// opens DB handles. Reads return engine-owned Slices that must be freed exactly
// once. Merge operators are registered as a MergeOperator and invoked by the
// driver's trampolines with a MergeOperands cursor that is only valid for the
// duration of one callback.
//
// Drivers register themselves by name from an init function, in the manner of
// database/sql:
//
//	import _ "github.com/rzbill/kvbind/internal/engine/pebble"
//
//	drv, err := engine.Lookup("pebble")
package engine
