package kv

import (
	"github.com/rzbill/kvbind/internal/engine"
)

// MergeOperands is the cursor a MergeFunc reads its operands from, oldest
// first. It and every slice it yields are only valid during the call.
type MergeOperands = engine.MergeOperands

// MergeFunc combines the operands recorded for key into a new value.
//
// existing is nil when the key has no value and non-nil (possibly empty)
// otherwise. Returning false reports that the operands cannot be combined;
// the engine then fails the read or compaction that needed the merge. The
// returned slice is copied, so it may alias a scratch buffer but must not
// alias key, existing or an operand.
type MergeFunc func(key, existing []byte, operands *MergeOperands) ([]byte, bool)

// mergeBridge presents a MergeFunc to the engine as a MergeOperator.
type mergeBridge struct {
	name    string
	fn      MergeFunc
	metrics MetricsHook
}

var _ engine.MergeOperator = (*mergeBridge)(nil)

func (b *mergeBridge) Name() string { return b.name }

func (b *mergeBridge) FullMerge(key, existing []byte, operands *MergeOperands) ([]byte, bool) {
	n := operands.Len()
	out, ok := b.fn(key, existing, operands)
	b.metrics.ObserveMerge(n, ok)
	return out, ok
}

func (b *mergeBridge) PartialMerge(key []byte, operands *MergeOperands) ([]byte, bool) {
	return b.FullMerge(key, nil, operands)
}
