package pebblestore

import (
	"fmt"
	"io"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/kvbind/internal/engine"
)

// Value envelope tags. Records without a known tag are treated as full values.
// A tagFailed record stands in for a merge the operator declined; its payload
// is the operator name. It behaves like a base value, so flushes and
// compactions carry it forward until a Put or Delete replaces it.
const (
	tagSet    byte = 0x01
	tagMerge  byte = 0x02
	tagFailed byte = 0x03
)

func encode(tag byte, value []byte) []byte {
	out := make([]byte, 1+len(value))
	out[0] = tag
	copy(out[1:], value)
	return out
}

func decode(raw []byte) (byte, []byte) {
	if len(raw) == 0 {
		return tagSet, raw
	}
	switch raw[0] {
	case tagSet, tagMerge, tagFailed:
		return raw[0], raw[1:]
	default:
		return tagSet, raw
	}
}

func newMerger(op engine.MergeOperator) *pebble.Merger {
	if op == nil {
		op = engine.Concatenate{}
	}
	return &pebble.Merger{
		Name: op.Name(),
		Merge: func(key, value []byte) (pebble.ValueMerger, error) {
			return &valueMerger{
				op:    op,
				key:   cloneBytes(key),
				newer: [][]byte{cloneBytes(value)},
			}, nil
		},
	}
}

// valueMerger collects the records of one key and hands them to the operator
// in application order on Finish. Pebble may reuse the buffers it passes in,
// so every record is copied.
type valueMerger struct {
	op  engine.MergeOperator
	key []byte
	// older holds records newest first, newer holds them oldest first.
	older [][]byte
	newer [][]byte
}

func (m *valueMerger) MergeNewer(value []byte) error {
	m.newer = append(m.newer, cloneBytes(value))
	return nil
}

func (m *valueMerger) MergeOlder(value []byte) error {
	m.older = append(m.older, cloneBytes(value))
	return nil
}

func (m *valueMerger) ordered() [][]byte {
	out := make([][]byte, 0, len(m.older)+len(m.newer))
	for i := len(m.older) - 1; i >= 0; i-- {
		out = append(out, m.older[i])
	}
	return append(out, m.newer...)
}

// Finish never returns an error: Pebble retries a failed flush or
// compaction forever, so a declined merge is recorded as a tagFailed value
// that Get reports as engine.ErrUnmergeable.
func (m *valueMerger) Finish(includesBase bool) ([]byte, io.Closer, error) {
	records := m.ordered()

	base := -1
	for i, r := range records {
		if tag, _ := decode(r); tag == tagSet || tag == tagFailed {
			base = i
		}
	}

	var existing []byte
	pending := records
	if base >= 0 {
		tag, payload := decode(records[base])
		if tag == tagFailed {
			return records[base], nil, nil
		}
		existing = payload
		pending = records[base+1:]
		if len(pending) == 0 {
			return records[base], nil, nil
		}
	}
	operands := engine.NewMergeOperandsFunc(len(pending), func(i int) []byte {
		_, payload := decode(pending[i])
		return payload
	})

	if base < 0 && !includesBase {
		out, ok := m.op.PartialMerge(m.key, operands)
		if !ok {
			return encode(tagFailed, []byte(m.op.Name())), nil, nil
		}
		return encode(tagMerge, out), nil, nil
	}
	out, ok := m.op.FullMerge(m.key, existing, operands)
	if !ok {
		return encode(tagFailed, []byte(m.op.Name())), nil, nil
	}
	return encode(tagSet, out), nil, nil
}

// unmergeable converts the payload of a tagFailed record into an error.
func unmergeable(name []byte) error {
	return fmt.Errorf("%w: operator %q", engine.ErrUnmergeable, name)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
