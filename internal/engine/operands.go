package engine

import "iter"

// MergeOperands is a forward-only cursor over the operands handed to one merge
// callback. Operands are yielded oldest first. Slices it yields borrow engine
// memory and are only valid until the callback returns.
type MergeOperands struct {
	at     func(i int) []byte
	n      int
	cursor int
}

// NewMergeOperands returns a cursor over list.
func NewMergeOperands(list [][]byte) *MergeOperands {
	return &MergeOperands{
		at: func(i int) []byte { return list[i] },
		n:  len(list),
	}
}

// NewMergeOperandsFunc returns a cursor over n operands produced by at, which
// is called at most once per index in increasing order. A negative n is
// treated as zero.
func NewMergeOperandsFunc(n int, at func(i int) []byte) *MergeOperands {
	if n < 0 {
		n = 0
	}
	return &MergeOperands{at: at, n: n}
}

// Next returns the next operand. Past the end it returns nil, false.
func (m *MergeOperands) Next() ([]byte, bool) {
	if m == nil || m.cursor >= m.n {
		return nil, false
	}
	op := m.at(m.cursor)
	m.cursor++
	return op, true
}

// Len is the total number of operands.
func (m *MergeOperands) Len() int {
	if m == nil {
		return 0
	}
	return m.n
}

// Remaining is the number of operands Next has not yet returned.
func (m *MergeOperands) Remaining() int {
	if m == nil {
		return 0
	}
	return m.n - m.cursor
}

// All yields the remaining operands, advancing the cursor.
func (m *MergeOperands) All() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for {
			op, ok := m.Next()
			if !ok || !yield(op) {
				return
			}
		}
	}
}
