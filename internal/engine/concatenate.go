package engine

// ConcatenateName names the operator drivers fall back to when no merge
// operator is registered.
const ConcatenateName = "kvbind.concatenate"

// Concatenate appends operands, oldest first, onto the existing value. It
// never declines.
type Concatenate struct{}

var _ MergeOperator = Concatenate{}

func (Concatenate) Name() string { return ConcatenateName }

func (Concatenate) FullMerge(_, existing []byte, operands *MergeOperands) ([]byte, bool) {
	out := append([]byte{}, existing...)
	for op := range operands.All() {
		out = append(out, op...)
	}
	return out, true
}

func (c Concatenate) PartialMerge(key []byte, operands *MergeOperands) ([]byte, bool) {
	return c.FullMerge(key, nil, operands)
}
