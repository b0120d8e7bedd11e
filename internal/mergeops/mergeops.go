// Package mergeops holds the built-in merge operators that can be selected by
// name from configuration or the command line.
package mergeops

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	"github.com/rzbill/kvbind/pkg/kv"
)

// Operator names.
const (
	Sum       = "sum"
	UInt64Add = "uint64add"
	Append    = "append"
	Max       = "max"
)

// AppendDelimiter separates values joined by the append operator.
const AppendDelimiter = ","

var registry = map[string]kv.MergeFunc{
	Sum:       SumDecimal,
	UInt64Add: AddUint64,
	Append:    StringAppend(AppendDelimiter),
	Max:       MaxBytes,
}

// Lookup returns the operator registered as name.
func Lookup(name string) (kv.MergeFunc, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names returns the sorted operator names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SumDecimal treats the value and operands as base-10 integers and adds them.
// Anything that does not parse makes the merge fail.
func SumDecimal(_, existing []byte, operands *kv.MergeOperands) ([]byte, bool) {
	var total int64
	if existing != nil {
		n, err := strconv.ParseInt(strings.TrimSpace(string(existing)), 10, 64)
		if err != nil {
			return nil, false
		}
		total = n
	}
	for op := range operands.All() {
		n, err := strconv.ParseInt(strings.TrimSpace(string(op)), 10, 64)
		if err != nil {
			return nil, false
		}
		total += n
	}
	return strconv.AppendInt(nil, total, 10), true
}

// AddUint64 treats the value and operands as 8-byte little-endian counters.
func AddUint64(_, existing []byte, operands *kv.MergeOperands) ([]byte, bool) {
	var result uint64
	if existing != nil {
		if len(existing) != 8 {
			return nil, false
		}
		result = binary.LittleEndian.Uint64(existing)
	}
	for op := range operands.All() {
		if len(op) != 8 {
			return nil, false
		}
		result += binary.LittleEndian.Uint64(op)
	}
	return binary.LittleEndian.AppendUint64(nil, result), true
}

// StringAppend joins the value and operands with delim, skipping empties.
func StringAppend(delim string) kv.MergeFunc {
	return func(_, existing []byte, operands *kv.MergeOperands) ([]byte, bool) {
		result := append([]byte(nil), existing...)
		for op := range operands.All() {
			if len(result) > 0 && len(op) > 0 {
				result = append(result, delim...)
			}
			result = append(result, op...)
		}
		if result == nil {
			result = []byte{}
		}
		return result, true
	}
}

// MaxBytes keeps the bytewise-largest of the value and operands.
func MaxBytes(_, existing []byte, operands *kv.MergeOperands) ([]byte, bool) {
	maxVal := existing
	for op := range operands.All() {
		if maxVal == nil || bytes.Compare(op, maxVal) > 0 {
			maxVal = op
		}
	}
	return append([]byte{}, maxVal...), true
}
