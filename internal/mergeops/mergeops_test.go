package mergeops

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/rzbill/kvbind/internal/engine"
	"github.com/rzbill/kvbind/pkg/kv"
)

func ops(vals ...string) *kv.MergeOperands {
	list := make([][]byte, len(vals))
	for i, v := range vals {
		list[i] = []byte(v)
	}
	return engine.NewMergeOperands(list)
}

func TestSumDecimal(t *testing.T) {
	tests := []struct {
		name     string
		existing []byte
		operands []string
		want     string
		ok       bool
	}{
		{"with base", []byte("1"), []string{"10", "2", "3"}, "16", true},
		{"no base", nil, []string{"4", "-1"}, "3", true},
		{"padded", []byte(" 7\n"), []string{"1"}, "8", true},
		{"bad base", []byte("x"), []string{"1"}, "", false},
		{"bad operand", []byte("1"), []string{"y"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SumDecimal(nil, tt.existing, ops(tt.operands...))
			if ok != tt.ok || (ok && string(got) != tt.want) {
				t.Fatalf("SumDecimal = %q,%v want %q,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAddUint64(t *testing.T) {
	enc := func(n uint64) string { return string(binary.LittleEndian.AppendUint64(nil, n)) }
	got, ok := AddUint64(nil, []byte(enc(5)), ops(enc(7), enc(30)))
	if !ok || binary.LittleEndian.Uint64(got) != 42 {
		t.Fatalf("AddUint64 = %x,%v", got, ok)
	}
	if _, ok := AddUint64(nil, []byte("short"), ops()); ok {
		t.Fatal("short base should fail")
	}
}

func TestStringAppend(t *testing.T) {
	fn, _ := Lookup(Append)
	got, _ := fn(nil, []byte("a"), ops("b", "", "c"))
	if string(got) != "a,b,c" {
		t.Fatalf("append = %q", got)
	}
	got, _ = fn(nil, nil, ops())
	if got == nil || len(got) != 0 {
		t.Fatalf("empty append = %#v", got)
	}
}

func TestMaxBytesCopies(t *testing.T) {
	existing := []byte("m")
	got, _ := MaxBytes(nil, existing, ops("a", "z", "q"))
	if string(got) != "z" {
		t.Fatalf("max = %q", got)
	}
	got, _ = MaxBytes(nil, existing, ops("a"))
	got[0] = 'X'
	if string(existing) != "m" {
		t.Fatal("result aliases existing value")
	}
}

func TestNames(t *testing.T) {
	want := []string{Append, Max, Sum, UInt64Add}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names = %v, want %v", got, want)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatal("unknown operator found")
	}
}

func TestSumThroughStore(t *testing.T) {
	opts := kv.NewOptions()
	opts.SetCreateIfMissing(true)
	opts.SetMergeOperator(Sum, SumDecimal)
	db, err := kv.Open(opts, filepath.Join(t.TempDir(), "mergetest"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Put([]byte("k1"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	for _, v := range []string{"10", "2", "3", "4", "5"} {
		if err := db.Merge([]byte("k1"), []byte(v)); err != nil {
			t.Fatalf("merge: %v", err)
		}
	}
	res := db.GetString([]byte("k1"))
	if !res.IsFound() || res.Value() != "25" {
		t.Fatalf("k1 = %v", res)
	}
	if err := db.Delete([]byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !db.Get([]byte("k1")).IsAbsent() {
		t.Fatal("k1 should be absent after delete")
	}
}
