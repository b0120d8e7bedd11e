package badgerstore

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rzbill/kvbind/internal/engine"
)

// sumOperator adds decimal integers.
type sumOperator struct{ calls int }

func (o *sumOperator) Name() string { return "test.sum" }

func (o *sumOperator) FullMerge(_, existing []byte, ops *engine.MergeOperands) ([]byte, bool) {
	o.calls++
	total := 0
	if existing != nil {
		n, err := strconv.Atoi(string(existing))
		if err != nil {
			return nil, false
		}
		total = n
	}
	for op := range ops.All() {
		n, err := strconv.Atoi(string(op))
		if err != nil {
			return nil, false
		}
		total += n
	}
	return []byte(strconv.Itoa(total)), true
}

func (o *sumOperator) PartialMerge(key []byte, ops *engine.MergeOperands) ([]byte, bool) {
	return o.FullMerge(key, nil, ops)
}

func openTestDB(t *testing.T, op engine.MergeOperator) (engine.DB, string) {
	t.Helper()
	dir := t.TempDir()
	opts, err := Driver{}.NewOptions()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	opts.SetCreateIfMissing(true)
	opts.IncreaseParallelism(1)
	opts.OptimizeLevelStyleCompaction(64 << 20)
	if op != nil {
		opts.SetMergeOperator(op)
	}
	db, err := Driver{}.Open(opts, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db, dir
}

func read(t *testing.T, db engine.DB, key string) (string, bool) {
	t.Helper()
	s, err := db.Get([]byte(key))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s == nil {
		return "", false
	}
	defer s.Free()
	return string(s.Data()), true
}

func TestCRUD(t *testing.T) {
	db, _ := openTestDB(t, nil)
	defer db.Close()

	if err := db.Put([]byte("k1"), []byte("v1111")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if v, ok := read(t, db, "k1"); !ok || v != "v1111" {
		t.Fatalf("get = %q,%v", v, ok)
	}
	if err := db.Delete([]byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := read(t, db, "k1"); ok {
		t.Fatal("expected absent after delete")
	}
}

func TestMergeSum(t *testing.T) {
	op := &sumOperator{}
	db, _ := openTestDB(t, op)
	defer db.Close()

	if err := db.Put([]byte("k"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	for _, v := range []string{"10", "2", "3"} {
		if err := db.Merge([]byte("k"), []byte(v)); err != nil {
			t.Fatalf("merge: %v", err)
		}
	}
	if v, _ := read(t, db, "k"); v != "16" {
		t.Fatalf("sum = %q", v)
	}
	if op.calls != 3 {
		t.Fatalf("operator calls = %d, want 3", op.calls)
	}
}

func TestMergeUnmergeable(t *testing.T) {
	db, _ := openTestDB(t, &sumOperator{})
	defer db.Close()
	_ = db.Put([]byte("k"), []byte("not a number"))
	if err := db.Merge([]byte("k"), []byte("1")); !errors.Is(err, engine.ErrUnmergeable) {
		t.Fatalf("merge err = %v", err)
	}
	if v, _ := read(t, db, "k"); v != "not a number" {
		t.Fatalf("value changed to %q", v)
	}
}

func TestEmptyKeyIsAbsent(t *testing.T) {
	db, _ := openTestDB(t, nil)
	defer db.Close()
	s, err := db.Get(nil)
	if err != nil || s != nil {
		t.Fatalf("get empty key = %v, %v; want absent", s, err)
	}
	if err := db.Delete([]byte{}); err != nil {
		t.Fatalf("delete empty key: %v", err)
	}
}

func TestDefaultMergeConcatenates(t *testing.T) {
	db, _ := openTestDB(t, nil)
	defer db.Close()
	if err := db.Put([]byte("k"), []byte("ab")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := db.Merge([]byte("k"), []byte("cd")); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got, _ := read(t, db, "k"); got != "abcd" {
		t.Fatalf("merged = %q", got)
	}
}

func TestOpenMissingWithoutCreate(t *testing.T) {
	opts, _ := Driver{}.NewOptions()
	_, err := Driver{}.Open(opts, filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, engine.ErrNotExist) {
		t.Fatalf("open err = %v", err)
	}
}

func TestDestroy(t *testing.T) {
	db, dir := openTestDB(t, nil)
	_ = db.Put([]byte("k"), []byte("v"))
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	opts, _ := Driver{}.NewOptions()
	if err := (Driver{}).Destroy(opts, dir); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("dir still present: %v", err)
	}

	opts.SetCreateIfMissing(true)
	db, err := Driver{}.Open(opts, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if _, ok := read(t, db, "k"); ok {
		t.Fatal("destroyed store should be empty")
	}
}
