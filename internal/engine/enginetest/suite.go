package enginetest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/kvbind/internal/engine"
)

// SumOperator adds decimal integers and records every operand it consumes.
type SumOperator struct {
	mu       sync.Mutex
	operands []string
}

// Name implements engine.MergeOperator.
func (o *SumOperator) Name() string { return "enginetest.sum" }

// FullMerge implements engine.MergeOperator.
func (o *SumOperator) FullMerge(_, existing []byte, ops *engine.MergeOperands) ([]byte, bool) {
	total := 0
	if existing != nil {
		n, err := strconv.Atoi(string(existing))
		if err != nil {
			return nil, false
		}
		total = n
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for op := range ops.All() {
		n, err := strconv.Atoi(string(op))
		if err != nil {
			return nil, false
		}
		o.operands = append(o.operands, string(op))
		total += n
	}
	return []byte(strconv.Itoa(total)), true
}

// PartialMerge implements engine.MergeOperator.
func (o *SumOperator) PartialMerge(key []byte, ops *engine.MergeOperands) ([]byte, bool) {
	return o.FullMerge(key, nil, ops)
}

// Operands returns the operands consumed so far, in order.
func (o *SumOperator) Operands() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.operands...)
}

// RunDriverSuite checks the behavior every driver must share.
func RunDriverSuite(t *testing.T, drv engine.Driver) {
	open := func(t *testing.T, op engine.MergeOperator) (engine.DB, string) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "db")
		opts, err := drv.NewOptions()
		require.NoError(t, err)
		defer opts.Destroy()
		opts.SetCreateIfMissing(true)
		if op != nil {
			opts.SetMergeOperator(op)
		}
		db, err := drv.Open(opts, path)
		require.NoError(t, err)
		return db, path
	}
	read := func(t *testing.T, db engine.DB, key string) (string, bool) {
		t.Helper()
		s, err := db.Get([]byte(key))
		require.NoError(t, err)
		if s == nil {
			return "", false
		}
		defer s.Free()
		return string(s.Data()), true
	}

	t.Run("RoundTrip", func(t *testing.T) {
		db, _ := open(t, nil)
		defer db.Close()
		values := map[string][]byte{
			"k1":     []byte("v1111"),
			"binary": {0x00, 0xff, 0x10},
			"empty":  {},
		}
		for k, v := range values {
			require.NoError(t, db.Put([]byte(k), v))
		}
		for k, v := range values {
			got, ok := read(t, db, k)
			require.True(t, ok, k)
			assert.Equal(t, string(v), got, k)
		}
	})

	t.Run("AbsentAndDelete", func(t *testing.T) {
		db, _ := open(t, nil)
		defer db.Close()
		_, ok := read(t, db, "never")
		assert.False(t, ok)

		require.NoError(t, db.Put([]byte("k"), []byte("v")))
		require.NoError(t, db.Delete([]byte("k")))
		_, ok = read(t, db, "k")
		assert.False(t, ok)
		require.NoError(t, db.Delete([]byte("never")))

		_, ok = read(t, db, "")
		assert.False(t, ok, "empty key that was never written")
		require.NoError(t, db.Delete([]byte{}))
	})

	t.Run("MergeSum", func(t *testing.T) {
		op := &SumOperator{}
		db, _ := open(t, op)
		defer db.Close()
		require.NoError(t, db.Put([]byte("k"), []byte("1")))
		for _, v := range []string{"10", "2", "3"} {
			require.NoError(t, db.Merge([]byte("k"), []byte(v)))
		}
		got, ok := read(t, db, "k")
		require.True(t, ok)
		assert.Equal(t, "16", got)
		assert.Equal(t, []string{"10", "2", "3"}, op.Operands())
	})

	t.Run("UnmergeableFails", func(t *testing.T) {
		db, _ := open(t, &SumOperator{})
		defer db.Close()
		require.NoError(t, db.Put([]byte("k"), []byte("one")))
		err := db.Merge([]byte("k"), []byte("2"))
		if err == nil {
			_, err = db.Get([]byte("k"))
		}
		assert.ErrorIs(t, err, engine.ErrUnmergeable)

		// A Put replaces whatever the failed merge left behind.
		require.NoError(t, db.Put([]byte("k"), []byte("5")))
		s, err := db.Get([]byte("k"))
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "5", string(s.Data()))
		s.Free()
	})

	t.Run("CreateIfMissingFalse", func(t *testing.T) {
		opts, err := drv.NewOptions()
		require.NoError(t, err)
		defer opts.Destroy()
		_, err = drv.Open(opts, filepath.Join(t.TempDir(), "missing"))
		assert.True(t, errors.Is(err, engine.ErrNotExist), "err = %v", err)
	})

	t.Run("DestroyThenFresh", func(t *testing.T) {
		db, path := open(t, nil)
		require.NoError(t, db.Put([]byte("k"), []byte("v")))
		require.NoError(t, db.Close())

		opts, err := drv.NewOptions()
		require.NoError(t, err)
		defer opts.Destroy()
		require.NoError(t, drv.Destroy(opts, path))

		opts.SetCreateIfMissing(true)
		db, err = drv.Open(opts, path)
		require.NoError(t, err)
		defer db.Close()
		_, ok := read(t, db, "k")
		assert.False(t, ok)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		db, _ := open(t, nil)
		defer db.Close()
		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					k := []byte(fmt.Sprintf("w%d-%d", w, i))
					if err := db.Put(k, k); err != nil {
						t.Errorf("put: %v", err)
						return
					}
					s, err := db.Get(k)
					if err != nil || s == nil {
						t.Errorf("get %s: %v", k, err)
						return
					}
					if string(s.Data()) != string(k) {
						t.Errorf("get %s = %q", k, s.Data())
					}
					s.Free()
				}
			}(w)
		}
		wg.Wait()
	})

	t.Run("SlicesFreedOnce", func(t *testing.T) {
		tr := Track(drv)
		opts, err := tr.NewOptions()
		require.NoError(t, err)
		defer opts.Destroy()
		opts.SetCreateIfMissing(true)
		db, err := tr.Open(opts, filepath.Join(t.TempDir(), "db"))
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Put([]byte("k"), []byte("v")))
		for i := 0; i < 100; i++ {
			s, err := db.Get([]byte("k"))
			require.NoError(t, err)
			require.NotNil(t, s)
			s.Free()
		}
		assert.Equal(t, Stats{Allocs: 100, Frees: 100}, tr.Stats())
		assert.Zero(t, tr.Live())
		assert.Empty(t, tr.Faults())
	})
}
