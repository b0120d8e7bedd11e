//go:build rocksdb

package rocksdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rzbill/kvbind/internal/engine/enginetest"
)

func TestDriverSuite(t *testing.T) {
	enginetest.RunDriverSuite(t, Driver{})
}

func TestMergeOperatorOutlivesOptions(t *testing.T) {
	op := &enginetest.SumOperator{}
	opts, err := Driver{}.NewOptions()
	require.NoError(t, err)
	opts.SetCreateIfMissing(true)
	opts.SetMergeOperator(op)
	db, err := Driver{}.Open(opts, filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	opts.Destroy()
	defer db.Close()

	require.NoError(t, db.Merge([]byte("k"), []byte("4")))
	require.NoError(t, db.Merge([]byte("k"), []byte("5")))
	s, err := db.Get([]byte("k"))
	require.NoError(t, err)
	defer s.Free()
	require.Equal(t, "9", string(s.Data()))
}
