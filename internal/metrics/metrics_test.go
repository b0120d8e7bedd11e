package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/kvbind/internal/mergeops"
	"github.com/rzbill/kvbind/pkg/kv"
)

func TestCollectorCounts(t *testing.T) {
	c := New("pebble")
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	c.ObserveWrite("put", time.Millisecond, 10)
	c.ObserveWrite("merge", time.Millisecond, 2)
	c.ObserveRead(time.Millisecond, 4, true)
	c.ObserveRead(time.Millisecond, 0, false)
	c.ObserveFailure("merge")
	c.ObserveMerge(3, true)
	c.ObserveMerge(1, false)

	require.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("put")))
	require.Equal(t, 2.0, testutil.ToFloat64(c.ops.WithLabelValues("get")))
	require.Equal(t, 12.0, testutil.ToFloat64(c.bytes.WithLabelValues("in")))
	require.Equal(t, 4.0, testutil.ToFloat64(c.bytes.WithLabelValues("out")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.reads.WithLabelValues("absent")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("merge")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.merges.WithLabelValues("failed")))

	n, err := testutil.GatherAndCount(reg, "kvbind_merge_operands")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCollectorAsStoreHook(t *testing.T) {
	c := New("pebble")
	opts, err := kv.NewOptionsFor("pebble")
	require.NoError(t, err)
	opts.SetCreateIfMissing(true)
	sum, _ := mergeops.Lookup(mergeops.Sum)
	opts.SetMergeOperator(mergeops.Sum, sum)
	opts.SetMetrics(c)

	db, err := kv.Open(opts, t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("k"), []byte("1")))
	require.NoError(t, db.Merge([]byte("k"), []byte("2")))
	res := db.GetString([]byte("k"))
	require.True(t, res.IsFound())
	require.Equal(t, "3", res.Value())
	require.True(t, db.Get([]byte("missing")).IsAbsent())

	require.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("put")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("merge")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.reads.WithLabelValues("found")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.reads.WithLabelValues("absent")))
	require.GreaterOrEqual(t, testutil.ToFloat64(c.merges.WithLabelValues("ok")), 1.0)
}
