// Package metrics exports store activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rzbill/kvbind/pkg/kv"
)

const namespace = "kvbind"

// Collector implements kv.MetricsHook on top of Prometheus collectors.
type Collector struct {
	ops       *prometheus.CounterVec
	failures  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	bytes     *prometheus.CounterVec
	reads     *prometheus.CounterVec
	merges    *prometheus.CounterVec
	mergeSize prometheus.Histogram
}

var _ kv.MetricsHook = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

// New builds a Collector labelled with the engine name. Register it with a
// prometheus.Registerer before serving.
func New(engine string) *Collector {
	labels := prometheus.Labels{"engine": engine}
	return &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "operations_total",
			Help:        "Successful store operations by kind.",
			ConstLabels: labels,
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "operation_failures_total",
			Help:        "Failed store operations by kind.",
			ConstLabels: labels,
		}, []string{"op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "operation_duration_seconds",
			Help:        "Latency of successful store operations.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bytes_total",
			Help:        "Value bytes written or read.",
			ConstLabels: labels,
		}, []string{"direction"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reads_total",
			Help:        "Gets by outcome.",
			ConstLabels: labels,
		}, []string{"result"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "merge_calls_total",
			Help:        "Merge operator invocations by outcome.",
			ConstLabels: labels,
		}, []string{"result"}),
		mergeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "merge_operands",
			Help:        "Operands handed to a single merge operator call.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

func (c *Collector) ObserveWrite(op string, elapsed time.Duration, n int) {
	c.ops.WithLabelValues(op).Inc()
	c.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	c.bytes.WithLabelValues("in").Add(float64(n))
}

func (c *Collector) ObserveRead(elapsed time.Duration, n int, found bool) {
	c.ops.WithLabelValues("get").Inc()
	c.latency.WithLabelValues("get").Observe(elapsed.Seconds())
	if found {
		c.reads.WithLabelValues("found").Inc()
		c.bytes.WithLabelValues("out").Add(float64(n))
		return
	}
	c.reads.WithLabelValues("absent").Inc()
}

func (c *Collector) ObserveFailure(op string) {
	c.failures.WithLabelValues(op).Inc()
}

func (c *Collector) ObserveMerge(operands int, merged bool) {
	c.mergeSize.Observe(float64(operands))
	if merged {
		c.merges.WithLabelValues("ok").Inc()
		return
	}
	c.merges.WithLabelValues("failed").Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.ops.Describe(ch)
	c.failures.Describe(ch)
	c.latency.Describe(ch)
	c.bytes.Describe(ch)
	c.reads.Describe(ch)
	c.merges.Describe(ch)
	c.mergeSize.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.ops.Collect(ch)
	c.failures.Collect(ch)
	c.latency.Collect(ch)
	c.bytes.Collect(ch)
	c.reads.Collect(ch)
	c.merges.Collect(ch)
	c.mergeSize.Collect(ch)
}
