package kv

import "time"

// MetricsHook observes database operations. Implementations must be safe for
// concurrent use.
type MetricsHook interface {
	// ObserveWrite records a successful put, delete or merge.
	ObserveWrite(op string, elapsed time.Duration, bytes int)
	// ObserveRead records a get that did not fail.
	ObserveRead(elapsed time.Duration, bytes int, found bool)
	// ObserveFailure records a failed operation.
	ObserveFailure(op string)
	// ObserveMerge records one merge operator invocation.
	ObserveMerge(operands int, merged bool)
}

// NoopMetrics is used when no metrics hook is provided.
type NoopMetrics struct{}

func (NoopMetrics) ObserveWrite(string, time.Duration, int) {}
func (NoopMetrics) ObserveRead(time.Duration, int, bool)    {}
func (NoopMetrics) ObserveFailure(string)                   {}
func (NoopMetrics) ObserveMerge(int, bool)                  {}
