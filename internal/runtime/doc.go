// Package runtime turns a config.Config into an open store with logging and
// Prometheus metrics attached. It exposes Open/Close, a health check, and the
// metrics gatherer used by the HTTP surface.
//
// Example:
//
//	cfg := config.Default()
//	cfg.MergeOperator = "sum"
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	_ = rt.DB().Merge([]byte("hits"), []byte("1"))
package runtime
