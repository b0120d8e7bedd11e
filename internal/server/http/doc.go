// Package httpserver serves the operational endpoints of a kvbind process:
// a health check backed by a store read, store info, and Prometheus metrics.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Config: config.Default()})
//	s := httpserver.New(rt, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":9108")
package httpserver
