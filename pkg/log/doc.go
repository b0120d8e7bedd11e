// Package log is kvbind's structured logging facade.
//
// A Logger has leveled methods taking Fields, derives children with With and
// WithComponent, and is always passed explicitly. Records flow through a
// slog.Handler into a Formatter (text or JSON) and one or more Outputs, so
// anything that speaks slog can share the same pipeline.
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("kv"), log.Str("engine", "pebble"))
//	l.Info("database opened", log.Str("path", "/srv/kv"))
//
// ApplyConfig builds a logger from a declarative Config, including key
// redaction and per-message sampling. Request-scoped fields ride on a context
// via NewContext and are attached with WithContext.
//
// ToStdLogger and RedirectStdLog adapt the facade for code that writes to the
// standard library logger. The Pebble and Badger drivers wrap it in their own
// logger interfaces.
package log
