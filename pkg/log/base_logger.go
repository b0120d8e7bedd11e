package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// log builds the record itself so the caller PC points past this package.
func (l *BaseLogger) log(level Level, msg string, attrs []slog.Attr) {
	if level < l.GetLevel() {
		return
	}
	h := l.slogLogger.Handler()
	ctx := context.Background()
	if !h.Enabled(ctx, toSlogLevel(level)) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), toSlogLevel(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = h.Handle(ctx, r)
}

// Debug logs at DebugLevel.
func (l *BaseLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, attrsFromFieldSlice(fields))
}

// Info logs at InfoLevel.
func (l *BaseLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, attrsFromFieldSlice(fields))
}

// Warn logs at WarnLevel.
func (l *BaseLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, attrsFromFieldSlice(fields))
}

// Error logs at ErrorLevel.
func (l *BaseLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, attrsFromFieldSlice(fields))
}

// Fatal logs at FatalLevel and exits the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, attrsFromFieldSlice(fields))
	l.closeOutputs()
	os.Exit(1)
}

// Debugf logs msg with key-value pairs at DebugLevel.
func (l *BaseLogger) Debugf(msg string, args ...interface{}) {
	l.log(DebugLevel, msg, argsToAttrs(args))
}

// Infof logs msg with key-value pairs at InfoLevel.
func (l *BaseLogger) Infof(msg string, args ...interface{}) {
	l.log(InfoLevel, msg, argsToAttrs(args))
}

// Warnf logs msg with key-value pairs at WarnLevel.
func (l *BaseLogger) Warnf(msg string, args ...interface{}) {
	l.log(WarnLevel, msg, argsToAttrs(args))
}

// Errorf logs msg with key-value pairs at ErrorLevel.
func (l *BaseLogger) Errorf(msg string, args ...interface{}) {
	l.log(ErrorLevel, msg, argsToAttrs(args))
}

// Fatalf logs msg with key-value pairs at FatalLevel and exits the process.
func (l *BaseLogger) Fatalf(msg string, args ...interface{}) {
	l.log(FatalLevel, msg, argsToAttrs(args))
	l.closeOutputs()
	os.Exit(1)
}

// derive returns a child logger sharing outputs and formatter.
func (l *BaseLogger) derive(attrs []slog.Attr, extra Fields) *BaseLogger {
	fields := make(Fields, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	child := &BaseLogger{
		fields:     fields,
		formatter:  l.formatter,
		outputs:    l.outputs,
		slogLogger: l.slogLogger,
	}
	child.level.Store(l.level.Load())
	if len(attrs) > 0 {
		child.slogLogger = slog.New(l.slogLogger.Handler().WithAttrs(attrs))
	}
	return child
}

// WithField returns a logger carrying one additional field.
func (l *BaseLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields returns a logger carrying additional fields.
func (l *BaseLogger) WithFields(fields Fields) Logger {
	return l.derive(attrsFromMap(fields), fields)
}

// WithError returns a logger carrying an "error" field.
func (l *BaseLogger) WithError(err error) Logger {
	return l.With(Err(err))
}

// With returns a logger carrying additional fields.
func (l *BaseLogger) With(fields ...Field) Logger {
	extra := make(Fields, len(fields))
	for _, f := range fields {
		extra[f.Key] = f.Value
	}
	return l.derive(attrsFromFieldSlice(fields), extra)
}

// WithContext returns a logger carrying the fields attached to ctx.
func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	fields := fieldsFromContext(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// WithComponent tags logs with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) { l.level.Store(int32(level)) }

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level { return Level(l.level.Load()) }

func (l *BaseLogger) closeOutputs() {
	for _, out := range l.outputs {
		_ = out.Close()
	}
}

// Printf adapts the logger to printf-style callers at InfoLevel.
func (l *BaseLogger) Printf(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Since is a convenience for attaching an elapsed duration field.
func Since(start time.Time) Field {
	return Duration("elapsed", time.Since(start))
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return NewLogger(WithLevel(FatalLevel+1), WithOutput(NullOutput{}))
}
