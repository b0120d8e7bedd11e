package pebblestore

import (
	"fmt"

	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// pebbleLogger adapts the facade to pebble.Logger.
type pebbleLogger struct {
	logger logpkg.Logger
}

func (l *pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatal(fmt.Sprintf(format, args...))
}
