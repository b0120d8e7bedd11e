package badgerstore

import (
	"fmt"
	"strings"

	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// badgerLogger adapts the facade to badger.Logger.
type badgerLogger struct {
	logger logpkg.Logger
}

func sprintf(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(sprintf(format, args...))
}
