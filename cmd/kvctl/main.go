package main

import (
	"fmt"
	"os"

	"github.com/rzbill/kvbind/internal/cmd/kvctl"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

func main() {
	// Respect KVBIND_LOG_LEVEL for stdlib log output from engines.
	level, err := logpkg.ParseLevel(os.Getenv("KVBIND_LOG_LEVEL"))
	if err != nil {
		level = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	if err := kvctl.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kvctl:", err)
		os.Exit(1)
	}
}
