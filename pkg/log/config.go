package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config declares a logger.
type Config struct {
	Level  string         `json:"level" yaml:"level"`
	Format string         `json:"format" yaml:"format"`
	Output []OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`

	// RedactKeys replaces the value of matching fields with "[REDACTED]".
	RedactKeys []string `json:"redact_keys,omitempty" yaml:"redact_keys,omitempty"`

	// Sampling keeps the first SampleInitial entries per level+message and
	// then every SampleThereafter-th one. Zero disables sampling.
	SampleInitial    int `json:"sample_initial,omitempty" yaml:"sample_initial,omitempty"`
	SampleThereafter int `json:"sample_thereafter,omitempty" yaml:"sample_thereafter,omitempty"`
}

// OutputConfig selects one output: "console", "file" (with Path) or "null".
type OutputConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ParseLevel parses a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "json":
		formatter = &JSONFormatter{}
	case "text", "":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}

	opts := []LoggerOption{WithLevel(level), WithFormatter(formatter)}
	for _, oc := range cfg.Output {
		switch strings.ToLower(oc.Type) {
		case "console", "":
			opts = append(opts, WithOutput(NewConsoleOutput()))
		case "file":
			if oc.Path == "" {
				return nil, fmt.Errorf("log: file output requires a path")
			}
			fo, err := NewFileOutput(oc.Path)
			if err != nil {
				return nil, fmt.Errorf("log: open %s: %w", oc.Path, err)
			}
			opts = append(opts, WithOutput(fo))
		case "null":
			opts = append(opts, WithOutput(NullOutput{}))
		default:
			return nil, fmt.Errorf("log: unknown output %q", oc.Type)
		}
	}

	logger := NewLogger(opts...).(*BaseLogger)
	h := newBridgeHandler(logger).
		withRedactions(cfg.RedactKeys).
		withSampler(cfg.SampleInitial, cfg.SampleThereafter)
	logger.slogLogger = slog.New(h)
	return logger, nil
}
