package kvctl

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/kvbind/internal/config"
	"github.com/rzbill/kvbind/internal/runtime"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath    string
	dataDir       string
	engine        string
	mergeOperator string
	hex           bool
	logLevel      string
	logFormat     string
}

// NewRoot constructs the kvctl root command.
func NewRoot() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "kvctl",
		Short:         "Operate on a local embedded key-value store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (.json, .yaml or .yml)")
	pf.StringVar(&g.dataDir, "data-dir", "", "Store directory (default from config or OS data dir)")
	pf.StringVar(&g.engine, "engine", "", "Engine: pebble|badger (rocksdb with -tags rocksdb)")
	pf.StringVar(&g.mergeOperator, "merge-operator", "", "Built-in merge operator: sum|uint64add|append|max")
	pf.BoolVar(&g.hex, "hex", false, "Keys and values on the command line are hex encoded")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: text|json")

	root.AddCommand(
		newPutCommand(g),
		newGetCommand(g),
		newDeleteCommand(g),
		newMergeCommand(g),
		newDestroyCommand(g),
		newBenchCommand(g),
		newServeCommand(g),
	)
	return root
}

// config resolves file, then env, then flags.
func (g *globalFlags) config() (cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(g.configPath)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
	}
	if g.engine != "" {
		cfg.Engine = g.engine
	}
	if g.mergeOperator != "" {
		cfg.MergeOperator = g.mergeOperator
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	return cfg, nil
}

func (g *globalFlags) logger(cfg cfgpkg.Config, cmd *cobra.Command) (logpkg.Logger, error) {
	logger, err := logpkg.ApplyConfig(cfg.Log.Logger())
	if err != nil {
		return nil, err
	}
	return logger.WithComponent("kvctl").WithField("cmd", cmd.Name()), nil
}

// open builds the config and logger and opens the store.
func (g *globalFlags) open(cmd *cobra.Command) (*runtime.Runtime, logpkg.Logger, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, nil, err
	}
	logger, err := g.logger(cfg, cmd)
	if err != nil {
		return nil, nil, err
	}
	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return rt, logger, nil
}

func (g *globalFlags) decode(arg string) ([]byte, error) {
	if !g.hex {
		return []byte(arg), nil
	}
	b, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", arg, err)
	}
	return b, nil
}
