package kvctl

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	httpserver "github.com/rzbill/kvbind/internal/server/http"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Open the store and serve health and metrics until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, logger, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, rt.Close()) }()
			if addr == "" {
				addr = rt.Config().MetricsAddr
			}
			if addr == "" {
				addr = ":9108"
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("serving", logpkg.Str("engine", rt.DB().Engine()), logpkg.Str("dataDir", rt.DB().Path()))
			return httpserver.New(rt, logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config metricsAddr or :9108)")
	return cmd
}
