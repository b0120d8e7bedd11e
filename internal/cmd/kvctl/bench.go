package kvctl

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	httpserver "github.com/rzbill/kvbind/internal/server/http"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

type benchResult struct {
	Writes  int
	Reads   int
	Elapsed time.Duration
}

func (r benchResult) String() string {
	ops := r.Writes + r.Reads
	rate := 0.0
	if r.Elapsed > 0 {
		rate = float64(ops) / r.Elapsed.Seconds()
	}
	return fmt.Sprintf("writes=%d reads=%d elapsed=%s ops/s=%.0f", r.Writes, r.Reads, r.Elapsed.Round(time.Millisecond), rate)
}

func newBenchCommand(g *globalFlags) *cobra.Command {
	var (
		n           int
		valueSize   int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Write and read back N random keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if n <= 0 || valueSize < 0 {
				return fmt.Errorf("--n must be positive and --value-size not negative")
			}
			rt, logger, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, rt.Close()) }()

			if metricsAddr != "" {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				srv := httpserver.New(rt, logger)
				go func() {
					if err := srv.ListenAndServe(ctx, metricsAddr); err != nil {
						logger.Warn("metrics server stopped", logpkg.Err(err))
					}
				}()
			}

			db := rt.DB()
			value := bytes.Repeat([]byte{'x'}, valueSize)
			keys := make([][]byte, n)
			start := time.Now()
			for i := range keys {
				id := uuid.New()
				keys[i] = id[:]
				if err := db.Put(keys[i], value); err != nil {
					return err
				}
			}
			var res benchResult
			res.Writes = n
			for _, k := range keys {
				found, err := db.View(k, func([]byte) error { return nil })
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("key %x vanished", k)
				}
				res.Reads++
			}
			res.Elapsed = time.Since(start)
			logger.Info("bench done", logpkg.Int("writes", res.Writes), logpkg.Int("reads", res.Reads), logpkg.Duration("elapsed", res.Elapsed))
			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 10000, "Number of keys")
	cmd.Flags().IntVar(&valueSize, "value-size", 100, "Value size in bytes")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics on this address while running")
	return cmd
}
