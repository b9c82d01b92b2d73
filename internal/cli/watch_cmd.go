package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/alexanderramin/spic/internal/watch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const watchShutdownTimeout = 30 * time.Second

func newWatchCmd(app *App) *cobra.Command {
	var interval time.Duration
	var addr string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically derive statuses, generate alerts and recompute scores",
		Long: `Runs a cycle immediately and then every --interval: statuses are derived,
rule alerts are generated and risk scores are saved for every operation.
/healthz and /metrics are served on --metrics-addr; an empty address disables them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := app.Logger
			if logger == nil {
				logger = zap.NewNop()
			}
			reg := app.Registry
			if reg == nil {
				reg = prometheus.NewRegistry()
			}

			runner, err := watch.NewRunner(app.Engine, interval, logger, reg)
			if err != nil {
				return err
			}
			if once {
				rep := runner.RunCycle(ctx)
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCycleReport(rep))
				return rep.Err
			}

			if addr != "" && app.Store == nil {
				return fmt.Errorf("--metrics-addr needs a store to health-check")
			}
			if err := runner.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching every %s (Ctrl+C to stop)\n", interval)

			var serveErr error
			if addr != "" {
				serveErr = watch.Serve(ctx, addr, watch.NewRouter(runner, app.Store, reg), logger)
			} else {
				<-ctx.Done()
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), watchShutdownTimeout)
			defer cancel()
			runner.Stop(stopCtx)
			return serveErr
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", app.Watch.Interval, "time between cycles")
	cmd.Flags().StringVar(&addr, "metrics-addr", app.Watch.MetricsAddr, "listen address for /healthz and /metrics")
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")

	return cmd
}
