package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/resolverqa/assessment/internal/metrics"
	"github.com/resolverqa/assessment/internal/schedule"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the checks repeatedly on a cron schedule",
	Long: `Watch runs the selected checks on a schedule until interrupted. Each
activation is a full run with fresh browser sessions; an activation is skipped
while the previous one is still running. Results accumulate in the same Allure
results directory so the report shows the history.`,
	Example: `  assess watch --schedule "@every 15m" --headless
  assess watch --schedule "0 */5 * * * *" --only delayed-button --metrics-addr :9108`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	scheduleFlag    string
	metricsAddrFlag string
)

func init() {
	addRunFlags(watchCmd)
	watchCmd.Flags().StringVar(&scheduleFlag, "schedule", "@every 15m", "Cron expression or @every descriptor")
	watchCmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9108")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := schedule.Validate(scheduleFlag); err != nil {
		return err
	}
	s, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddrFlag != "" {
		s.metrics = metrics.NewCollector()
		srv := &http.Server{Addr: metricsAddrFlag, Handler: metricsMux(s.metrics), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error().Err(err).Str("addr", metricsAddrFlag).Msg("metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		s.logger.Info().Str("addr", metricsAddrFlag).Msg("serving metrics")
	}

	sched := schedule.New(s.logger)
	err = sched.Add(schedule.Func{
		TaskName: "assessment",
		Spec:     scheduleFlag,
		Fn: func(ctx context.Context) error {
			return s.runOnce(ctx, cmd.OutOrStdout())
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s on %q, press Ctrl+C to stop\n", s.cfg.BaseURL, scheduleFlag)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func metricsMux(c *metrics.Collector) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
