package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/resolverqa/assessment/internal/assessment"
	"github.com/resolverqa/assessment/internal/browser"
	"github.com/resolverqa/assessment/internal/config"
	"github.com/resolverqa/assessment/internal/logging"
	"github.com/resolverqa/assessment/internal/metrics"
	"github.com/resolverqa/assessment/internal/report"
	"github.com/resolverqa/assessment/internal/version"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the checks against the demo page",
	Long: `Run opens a fresh browser session for every selected check, runs the
checks one after another and writes Allure results. A failing check does not
stop the remaining ones. The command exits non-zero unless every check passed.`,
	Args: cobra.NoArgs,
	RunE: runChecks,
}

var (
	onlyFlag          []string
	configFileFlag    string
	skipPreflightFlag bool
	logJSONFlag       bool
)

func init() {
	addRunFlags(runCmd)
}

// addRunFlags registers the flags shared by run and watch. The unbound ones
// are read by config.Load through the flag set.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&onlyFlag, "only", nil, "Comma separated check ids to run (default all)")
	f.String("base-url", "", "Demo page URL")
	f.Bool("headless", false, "Run the browser without a window")
	f.String("browser", "", "Browser engine: chromium, firefox or webkit")
	f.String("results-dir", "", "Directory for screenshots and report results")
	f.StringVar(&configFileFlag, "config", "", "YAML config file (default assess.yaml when present)")
	f.BoolVar(&skipPreflightFlag, "skip-preflight", false, "Do not probe the demo page before running")
	f.BoolVar(&logJSONFlag, "log-json", false, "Log JSON lines instead of console output")
}

// session is everything a run needs once flags and config are resolved.
type session struct {
	checks []assessment.Check
	cfg    *config.Config
	logger *log.Logger
	runner *assessment.Runner
	writer *report.Writer

	// metrics is set by watch when --metrics-addr is given.
	metrics *metrics.Collector
}

func prepare(cmd *cobra.Command) (*session, error) {
	checks, err := assessment.Select(onlyFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.Options{File: configFileFlag, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Writer: cmd.ErrOrStderr(),
		JSON:   logJSONFlag,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("base_url", cfg.BaseURL).
		Str("browser", cfg.Browser.Engine).
		Bool("headless", cfg.Browser.Headless).
		Int("checks", len(checks)).
		Msg("configuration loaded")

	writer, err := report.NewWriter(cfg.Artifacts.AllureDir)
	if err != nil {
		return nil, err
	}

	runner := assessment.NewRunner(cfg, writer, logger)
	runner.Version = version.Version

	return &session{checks: checks, cfg: cfg, logger: logger, runner: runner, writer: writer}, nil
}

func (s *session) preflight(ctx context.Context) error {
	if skipPreflightFlag {
		return nil
	}
	if err := browser.Reachable(ctx, s.cfg.BaseURL, s.cfg.Timeouts.Navigation); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}
	s.logger.Debug().Str("base_url", s.cfg.BaseURL).Msg("demo page reachable")
	return nil
}

// runOnce runs the selected checks and prints the summary to out.
func (s *session) runOnce(ctx context.Context, out io.Writer) error {
	if err := s.preflight(ctx); err != nil {
		return err
	}

	summary, err := s.runner.Run(ctx, s.checks)
	if s.metrics != nil {
		s.metrics.Observe(summary)
	}
	printSummary(out, summary)
	fmt.Fprintf(out, "Allure results: %s\n", s.writer.Dir())

	if err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if !summary.OK() {
		return fmt.Errorf("%d of %d checks did not pass", len(summary.Outcomes)-summary.Count(report.StatusPassed), len(summary.Outcomes))
	}
	return nil
}

func runChecks(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.runOnce(ctx, cmd.OutOrStdout())
}

func printSummary(out io.Writer, s assessment.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCHECK\tSTATUS\tDURATION\tERROR")
	for _, o := range s.Outcomes {
		msg := ""
		if o.Err != nil {
			msg = o.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", o.Check.Number, o.Check.ID, o.Status, o.Duration.Round(time.Millisecond), firstLine(msg))
	}
	_ = w.Flush()
	fmt.Fprintf(out, "%d passed, %d failed, %d broken in %s\n",
		s.Count(report.StatusPassed), s.Count(report.StatusFailed), s.Count(report.StatusBroken),
		s.Duration.Round(time.Millisecond))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
