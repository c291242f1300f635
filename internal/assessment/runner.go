package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/playwright-community/playwright-go"

	"github.com/resolverqa/assessment/internal/browser"
	"github.com/resolverqa/assessment/internal/config"
	"github.com/resolverqa/assessment/internal/demopage"
	"github.com/resolverqa/assessment/internal/logging"
	"github.com/resolverqa/assessment/internal/report"
)

// Session is an open browser session owned by one check.
type Session interface {
	ActivePage() playwright.Page
	SaveScreenshot(name string) (string, []byte, error)
	TearDown() error
}

// Opener starts a fresh session.
type Opener func(cfg *config.Config, logger *log.Logger) (Session, error)

// OpenBrowser starts a Playwright session for cfg.
func OpenBrowser(cfg *config.Config, logger *log.Logger) (Session, error) {
	h, err := browser.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Outcome is the result of one check.
type Outcome struct {
	Check      Check
	Status     string
	Duration   time.Duration
	Err        error
	Screenshot string
}

// Summary collects the outcomes of a run in execution order.
type Summary struct {
	Outcomes []Outcome
	Duration time.Duration
}

// Count returns how many outcomes have status.
func (s Summary) Count(status string) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// OK reports whether every check ran and passed.
func (s Summary) OK() bool {
	return len(s.Outcomes) > 0 && s.Count(report.StatusPassed) == len(s.Outcomes)
}

// Runner executes checks one after another, each in its own browser session.
type Runner struct {
	Config  *config.Config
	Open    Opener
	Writer  *report.Writer
	Logger  *log.Logger
	Version string
}

// NewRunner returns a runner using real browser sessions. writer may be nil
// to skip report output.
func NewRunner(cfg *config.Config, writer *report.Writer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		Config: cfg,
		Open:   OpenBrowser,
		Writer: writer,
		Logger: logger,
	}
}

// Run executes checks in order. A failing check never stops the next one.
// ctx is only consulted between checks; the summary of the checks already run
// is returned together with ctx's error.
func (r *Runner) Run(ctx context.Context, checks []Check) (Summary, error) {
	start := time.Now()
	summary := Summary{Outcomes: make([]Outcome, 0, len(checks))}

	if r.Writer != nil {
		if err := r.writeRunFiles(); err != nil {
			return summary, err
		}
	}

	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		summary.Outcomes = append(summary.Outcomes, r.runOne(c))
	}

	summary.Duration = time.Since(start)
	r.Logger.Info().
		Int("passed", summary.Count(report.StatusPassed)).
		Int("failed", summary.Count(report.StatusFailed)).
		Int("broken", summary.Count(report.StatusBroken)).
		Dur("duration", summary.Duration).
		Msg("run finished")
	return summary, nil
}

func (r *Runner) writeRunFiles() error {
	if err := r.Writer.WriteEnvironment(r.Config.Environment()); err != nil {
		return err
	}
	if err := r.Writer.WriteCategories(report.DefaultCategories()); err != nil {
		return err
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}
	return r.Writer.WriteExecutor(report.Executor{Name: "assess", Type: "assess", BuildName: version})
}

func (r *Runner) runOne(c Check) Outcome {
	start := time.Now()
	logger := r.Logger
	logger.Info().Str("check", c.ID).Str("title", c.Title).Msg("check started")

	var rec *report.Case
	if r.Writer != nil {
		rec = r.Writer.Start("assessment."+c.ID, fmt.Sprintf("Test %d: %s", c.Number, c.Title),
			report.Label{Name: "suite", Value: "demo page"},
			report.Label{Name: "testCaseId", Value: c.ID},
		)
		rec.Describe(c.Description)
		rec.Classify = Classify
	}

	out := Outcome{Check: c}
	out.Err = r.execute(c, rec, &out)
	out.Status = Classify(out.Err)
	out.Duration = time.Since(start)

	if rec != nil {
		if _, err := rec.Finish(out.Status, out.Err); err != nil {
			logger.Warn().Err(err).Str("check", c.ID).Msg("failed to write report result")
		}
	}

	entry := logger.Info()
	if out.Err != nil {
		entry = logger.Error().Err(out.Err)
	}
	entry.Str("check", c.ID).Str("status", out.Status).Dur("duration", out.Duration).Msg("check finished")
	return out
}

// execute opens a session, runs the check and always closes the session.
func (r *Runner) execute(c Check, rec *report.Case, out *Outcome) error {
	session, err := r.Open(r.Config, r.Logger)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if tdErr := session.TearDown(); tdErr != nil {
			r.Logger.Warn().Err(tdErr).Str("check", c.ID).Msg("failed to close browser session")
		}
	}()

	page := demopage.New(session.ActivePage(), r.Config.URL(""), r.Config.Timeouts.Element, r.Config.Timeouts.Reveal)
	s := &Scenario{
		Page:        page,
		Credentials: r.Config.Credentials,
		rec:         rec,
		logger:      r.Logger,
		check:       c.ID,
	}

	err = runCheck(c, s)
	if err != nil && r.Config.Artifacts.Screenshots {
		r.captureFailure(c, session, rec, out)
	}
	return err
}

func runCheck(c Check, s *Scenario) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("check %s panicked: %v", c.ID, p)
		}
	}()
	if c.Run == nil {
		return fmt.Errorf("check %s has no body", c.ID)
	}
	return c.Run(s)
}

func (r *Runner) captureFailure(c Check, session Session, rec *report.Case, out *Outcome) {
	path, data, err := session.SaveScreenshot(c.ID)
	if err != nil {
		r.Logger.Warn().Err(err).Str("check", c.ID).Msg("failed to capture failure screenshot")
		return
	}
	out.Screenshot = path
	if rec == nil {
		return
	}
	if err := rec.AttachPNG("Failure screenshot", data); err != nil {
		r.Logger.Warn().Err(err).Str("check", c.ID).Msg("failed to attach failure screenshot")
	}
}

// Classify maps a check error to a report status. Waits that ran out of time
// are broken; anything else is a failure.
func Classify(err error) string {
	switch {
	case err == nil:
		return report.StatusPassed
	case errors.Is(err, playwright.ErrTimeout):
		return report.StatusBroken
	default:
		return report.StatusFailed
	}
}
