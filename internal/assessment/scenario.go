package assessment

import (
	"fmt"

	"github.com/phuslu/log"

	"github.com/resolverqa/assessment/internal/config"
	"github.com/resolverqa/assessment/internal/demopage"
	"github.com/resolverqa/assessment/internal/logging"
	"github.com/resolverqa/assessment/internal/report"
)

// Scenario is what a check works with: the demo page in a fresh session, the
// configured credentials and the report case being recorded.
type Scenario struct {
	Page        *demopage.Page
	Credentials config.CredentialsConfig

	rec    *report.Case
	logger *log.Logger
	check  string
}

// NewScenario builds a scenario outside of a Runner, without report output.
func NewScenario(page *demopage.Page, creds config.CredentialsConfig, logger *log.Logger) *Scenario {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scenario{Page: page, Credentials: creds, logger: logger}
}

// Step runs fn as a named step of the check.
func (s *Scenario) Step(name string, fn func() error) error {
	s.logger.Debug().Str("check", s.check).Str("step", name).Msg("step")
	if s.rec == nil {
		return fn()
	}
	return s.rec.Step(name, fn)
}

// Attach records a text value on the report. Attachment failures are logged
// and never fail the check.
func (s *Scenario) Attach(name, value string) {
	s.logger.Info().Str("check", s.check).Str("name", name).Str("value", value).Msg("attachment")
	if s.rec == nil {
		return
	}
	if err := s.rec.AttachText(name, value); err != nil {
		s.logger.Warn().Err(err).Str("check", s.check).Str("attachment", name).Msg("failed to attach")
	}
}

// expect fails with a message naming both values when got differs from want.
func expect[T comparable](what string, want, got T) error {
	if want != got {
		return fmt.Errorf("%s: expected %#v, got %#v", what, want, got)
	}
	return nil
}
