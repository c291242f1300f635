//go:build playwright

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/suite"

	"github.com/resolverqa/assessment/internal/assessment"
	"github.com/resolverqa/assessment/internal/browser"
	"github.com/resolverqa/assessment/internal/config"
	"github.com/resolverqa/assessment/internal/demopage"
	"github.com/resolverqa/assessment/internal/logging"
)

// DemoPageSuite runs every catalogue check in its own browser session.
type DemoPageSuite struct {
	suite.Suite

	cfg     *config.Config
	logger  *log.Logger
	session *browser.Helper
	page    *demopage.Page
}

func TestDemoPage(t *testing.T) {
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("Skipping browser test")
	}
	suite.Run(t, new(DemoPageSuite))
}

func (s *DemoPageSuite) SetupSuite() {
	cfg, err := config.Load(config.Options{})
	s.Require().NoError(err)
	s.cfg = cfg

	s.logger, err = logging.New(logging.Options{Level: cfg.Logging.Level})
	s.Require().NoError(err)

	if err := browser.Reachable(context.Background(), cfg.BaseURL, cfg.Timeouts.Navigation); err != nil {
		s.T().Skipf("demo page unavailable: %v", err)
	}
}

func (s *DemoPageSuite) SetupTest() {
	session, err := browser.Open(s.cfg, s.logger)
	if err != nil {
		s.T().Skipf("Could not start Playwright: %v", err)
	}
	s.session = session
	s.page = demopage.New(session.ActivePage(), s.cfg.URL(""), s.cfg.Timeouts.Element, s.cfg.Timeouts.Reveal)
}

func (s *DemoPageSuite) TearDownTest() {
	if s.session == nil {
		return
	}
	if s.T().Failed() && s.cfg.Artifacts.Screenshots {
		if path, _, err := s.session.SaveScreenshot(s.T().Name()); err == nil {
			s.T().Logf("Screenshot saved: %s", path)
		}
	}
	s.NoError(s.session.TearDown())
	s.session = nil
}

func (s *DemoPageSuite) run(id string) {
	checks, err := assessment.Select([]string{id})
	s.Require().NoError(err)
	s.Require().Len(checks, 1)

	scenario := assessment.NewScenario(s.page, s.cfg.Credentials, s.logger)
	s.Require().NoError(checks[0].Run(scenario))
}

func (s *DemoPageSuite) TestLoginForm()     { s.run("login-form") }
func (s *DemoPageSuite) TestListGroup()     { s.run("list-group") }
func (s *DemoPageSuite) TestDropdown()      { s.run("dropdown") }
func (s *DemoPageSuite) TestButtonStates()  { s.run("button-states") }
func (s *DemoPageSuite) TestDelayedButton() { s.run("delayed-button") }
func (s *DemoPageSuite) TestTableCell()     { s.run("table-cell") }
