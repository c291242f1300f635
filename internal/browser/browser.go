package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/playwright-community/playwright-go"

	"github.com/resolverqa/assessment/internal/config"
	"github.com/resolverqa/assessment/internal/logging"
)

// ciArgs are the chromium switches used for headless runs in containers.
var ciArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
}

// Helper owns one browser session: driver, browser, context and page.
type Helper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *config.Config

	logger *log.Logger
}

// New creates a helper; nothing is started until Setup.
func New(cfg *config.Config, logger *log.Logger) *Helper {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Helper{
		Config: cfg,
		logger: logger,
	}
}

// Open creates a helper and runs Setup. On failure everything started is released.
func Open(cfg *config.Config, logger *log.Logger) (*Helper, error) {
	b := New(cfg, logger)
	if err := b.Setup(); err != nil {
		if tdErr := b.TearDown(); tdErr != nil {
			return nil, errors.Join(err, tdErr)
		}
		return nil, err
	}
	return b, nil
}

// Setup starts the driver, launches the configured browser and opens a page.
func (b *Helper) Setup() error {
	engine := b.Config.Browser.Engine

	if !b.Config.Browser.Preinstalled {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{engine}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// the driver may be missing even when browsers are cached
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{engine}})
		pw, err = playwright.Run()
		if err != nil {
			return fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}
	b.Playwright = pw

	browserType, err := b.browserType()
	if err != nil {
		return err
	}

	browser, err := browserType.Launch(LaunchOptions(b.Config))
	if err != nil {
		return fmt.Errorf("could not launch %s: %w", engine, err)
	}
	b.Browser = browser

	context, err := browser.NewContext(ContextOptions(b.Config))
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = context

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page

	page.SetDefaultTimeout(Milliseconds(b.Config.Timeouts.Element))
	page.SetDefaultNavigationTimeout(Milliseconds(b.Config.Timeouts.Navigation))

	b.logger.Debug().
		Str("engine", engine).
		Bool("headless", b.Config.Browser.Headless).
		Msg("browser session started")
	return nil
}

func (b *Helper) browserType() (playwright.BrowserType, error) {
	switch b.Config.Browser.Engine {
	case "chromium":
		return b.Playwright.Chromium, nil
	case "firefox":
		return b.Playwright.Firefox, nil
	case "webkit":
		return b.Playwright.WebKit, nil
	}
	return nil, fmt.Errorf("unsupported browser engine %q", b.Config.Browser.Engine)
}

// TearDown closes page, context, browser and driver. It is safe to call after a
// partial Setup and more than once.
func (b *Helper) TearDown() error {
	var errs []error

	if b.Page != nil {
		if err := b.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		b.Page = nil
	}
	if b.Context != nil {
		if err := b.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		b.Context = nil
	}
	if b.Browser != nil {
		if err := b.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		b.Browser = nil
	}
	if b.Playwright != nil {
		if err := b.Playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		b.Playwright = nil
	}

	b.logger.Debug().Int("errors", len(errs)).Msg("browser session closed")
	return errors.Join(errs...)
}

// ActivePage returns the open page, or nil before Setup.
func (b *Helper) ActivePage() playwright.Page {
	return b.Page
}

// NavigateTo navigates to a path relative to the base URL
func (b *Helper) NavigateTo(path string) error {
	url := b.Config.URL(path)
	if _, err := b.Page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Screenshot captures the current viewport as PNG.
func (b *Helper) Screenshot() ([]byte, error) {
	if b.Page == nil {
		return nil, errors.New("no page open")
	}
	return b.Page.Screenshot()
}

// SaveScreenshot captures the page into <artifacts>/screenshots and returns the
// path together with the PNG bytes.
func (b *Helper) SaveScreenshot(name string) (string, []byte, error) {
	data, err := b.Screenshot()
	if err != nil {
		return "", nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	path := ScreenshotPath(b.Config.Artifacts.Dir, name, time.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create screenshots directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("failed to save screenshot: %w", err)
	}
	b.logger.Info().Str("path", path).Msg("screenshot saved")
	return path, data, nil
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ScreenshotPath names a screenshot after the test and the capture time.
func ScreenshotPath(dir, name string, at time.Time) string {
	clean := strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	if clean == "" {
		clean = "screenshot"
	}
	return filepath.Join(dir, "screenshots", fmt.Sprintf("%s_%d.png", clean, at.Unix()))
}

// LaunchOptions translates the browser config into Playwright launch options.
func LaunchOptions(cfg *config.Config) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Browser.Headless),
		SlowMo:   playwright.Float(Milliseconds(cfg.Browser.SlowMo)),
	}
	if cfg.Browser.Headless && cfg.Browser.Engine == "chromium" {
		opts.Args = append([]string{}, ciArgs...)
	}
	return opts
}

// ContextOptions sizes the viewport: 1920x1080 headless, 1280x720 otherwise.
func ContextOptions(cfg *config.Config) playwright.BrowserNewContextOptions {
	size := &playwright.Size{Width: 1280, Height: 720}
	if cfg.Browser.Headless {
		size = &playwright.Size{Width: 1920, Height: 1080}
	}
	return playwright.BrowserNewContextOptions{
		Viewport: size,
	}
}

// Milliseconds converts a duration to the float milliseconds Playwright expects.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
