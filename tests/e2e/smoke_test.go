//go:build playwright

package e2e

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resolverqa/assessment/internal/browser"
	"github.com/resolverqa/assessment/internal/config"
)

// TestSmokeTest is a basic test to verify the browser fixture works
func TestSmokeTest(t *testing.T) {
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("Skipping browser test")
	}
	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	b, err := browser.Open(cfg, nil)
	if err != nil {
		t.Skipf("Could not start Playwright: %v", err)
	}
	defer func() { require.NoError(t, b.TearDown()) }()

	require.NoError(t, b.NavigateTo(""))

	title, err := b.Page.Title()
	require.NoError(t, err, "Failed to get page title")
	t.Logf("Page title: %s", title)

	if cfg.Artifacts.Screenshots {
		_, err := b.Screenshot()
		require.NoError(t, err)
	}
}
