package config

import (
	"fmt"
	"net/url"
	"strings"
)

var engines = map[string]bool{
	"chromium": true,
	"firefox":  true,
	"webkit":   true,
}

type validator struct {
	errors []string
}

func (v *validator) addError(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

// Validate checks the resolved configuration and reports every problem at once.
func (c *Config) Validate() error {
	v := &validator{}

	u, err := url.Parse(c.BaseURL)
	switch {
	case c.BaseURL == "":
		v.addError("base_url is not set")
	case err != nil:
		v.addError("base_url %q is not a valid URL: %v", c.BaseURL, err)
	case u.Scheme != "http" && u.Scheme != "https":
		v.addError("base_url %q must use http or https", c.BaseURL)
	case u.Host == "":
		v.addError("base_url %q has no host", c.BaseURL)
	}

	if !engines[c.Browser.Engine] {
		v.addError("browser.engine %q is not one of chromium, firefox, webkit", c.Browser.Engine)
	}
	if c.Browser.SlowMo < 0 {
		v.addError("browser.slow_mo must not be negative")
	}

	if c.Timeouts.Element <= 0 {
		v.addError("timeouts.element must be positive")
	}
	if c.Timeouts.Reveal <= 0 {
		v.addError("timeouts.reveal must be positive")
	}
	if c.Timeouts.Navigation <= 0 {
		v.addError("timeouts.navigation must be positive")
	}

	if c.Artifacts.Dir == "" {
		v.addError("artifacts.dir is not set")
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}
