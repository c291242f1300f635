package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the public demo page the checks run against.
const DefaultBaseURL = "http://selenium-python-resolver.s3-website.us-east-2.amazonaws.com/"

// DefaultConfigFile is looked up in the working directory when no file is given.
const DefaultConfigFile = "assess.yaml"

// Config represents the suite configuration
type Config struct {
	BaseURL     string            `mapstructure:"base_url"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Timeouts    TimeoutConfig     `mapstructure:"timeouts"`
	Artifacts   ArtifactConfig    `mapstructure:"artifacts"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type BrowserConfig struct {
	Engine       string        `mapstructure:"engine"`
	Headless     bool          `mapstructure:"headless"`
	SlowMo       time.Duration `mapstructure:"slow_mo"`
	Preinstalled bool          `mapstructure:"preinstalled"`
}

// TimeoutConfig holds the polling budgets handed to the automation library.
type TimeoutConfig struct {
	Element    time.Duration `mapstructure:"element"`
	Reveal     time.Duration `mapstructure:"reveal"`
	Navigation time.Duration `mapstructure:"navigation"`
}

type ArtifactConfig struct {
	Dir         string `mapstructure:"dir"`
	Screenshots bool   `mapstructure:"screenshots"`
	AllureDir   string `mapstructure:"allure_dir"`
}

type CredentialsConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Options controls where Load looks for configuration.
type Options struct {
	// File is an explicit YAML config file. Missing explicit files are an error.
	File string
	// EnvFile is a dotenv file; defaults to ".env". Missing env files are ignored.
	EnvFile string
	// Flags are bound last and win over every other source when changed.
	Flags *pflag.FlagSet
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"base-url":    "base_url",
	"browser":     "browser.engine",
	"headless":    "browser.headless",
	"results-dir": "artifacts.dir",
	"log-level":   "logging.level",
}

// envKeys lists the environment variables bound to each key, in lookup order.
var envKeys = map[string][]string{
	"base_url":              {"ASSESS_BASE_URL", "BASE_URL"},
	"browser.engine":        {"ASSESS_BROWSER"},
	"browser.headless":      {"ASSESS_HEADLESS", "HEADLESS"},
	"browser.slow_mo":       {"SLOW_MO"},
	"browser.preinstalled":  {"PLAYWRIGHT_PREINSTALLED"},
	"timeouts.element":      {"ASSESS_ELEMENT_TIMEOUT"},
	"timeouts.reveal":       {"ASSESS_REVEAL_TIMEOUT"},
	"timeouts.navigation":   {"ASSESS_NAVIGATION_TIMEOUT"},
	"artifacts.dir":         {"ASSESS_RESULTS_DIR"},
	"artifacts.screenshots": {"SCREENSHOTS"},
	"artifacts.allure_dir":  {"ALLURE_RESULTS_DIR"},
	"credentials.email":     {"ASSESS_EMAIL"},
	"credentials.password":  {"ASSESS_PASSWORD"},
	"logging.level":         {"LOG_LEVEL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("browser.engine", "chromium")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.slow_mo", time.Duration(0))
	v.SetDefault("browser.preinstalled", false)
	v.SetDefault("timeouts.element", 10*time.Second)
	v.SetDefault("timeouts.reveal", 30*time.Second)
	v.SetDefault("timeouts.navigation", 30*time.Second)
	v.SetDefault("artifacts.dir", "test-results")
	v.SetDefault("artifacts.screenshots", true)
	v.SetDefault("artifacts.allure_dir", "")
	v.SetDefault("credentials.email", "test@example.com")
	v.SetDefault("credentials.password", "password123")
	v.SetDefault("logging.level", "info")
}

// Load resolves the configuration from defaults, the optional YAML file,
// the dotenv file, the environment and finally the given flags.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if err := readConfigFile(v, opts.File); err != nil {
		return nil, err
	}

	for key, names := range envKeys {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if ciMode() {
		cfg.Browser.Headless = true
	}
	cfg.Browser.Engine = strings.ToLower(strings.TrimSpace(cfg.Browser.Engine))
	if cfg.Artifacts.AllureDir == "" {
		cfg.Artifacts.AllureDir = filepath.Join(cfg.Artifacts.Dir, "allure-results")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, file string) error {
	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile
	}
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}

	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}
	return nil
}

// loadDotEnv copies KEY=VALUE pairs from path into the process environment.
// Existing environment variables take precedence and are not overwritten.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, key := range ev.AllKeys() {
		name := strings.ToUpper(key)
		val := ev.GetString(key)
		if val == "" || os.Getenv(name) != "" {
			continue
		}
		if err := os.Setenv(name, val); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}
	return nil
}

// ciMode reports whether the suite runs under CI, which forces headless.
func ciMode() bool {
	v := strings.TrimSpace(os.Getenv("CI"))
	return v != "" && !strings.EqualFold(v, "false") && v != "0"
}

// URL returns the base URL joined with path.
func (c *Config) URL(path string) string {
	if path == "" {
		return c.BaseURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Environment returns the key facts recorded alongside report results.
func (c *Config) Environment() map[string]string {
	return map[string]string{
		"base_url": c.BaseURL,
		"browser":  c.Browser.Engine,
		"headless": fmt.Sprintf("%t", c.Browser.Headless),
	}
}
