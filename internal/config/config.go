// Package config loads optional YAML configuration for the scraper.
//
// Everything has a sensible default; a config file only needs the keys it
// wants to change. CLI flags override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	Headless   bool     `yaml:"headless"`
	BinaryPath string   `yaml:"binary_path"` // empty uses the system Chrome
	NavTimeout Duration `yaml:"nav_timeout"`
	UserAgent  string   `yaml:"user_agent"`
}

// Config is the full configuration surface.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	DataDir    string        `yaml:"data_dir"`
	Pace       Duration      `yaml:"pace"`        // minimum delay between page fetches
	LastEvents int           `yaml:"last_events"` // default fetch depth
	Browser    BrowserConfig `yaml:"browser"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		BaseURL:    "https://www.parkrun.org.uk",
		DataDir:    "~/.local/share/park-report",
		Pace:       Duration(time.Second),
		LastEvents: 12,
		Browser: BrowserConfig{
			Headless:   true,
			NavTimeout: Duration(30 * time.Second),
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if c.BaseURL == "" {
		return Config{}, fmt.Errorf("config: base_url must not be empty")
	}
	if c.Pace < 0 {
		return Config{}, fmt.Errorf("config: pace must not be negative")
	}
	return c, nil
}
