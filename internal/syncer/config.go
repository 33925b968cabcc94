package syncer

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can say "15s" rather
// than a bare nanosecond count.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config controls one sync run. Loaded from a YAML file, with
// individual fields overridable by CLI flags.
type Config struct {
	// Timezone is the IANA name of the zone whose "today" anchors
	// the date window.
	Timezone string `yaml:"timezone"`

	// From and To are the inclusive day offsets of the window,
	// relative to the anchor date.
	From int `yaml:"from"`
	To   int `yaml:"to"`

	// BaseURL is the remote source root; documents are fetched from
	// {BaseURL}/{date}.json.
	BaseURL string `yaml:"base_url"`

	// CacheDir is where date files and manifests are written.
	CacheDir string `yaml:"cache_dir"`

	// Timeout bounds each individual fetch.
	Timeout Duration `yaml:"timeout"`
}

// DefaultConfig returns the standard window: two days back through
// thirty days ahead, anchored to US Eastern time (the zone the remote
// source publishes in).
func DefaultConfig() Config {
	return Config{
		Timezone: "America/New_York",
		From:     -2,
		To:       30,
		Timeout:  Duration(15 * time.Second),
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for a runnable sync.
func (c Config) Validate() error {
	if c.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.From > c.To {
		return fmt.Errorf("invalid offset range [%d,%d]", c.From, c.To)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", time.Duration(c.Timeout))
	}
	return nil
}
