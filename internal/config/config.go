package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RemoteConfig describes the remote activity source. An empty URL means the
// planner runs on local drafts only.
type RemoteConfig struct {
	// URL is the base endpoint of the ICS-speaking activity source.
	URL string `yaml:"url" json:"url"`
	// Token, if set, is sent as a bearer token on every request.
	Token string `yaml:"token" json:"token"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the canonical display zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday opens the planning window.
	// Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic re-fetch of the remote source.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// WeeklyBudgetHours is the plannable-hours budget free time is counted
	// against. Zero means the built-in default (17h/day over 7 days).
	WeeklyBudgetHours float64 `yaml:"weekly_budget_hours" json:"weekly_budget_hours"`

	// StartHour and EndHour bound the displayed day, inclusive of the
	// starting hour and exclusive of the ending one.
	StartHour int `yaml:"start_hour" json:"start_hour"`
	EndHour   int `yaml:"end_hour" json:"end_hour"`

	// SeedSampleWeek populates an empty first run with a few illustrative
	// activities.
	SeedSampleWeek bool `yaml:"seed_sample_week" json:"seed_sample_week"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Remote configures the activity source, if any.
	Remote RemoteConfig `yaml:"remote" json:"remote"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		Timezone:          "Local",
		WeekStart:         "monday",
		RefreshCron:       "*/15 * * * *",
		WeeklyBudgetHours: 119,
		StartHour:         6,
		EndHour:           23,
		SeedSampleWeek:    true,
		LogLevel:          "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.WeeklyBudgetHours <= 0 {
		c.WeeklyBudgetHours = 119
	}
	if c.EndHour <= c.StartHour {
		c.StartHour, c.EndHour = 6, 23
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Location resolves the configured timezone, falling back to time.Local for
// empty or unknown names.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created as needed, file perms 0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically: temp file in the target
// directory, chmod 0600, rename over the destination.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekplan-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
