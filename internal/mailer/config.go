// File path: internal/mailer/config.go
package mailer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/forgewise/intake/internal/common"
)

const (
	defaultTimeout         = 15 * time.Second
	defaultPollInterval    = 2 * time.Second
	defaultDispatchTimeout = 90 * time.Second
)

type Config struct {
	Endpoint   string `json:"endpoint"`
	APIKey     string `json:"api_key"`
	From       string `json:"from"`
	AdminEmail string `json:"admin_email"`

	Timeout       time.Duration `json:"-"`
	TimeoutString string        `json:"timeout"`

	PollInterval       time.Duration `json:"-"`
	PollIntervalString string        `json:"poll_interval"`

	DispatchTimeout       time.Duration `json:"-"`
	DispatchTimeoutString string        `json:"dispatch_timeout"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Endpoint) != "" {
		result.Endpoint = strings.TrimSpace(override.Endpoint)
	}
	if strings.TrimSpace(override.APIKey) != "" {
		result.APIKey = override.APIKey
	}
	if strings.TrimSpace(override.From) != "" {
		result.From = strings.TrimSpace(override.From)
	}
	if strings.TrimSpace(override.AdminEmail) != "" {
		result.AdminEmail = strings.TrimSpace(override.AdminEmail)
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if strings.TrimSpace(override.TimeoutString) != "" {
		result.TimeoutString = strings.TrimSpace(override.TimeoutString)
	}
	if override.PollInterval > 0 {
		result.PollInterval = override.PollInterval
	}
	if strings.TrimSpace(override.PollIntervalString) != "" {
		result.PollIntervalString = strings.TrimSpace(override.PollIntervalString)
	}
	if override.DispatchTimeout > 0 {
		result.DispatchTimeout = override.DispatchTimeout
	}
	if strings.TrimSpace(override.DispatchTimeoutString) != "" {
		result.DispatchTimeoutString = strings.TrimSpace(override.DispatchTimeoutString)
	}
	return result
}

// Validate reports the first missing required setting as a ConfigError.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return common.MissingConfig("MAILER_ENDPOINT")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return common.MissingConfig("MAILER_API_KEY")
	}
	if strings.TrimSpace(c.From) == "" {
		return common.MissingConfig("MAILER_FROM")
	}
	if strings.TrimSpace(c.AdminEmail) == "" {
		return common.MissingConfig("MAILER_ADMIN_EMAIL")
	}
	return nil
}

// LoadConfig builds the mailer configuration from an optional JSON file named
// by MAILER_CONFIG_FILE, overlaid with environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("MAILER_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(Config{
		Endpoint:              os.Getenv("MAILER_ENDPOINT"),
		APIKey:                os.Getenv("MAILER_API_KEY"),
		From:                  os.Getenv("MAILER_FROM"),
		AdminEmail:            os.Getenv("MAILER_ADMIN_EMAIL"),
		TimeoutString:         os.Getenv("MAILER_TIMEOUT"),
		PollIntervalString:    os.Getenv("MAILER_POLL_INTERVAL"),
		DispatchTimeoutString: os.Getenv("MAILER_DISPATCH_TIMEOUT"),
	})
	if err := cfg.resolveDurations(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) resolveDurations() error {
	var err error
	if c.Timeout, err = resolveDuration(c.Timeout, c.TimeoutString, "mailer timeout"); err != nil {
		return err
	}
	if c.PollInterval, err = resolveDuration(c.PollInterval, c.PollIntervalString, "mailer poll interval"); err != nil {
		return err
	}
	if c.DispatchTimeout, err = resolveDuration(c.DispatchTimeout, c.DispatchTimeoutString, "mailer dispatch timeout"); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = defaultDispatchTimeout
	}
}

func resolveDuration(current time.Duration, raw, label string) (time.Duration, error) {
	if current > 0 {
		return current, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", label, trimmed, err)
	}
	return parsed, nil
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read mailer config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse mailer config %s: %w", path, err)
	}
	return cfg, nil
}
