package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings. Values come from
// CG_* environment variables; the CLI flags override the batch-shaping
// ones after loading.
type Config struct {
	URLFile string `envconfig:"URL_FILE"`
	BaseDir string `envconfig:"BASE_DIR" default:"."`

	MaxThreads  int           `envconfig:"MAX_THREADS" default:"5"`
	Retries     int           `envconfig:"RETRIES" default:"3"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10m"`
	BackoffBase time.Duration `envconfig:"BACKOFF_BASE" default:"500ms"`
	BackoffMax  time.Duration `envconfig:"BACKOFF_MAX" default:"15s"`

	StatusAddr string `envconfig:"STATUS_ADDR"`
	TokenVar   string `envconfig:"TOKEN_VAR" default:"CIVITAI_API_TOKEN"`
	Quiet      bool   `envconfig:"QUIET"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.URLFile == "" {
		return fmt.Errorf("url file is required")
	}
	if c.BaseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}
	if c.MaxThreads <= 0 {
		return fmt.Errorf("max threads must be positive: %d", c.MaxThreads)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries cannot be negative: %d", c.Retries)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive: %s", c.HTTPTimeout)
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("backoff base must be positive: %s", c.BackoffBase)
	}
	if c.BackoffMax < c.BackoffBase {
		return fmt.Errorf("backoff cap %s below base %s", c.BackoffMax, c.BackoffBase)
	}
	if c.TokenVar == "" {
		return fmt.Errorf("token variable name cannot be empty")
	}
	return nil
}
