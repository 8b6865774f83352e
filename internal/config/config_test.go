package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		URLFile:     "urls.txt",
		BaseDir:     ".",
		MaxThreads:  5,
		Retries:     3,
		HTTPTimeout: 10 * time.Minute,
		BackoffBase: 500 * time.Millisecond,
		BackoffMax:  15 * time.Second,
		TokenVar:    "CIVITAI_API_TOKEN",
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url file", func(c *Config) { c.URLFile = "" }},
		{"empty base dir", func(c *Config) { c.BaseDir = "" }},
		{"zero threads", func(c *Config) { c.MaxThreads = 0 }},
		{"negative retries", func(c *Config) { c.Retries = -1 }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"zero backoff", func(c *Config) { c.BackoffBase = 0 }},
		{"cap below base", func(c *Config) { c.BackoffMax = 100 * time.Millisecond }},
		{"empty token var", func(c *Config) { c.TokenVar = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxThreads)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, ".", cfg.BaseDir)
	assert.Equal(t, "CIVITAI_API_TOKEN", cfg.TokenVar)
	assert.Equal(t, 500*time.Millisecond, cfg.BackoffBase)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CG_MAX_THREADS", "12")
	t.Setenv("CG_RETRIES", "1")
	t.Setenv("CG_BASE_DIR", "/srv/models")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxThreads)
	assert.Equal(t, 1, cfg.Retries)
	assert.Equal(t, "/srv/models", cfg.BaseDir)
}
