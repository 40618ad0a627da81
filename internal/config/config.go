// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config handles TOML configuration loading and validation for
// the reqx command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/net/http/httpguts"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"reqx.toml",
	"/etc/reqx/config.toml",
}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config   string        `kong:"short='c',help='Path to TOML config file.',env='REQX_CONFIG'"`
	BaseURI  string        `kong:"name='base-uri',help='Base URI prefixed to PATH (overrides config).',env='REQX_BASE_URI'"`
	Token    string        `kong:"help='Bearer token (overrides config).',env='REQX_TOKEN'"`
	Header   []string      `kong:"short='H',sep='none',help='Request header as NAME:VALUE (repeatable).'"`
	Query    []string      `kong:"short='q',sep='none',help='URL parameter as KEY=VALUE (repeatable).'"`
	Data     string        `kong:"short='d',help='Request body.'"`
	Timeout  time.Duration `kong:"short='t',help='Request timeout (overrides config).'"`
	Status   []int         `kong:"short='s',help='Extra accepted status code (repeatable).'"`
	LogLevel string        `kong:"help='Log level: debug|info|warn|error (overrides config).',env='REQX_LOG_LEVEL'"`
	Metrics  string        `kong:"name='metrics-file',help='Write Prometheus metrics to this file after the request (textfile collector format).'"`

	Method string `kong:"arg,help='HTTP method.'"`
	Path   string `kong:"arg,help='Absolute URL, or path relative to the base URI.'"`
}

// Config is the top-level configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Request   RequestConfig   `toml:"request"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`

	filePath string // resolved config file path (unexported)
}

// APIConfig describes the web API requests are sent to.
type APIConfig struct {
	BaseURI       string `toml:"base_uri"`
	Token         string `toml:"token"`
	ClientID      string `toml:"client_id"`
	ClientVersion string `toml:"client_version"`
}

// RequestConfig holds settings applied to every request.
type RequestConfig struct {
	Timeout         string            `toml:"timeout"` // Go duration string, e.g. "30s"; empty means no timeout
	SuccessStatuses []int             `toml:"success_statuses"`
	Headers         map[string]string `toml:"headers"`

	timeout time.Duration
}

// RateLimitConfig controls client-side request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or REQX_CONFIG), it
// searches reqx.toml then /etc/reqx/config.toml, and falls back to an
// empty configuration if neither exists.
func Load(cli *CLI) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.BaseURI != "" {
		c.API.BaseURI = cli.BaseURI
	}
	if cli.Token != "" {
		c.API.Token = cli.Token
	}
	if cli.Timeout != 0 {
		c.Request.Timeout = cli.Timeout.String()
	}
	if len(cli.Status) > 0 {
		c.Request.SuccessStatuses = append(c.Request.SuccessStatuses, cli.Status...)
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	if c.API.BaseURI != "" {
		u, err := url.Parse(c.API.BaseURI)
		if err != nil {
			return fmt.Errorf("api.base_uri is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("api.base_uri must use http or https; got %q", c.API.BaseURI)
		}
	}

	if c.Request.Timeout != "" {
		d, err := time.ParseDuration(c.Request.Timeout)
		if err != nil {
			return fmt.Errorf("request.timeout is not a valid duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("request.timeout must be non-negative; got %s", d)
		}
		c.Request.timeout = d
	}
	for _, code := range c.Request.SuccessStatuses {
		if code < 100 || code > 599 {
			return fmt.Errorf("request.success_statuses must be HTTP status codes (100-599); got %d", code)
		}
	}
	for name, value := range c.Request.Headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("request.headers: %q is not a legal HTTP header name", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return fmt.Errorf("request.headers: invalid value for HTTP header %q", name)
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit.burst must be non-negative; got %d", c.RateLimit.Burst)
	}

	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
func (c *Config) setDefaults() {
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// TimeoutDuration returns the parsed request timeout. Zero means no
// timeout.
func (c *RequestConfig) TimeoutDuration() time.Duration {
	return c.timeout
}

// FilePath returns the path of the loaded config file, or the empty
// string if no file was loaded.
func (c *Config) FilePath() string {
	return c.filePath
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		} else if !errors.Is(err, fs.ErrNotExist) {
			return p
		}
	}
	return ""
}

// WarnPermissions logs a warning if the config file holds a token and
// is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" || c.API.Token == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file holding a token is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
