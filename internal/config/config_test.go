// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes data to a config.toml in a fresh temporary directory.
func writeConfig(t *testing.T, data string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), perm))
	return path
}

// noSearch disables the config search for the duration of the test.
func noSearch(t *testing.T) {
	saved := configSearchPaths
	configSearchPaths = []string{filepath.Join(t.TempDir(), "missing.toml")}
	t.Cleanup(func() { configSearchPaths = saved })
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
[api]
base_uri = "https://api.example.com/v1"
token = "secret"
client_id = "pluto"
client_version = "1.0.0"

[request]
timeout = "1500ms"
success_statuses = [404, 409]

[request.headers]
X-Trace = "on"

[rate_limit]
enabled = true
requests_per_second = 2.5
burst = 4

[log]
level = "debug"
format = "json"
`, 0o600)

	cfg, err := Load(&CLI{Config: path})

	require.NoError(t, err)
	assert.Equal(t, APIConfig{
		BaseURI:       "https://api.example.com/v1",
		Token:         "secret",
		ClientID:      "pluto",
		ClientVersion: "1.0.0",
	}, cfg.API)
	assert.Equal(t, 1500*time.Millisecond, cfg.Request.TimeoutDuration())
	assert.Equal(t, []int{404, 409}, cfg.Request.SuccessStatuses)
	assert.Equal(t, map[string]string{"X-Trace": "on"}, cfg.Request.Headers)
	assert.Equal(t, RateLimitConfig{Enabled: true, RequestsPerSecond: 2.5, Burst: 4}, cfg.RateLimit)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, path, cfg.FilePath())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "[api]\nbase_uri = \"http://localhost:8080\"\n", 0o600)

	cfg, err := Load(&CLI{Config: path})

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Request.TimeoutDuration())
	assert.Equal(t, 1, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_NoFile(t *testing.T) {
	noSearch(t)

	cfg, err := Load(&CLI{BaseURI: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, "", cfg.FilePath())
	assert.Equal(t, "https://example.com", cfg.API.BaseURI)
}

func TestLoad_SearchPaths(t *testing.T) {
	path := writeConfig(t, "[api]\ntoken = \"found\"\n", 0o600)
	saved := configSearchPaths
	configSearchPaths = []string{filepath.Join(t.TempDir(), "missing.toml"), path}
	t.Cleanup(func() { configSearchPaths = saved })

	cfg, err := Load(&CLI{})

	require.NoError(t, err)
	assert.Equal(t, "found", cfg.API.Token)
	assert.Equal(t, path, cfg.FilePath())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(&CLI{Config: filepath.Join(t.TempDir(), "nope.toml")})
	assert.ErrorContains(t, err, "config: read")
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "[api\nbase_uri = ", 0o600)
	_, err := Load(&CLI{Config: path})
	assert.ErrorContains(t, err, "config: parse")
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, `
[api]
base_uri = "https://api.example.com"
token = "file-token"

[request]
timeout = "10s"
success_statuses = [404]

[log]
level = "info"
`, 0o600)

	cfg, err := Load(&CLI{
		Config:   path,
		BaseURI:  "http://localhost:9000",
		Token:    "cli-token",
		Timeout:  3 * time.Second,
		Status:   []int{409},
		LogLevel: "error",
	})

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", cfg.API.BaseURI)
	assert.Equal(t, "cli-token", cfg.API.Token)
	assert.Equal(t, 3*time.Second, cfg.Request.TimeoutDuration())
	assert.Equal(t, []int{404, 409}, cfg.Request.SuccessStatuses)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		expected string
	}{
		{"base uri scheme", "[api]\nbase_uri = \"ftp://example.com\"\n", "api.base_uri must use http or https"},
		{"base uri parse", "[api]\nbase_uri = \"http://[::1\"\n", "api.base_uri is not a valid URL"},
		{"timeout syntax", "[request]\ntimeout = \"soon\"\n", "request.timeout is not a valid duration"},
		{"timeout negative", "[request]\ntimeout = \"-1s\"\n", "request.timeout must be non-negative"},
		{"status range", "[request]\nsuccess_statuses = [42]\n", "request.success_statuses"},
		{"header name", "[request.headers]\n\"Bad Name\" = \"x\"\n", "not a legal HTTP header name"},
		{"header value", "[request.headers]\nX-Foo = \"a\\nb\"\n", "invalid value for HTTP header"},
		{"rate", "[rate_limit]\nenabled = true\n", "rate_limit.requests_per_second"},
		{"burst", "[rate_limit]\nburst = -1\n", "rate_limit.burst"},
		{"log level", "[log]\nlevel = \"verbose\"\n", "log.level"},
		{"log format", "[log]\nformat = \"xml\"\n", "log.format"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			path := writeConfig(t, testCase.data, 0o600)
			_, err := Load(&CLI{Config: path})
			require.Error(t, err)
			assert.ErrorContains(t, err, "config: validate")
			assert.ErrorContains(t, err, testCase.expected)
		})
	}
}

func TestWarnPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on Windows")
	}
	testCases := []struct {
		name  string
		perm  os.FileMode
		token string
		warn  bool
	}{
		{"loose with token", 0o644, "secret", true},
		{"strict with token", 0o600, "secret", false},
		{"loose without token", 0o644, "", false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			path := writeConfig(t, "# test", testCase.perm)
			require.NoError(t, os.Chmod(path, testCase.perm))
			cfg := &Config{filePath: path, API: APIConfig{Token: testCase.token}}
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

			cfg.WarnPermissions(logger)

			if testCase.warn {
				assert.Contains(t, buf.String(), "readable by group/others")
			} else {
				assert.Zero(t, buf.Len())
			}
		})
	}
}

func TestFindConfigInPaths(t *testing.T) {
	path := writeConfig(t, "", 0o600)
	missing := filepath.Join(t.TempDir(), "missing.toml")
	assert.Equal(t, path, findConfigInPaths([]string{missing, path}))
	assert.Equal(t, "", findConfigInPaths([]string{missing}))
	assert.Equal(t, "", findConfigInPaths(nil))
}
