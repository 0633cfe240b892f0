// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "client.yaml", `
server:
  base_url: "https://saladin.example.com"
  ws_path: "/stream"

sync:
  heartbeat_timeout: "45s"
  backoff_base: "500ms"
  backoff_max: "10s"
  log_capacity: 50
  dedupe_window: "1s"
  guard_terminal_status: true
  refresh_interval: "5m"

credentials:
  token: "abc"
  keys:
    openai: "sk-o"

journal:
  enabled: true
  path: "/tmp/usage.db"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://saladin.example.com" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.WSPath != "/stream" {
		t.Errorf("Server.WSPath = %q, want /stream", cfg.Server.WSPath)
	}
	if cfg.Server.APIPrefix != DefaultAPIPrefix {
		t.Errorf("Server.APIPrefix = %q, want default %q", cfg.Server.APIPrefix, DefaultAPIPrefix)
	}
	if cfg.Sync.HeartbeatTimeout != 45*time.Second {
		t.Errorf("Sync.HeartbeatTimeout = %v, want 45s", cfg.Sync.HeartbeatTimeout)
	}
	if cfg.Sync.BackoffBase != 500*time.Millisecond {
		t.Errorf("Sync.BackoffBase = %v, want 500ms", cfg.Sync.BackoffBase)
	}
	if cfg.Sync.BackoffMax != 10*time.Second {
		t.Errorf("Sync.BackoffMax = %v, want 10s", cfg.Sync.BackoffMax)
	}
	if cfg.Sync.LogCapacity != 50 {
		t.Errorf("Sync.LogCapacity = %d, want 50", cfg.Sync.LogCapacity)
	}
	if cfg.Sync.DedupeWindow != time.Second {
		t.Errorf("Sync.DedupeWindow = %v, want 1s", cfg.Sync.DedupeWindow)
	}
	if !cfg.Sync.GuardTerminalStatus {
		t.Error("Sync.GuardTerminalStatus = false, want true")
	}
	if cfg.Sync.RefreshInterval != 5*time.Minute {
		t.Errorf("Sync.RefreshInterval = %v, want 5m", cfg.Sync.RefreshInterval)
	}
	if cfg.Credentials.Token != "abc" || cfg.Credentials.Keys["openai"] != "sk-o" {
		t.Errorf("Credentials = %+v", cfg.Credentials)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/usage.db" {
		t.Errorf("Journal = %+v", cfg.Journal)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "client.toml", `
[server]
base_url = "http://backend:8000"

[sync]
heartbeat_timeout = "30s"
log_capacity = 10

[credentials.keys]
anthropic = "sk-a"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.BaseURL != "http://backend:8000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Sync.HeartbeatTimeout != 30*time.Second {
		t.Errorf("Sync.HeartbeatTimeout = %v, want 30s", cfg.Sync.HeartbeatTimeout)
	}
	if cfg.Sync.LogCapacity != 10 {
		t.Errorf("Sync.LogCapacity = %d, want 10", cfg.Sync.LogCapacity)
	}
	if cfg.Credentials.Keys["anthropic"] != "sk-a" {
		t.Errorf("Credentials.Keys = %v", cfg.Credentials.Keys)
	}
	if cfg.Sync.BackoffMax != DefaultBackoffMax {
		t.Errorf("Sync.BackoffMax = %v, want default", cfg.Sync.BackoffMax)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "client.yaml", "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.BaseURL != DefaultBaseURL {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, DefaultBaseURL)
	}
	if cfg.Sync.HeartbeatTimeout != DefaultHeartbeatTimeout {
		t.Errorf("Sync.HeartbeatTimeout = %v, want %v", cfg.Sync.HeartbeatTimeout, DefaultHeartbeatTimeout)
	}
	if cfg.Sync.LogCapacity != 200 {
		t.Errorf("Sync.LogCapacity = %d, want 200", cfg.Sync.LogCapacity)
	}
	if cfg.Sync.DedupeWindow != 2*time.Second {
		t.Errorf("Sync.DedupeWindow = %v, want 2s", cfg.Sync.DedupeWindow)
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled should default to false")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("SALADIN_TEST_TOKEN", "from-env")
	t.Setenv("SALADIN_TEST_HOST", "envhost")

	path := writeConfig(t, "client.yaml", `
server:
  base_url: "http://${SALADIN_TEST_HOST}:8000"
credentials:
  token: "${SALADIN_TEST_TOKEN}"
  keys:
    google: "${SALADIN_TEST_UNSET}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.BaseURL != "http://envhost:8000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Credentials.Token != "from-env" {
		t.Errorf("Credentials.Token = %q, want from-env", cfg.Credentials.Token)
	}
	if cfg.Credentials.Keys["google"] != "" {
		t.Errorf("unset variable should expand to empty, got %q", cfg.Credentials.Keys["google"])
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "client.yaml", `
sync:
  heartbeat_timeout: "soon"
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "heartbeat_timeout") {
		t.Errorf("error should name the field, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "client.yaml", "server: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url is required"},
		{"bad scheme", func(c *Config) { c.Server.BaseURL = "ftp://host" }, "http or https"},
		{"ws path without slash", func(c *Config) { c.Server.WSPath = "ws" }, "ws_path"},
		{"zero backoff", func(c *Config) { c.Sync.BackoffBase = 0 }, "backoff_base"},
		{"max below base", func(c *Config) { c.Sync.BackoffMax = 100 * time.Millisecond }, "backoff_max"},
		{"zero log capacity", func(c *Config) { c.Sync.LogCapacity = 0 }, "log_capacity"},
		{"negative refresh", func(c *Config) { c.Sync.RefreshInterval = -time.Second }, "refresh_interval"},
		{"token and token file", func(c *Config) {
			c.Credentials.Token = "a"
			c.Credentials.TokenFile = "/tmp/t"
		}, "mutually exclusive"},
		{"journal without path", func(c *Config) {
			c.Journal.Enabled = true
			c.Journal.Path = ""
		}, "journal.path"},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefault_EnvPath(t *testing.T) {
	path := writeConfig(t, "custom.yaml", `
server:
  base_url: "http://custom:1"
`)
	t.Setenv("SALADIN_CONFIG", path)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if cfg.Server.BaseURL != "http://custom:1" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
}

func TestLoadDefault_MissingDefaultFile(t *testing.T) {
	t.Setenv("SALADIN_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if cfg.Server.BaseURL != DefaultBaseURL {
		t.Errorf("Server.BaseURL = %q, want default", cfg.Server.BaseURL)
	}
}

func TestLoadDefault_MissingExplicitFile(t *testing.T) {
	t.Setenv("SALADIN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadDefault(); err == nil {
		t.Fatal("expected error when SALADIN_CONFIG names a missing file")
	}
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != filepath.Join("/xdg", "saladin", "client.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
