// ABOUTME: Configuration loading and parsing for the saladin sync client
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Defaults applied before a file is decoded.
const (
	DefaultBaseURL          = "http://localhost:8000"
	DefaultWSPath           = "/ws"
	DefaultAPIPrefix        = "/api"
	DefaultHeartbeatTimeout = 90 * time.Second
	DefaultBackoffBase      = time.Second
	DefaultBackoffMax       = 30 * time.Second
	DefaultLogCapacity      = 200
	DefaultDedupeWindow     = 2 * time.Second
	DefaultRefreshInterval  = time.Duration(0)
)

// Config represents the complete client configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Sync        SyncConfig        `yaml:"sync" toml:"sync"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
	Journal     JournalConfig     `yaml:"journal" toml:"journal"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
}

// ServerConfig locates the backend
type ServerConfig struct {
	BaseURL   string `yaml:"base_url" toml:"base_url"`
	WSPath    string `yaml:"ws_path" toml:"ws_path"`
	APIPrefix string `yaml:"api_prefix" toml:"api_prefix"`
}

// SyncConfig tunes the stream connection and reconciliation
type SyncConfig struct {
	HeartbeatTimeout time.Duration `yaml:"-" toml:"-"`
	BackoffBase      time.Duration `yaml:"-" toml:"-"`
	BackoffMax       time.Duration `yaml:"-" toml:"-"`
	DedupeWindow     time.Duration `yaml:"-" toml:"-"`
	RefreshInterval  time.Duration `yaml:"-" toml:"-"`

	LogCapacity         int  `yaml:"log_capacity" toml:"log_capacity"`
	GuardTerminalStatus bool `yaml:"guard_terminal_status" toml:"guard_terminal_status"`

	// Raw string values for unmarshaling
	HeartbeatTimeoutRaw string `yaml:"heartbeat_timeout" toml:"heartbeat_timeout"`
	BackoffBaseRaw      string `yaml:"backoff_base" toml:"backoff_base"`
	BackoffMaxRaw       string `yaml:"backoff_max" toml:"backoff_max"`
	DedupeWindowRaw     string `yaml:"dedupe_window" toml:"dedupe_window"`
	RefreshIntervalRaw  string `yaml:"refresh_interval" toml:"refresh_interval"`
}

// CredentialsConfig holds the bearer token and provider keys sent with each request
type CredentialsConfig struct {
	Token     string            `yaml:"token" toml:"token"`
	TokenFile string            `yaml:"token_file" toml:"token_file"`
	Keys      map[string]string `yaml:"keys" toml:"keys"`
}

// JournalConfig holds the usage journal settings
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:   DefaultBaseURL,
			WSPath:    DefaultWSPath,
			APIPrefix: DefaultAPIPrefix,
		},
		Sync: SyncConfig{
			HeartbeatTimeout: DefaultHeartbeatTimeout,
			BackoffBase:      DefaultBackoffBase,
			BackoffMax:       DefaultBackoffMax,
			DedupeWindow:     DefaultDedupeWindow,
			RefreshInterval:  DefaultRefreshInterval,
			LogCapacity:      DefaultLogCapacity,
		},
		Journal: JournalConfig{
			Path: defaultJournalPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads the file named by SALADIN_CONFIG, or the default path.
// A missing default file yields Default(); a missing explicit file is an error.
func LoadDefault() (*Config, error) {
	if p := os.Getenv("SALADIN_CONFIG"); p != "" {
		return Load(p)
	}
	p := DefaultPath()
	if p == "" {
		return Default(), nil
	}
	cfg, err := Load(p)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// DefaultPath returns $XDG_CONFIG_HOME/saladin/client.yaml, falling back to
// ~/.config/saladin/client.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "saladin", "client.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "saladin", "client.yaml")
}

func defaultJournalPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "saladin", "usage.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "usage.db"
	}
	return filepath.Join(home, ".local", "share", "saladin", "usage.db")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url must use http or https scheme")
	}
	if !strings.HasPrefix(c.Server.WSPath, "/") {
		return fmt.Errorf("server.ws_path must start with /")
	}

	if c.Sync.BackoffBase <= 0 {
		return fmt.Errorf("sync.backoff_base must be positive")
	}
	if c.Sync.BackoffMax < c.Sync.BackoffBase {
		return fmt.Errorf("sync.backoff_max must not be less than sync.backoff_base")
	}
	if c.Sync.HeartbeatTimeout < 0 {
		return fmt.Errorf("sync.heartbeat_timeout must not be negative")
	}
	if c.Sync.LogCapacity <= 0 {
		return fmt.Errorf("sync.log_capacity must be positive")
	}
	if c.Sync.DedupeWindow < 0 {
		return fmt.Errorf("sync.dedupe_window must not be negative")
	}
	if c.Sync.RefreshInterval < 0 {
		return fmt.Errorf("sync.refresh_interval must not be negative")
	}

	if c.Credentials.Token != "" && c.Credentials.TokenFile != "" {
		return fmt.Errorf("credentials.token and credentials.token_file are mutually exclusive")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"heartbeat_timeout", cfg.Sync.HeartbeatTimeoutRaw, &cfg.Sync.HeartbeatTimeout},
		{"backoff_base", cfg.Sync.BackoffBaseRaw, &cfg.Sync.BackoffBase},
		{"backoff_max", cfg.Sync.BackoffMaxRaw, &cfg.Sync.BackoffMax},
		{"dedupe_window", cfg.Sync.DedupeWindowRaw, &cfg.Sync.DedupeWindow},
		{"refresh_interval", cfg.Sync.RefreshIntervalRaw, &cfg.Sync.RefreshInterval},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
