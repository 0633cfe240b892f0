// Package config handles configuration loading for the saladin sync client.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Every field has a default, so an absent file is not an error
// when the default location is used.
//
// # Configuration File
//
// Locations (in order):
//
//  1. Path from SALADIN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/saladin/client.yaml
//  3. ~/.config/saladin/client.yaml
//
// Files ending in .toml are decoded as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	credentials:
//	  keys:
//	    openai: "${OPENAI_API_KEY}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	sync:
//	  heartbeat_timeout: "90s"
//	  backoff_base: "1s"
//	  backoff_max: "30s"
//	  dedupe_window: "2s"
//	  refresh_interval: "5m"
//
// # Configuration Sections
//
// Backend location:
//
//	server:
//	  base_url: "http://localhost:8000"
//	  ws_path: "/ws"
//	  api_prefix: "/api"
//
// Stream and reconciliation tuning:
//
//	sync:
//	  log_capacity: 200
//	  guard_terminal_status: false
//
// guard_terminal_status ignores stream status changes for tasks that are
// already approved, rejected or failed. refresh_interval re-fetches the
// agent and task snapshots periodically; zero disables it.
//
// Credentials (token and token_file are mutually exclusive):
//
//	credentials:
//	  token: "${SALADIN_TOKEN}"
//	  keys:
//	    openai: "${OPENAI_API_KEY}"
//	    anthropic: "${ANTHROPIC_API_KEY}"
//	    google: "${GOOGLE_API_KEY}"
//
// Usage journal:
//
//	journal:
//	  enabled: true
//	  path: "~/.local/share/saladin/usage.db"
//
// Logging:
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text or json
package config
