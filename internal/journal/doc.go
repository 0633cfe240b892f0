// Package journal persists applied telemetry entries to SQLite so token
// usage and cost can be reported across sessions.
package journal
