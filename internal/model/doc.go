// Package model defines the entities mirrored from the saladin backend.
//
// # Overview
//
// The types in this package are the normalized records held by the client
// store: agents, tasks with their worker outputs and supervisor reviews,
// log entries, and token usage telemetry. JSON tags follow the backend wire
// format so the same structs decode REST snapshots and stream payloads.
//
// # Status Values
//
// Agent status is one of idle, busy or error. Task status follows the
// orchestration state machine:
//
//	pending -> running -> under_review <-> revision -> approved | rejected | failed
//	under_review -> pending_human_approval -> approved | rejected | revision
//
// IsTerminal reports whether a task status ends the machine.
//
// # Timestamps
//
// Timestamp accepts the ISO-8601 strings produced by the backend, with or
// without an offset, and renders RFC 3339 with nanoseconds.
package model
