// Package api is the REST client for agent and task snapshots and mutations.
// Non-2xx responses surface as *Error; nothing is retried.
package api
