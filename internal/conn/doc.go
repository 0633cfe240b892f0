// Package conn keeps at most one live stream connection to the backend.
//
// A Manager dials, answers pings, forwards every other frame, and after an
// unintentional close waits min(base*2^attempt, max) before dialing again.
// Each Start begins a new lifecycle with a fresh instance token; a lifecycle
// whose token is no longer current never dials again.
package conn
