// Package session wires the sync client together.
//
// A Session owns one normalized store and the pieces that feed it: the
// reconciliation engine, the stream connection manager, the REST client,
// the replay filter and, when enabled, the usage journal.
//
// # Data Flow
//
//	REST snapshot ──► Engine.ApplyAgents / ApplyTaskSummaries ──┐
//	                                                            ├──► state.Store ──► Subscribe
//	/ws frame ──► events.Parse ──► dedupe ──► Engine.Apply ─────┘
//
// Frames are handled one at a time on the connection goroutine. REST
// mutations merge the entity the server returns, so the store never holds
// a guess about server state.
package session
