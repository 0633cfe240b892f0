// Package events validates inbound stream frames and narrows them into typed events.
//
// # Overview
//
// The backend pushes JSON frames of the form
//
//	{"type": "<kind>", "data": {...}}
//
// over the duplex connection. Parse checks the frame, dispatches on the type
// tag and produces exactly one of the event variants declared here, or an
// error wrapping ErrMalformed or ErrUnknownType. Parse never panics on input.
//
// # Event Kinds
//
//   - agent_update: AgentUpdate (created, updated, status_changed, deleted)
//   - task_update: TaskUpdate, a sparse patch; absent fields stay nil
//   - log: Log
//   - worker_output: WorkerOutput
//   - supervisor_review: SupervisorReview
//   - human_approval_required: HumanApprovalRequired
//   - telemetry: Telemetry, missing numbers default to zero
//   - ping: Ping, answered with a pong and never reconciled
//
// # Dispatch
//
// Event is a sealed interface. Consumers implement Handler, which has one
// method per kind, and call Event.Accept. Adding a kind adds a Handler
// method, so every consumer fails to compile until it handles the new kind.
package events
