// Package state holds the normalized in-memory view of agents, tasks, logs
// and telemetry.
//
// # Overview
//
// Store aggregates four tables, each owning a disjoint part of the model:
//
//   - AgentTable: agents keyed by id
//   - TaskTable: tasks keyed by id
//   - LogRing: bounded FIFO of log entries (capacity 200 by default)
//   - TelemetryBook: per-task token usage with running totals
//
// plus the connection flag, which only the connection manager sets.
//
// # Mutation
//
// Tables are mutated only inside Store.Update, which holds the write lock for
// the duration of one transition. The reconcile package is the only caller;
// everything else reads through the Store accessors, which return copies.
//
// # Notifications
//
// Subscribe returns a channel of Change values published after each
// committed transition. Delivery is best effort: a subscriber whose buffer is
// full misses changes rather than blocking the writer.
//
// # Lifecycle
//
// A Store is constructed per session with New and cleared with Reset. There
// is no package-level instance.
package state
