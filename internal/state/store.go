// ABOUTME: Store aggregates the agent, task, log and telemetry tables behind one lock
// ABOUTME: Provides serialized Update transitions, copy-on-read accessors and session reset

package state

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kurek775/saladin/internal/model"
)

// Tables is the mutable view handed to Update. It must not escape the callback.
type Tables struct {
	Agents    *AgentTable
	Tasks     *TaskTable
	Logs      *LogRing
	Telemetry *TelemetryBook
}

// Options configures a Store.
type Options struct {
	// LogCapacity bounds the log ring. Zero uses DefaultLogCapacity.
	LogCapacity int
	Logger      *slog.Logger
}

// Store is the normalized view of one client session.
type Store struct {
	mu        sync.RWMutex
	tables    Tables
	connected bool
	sessionID string

	notify *notifier
	logger *slog.Logger
}

// New creates an empty store for a new session.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	s := &Store{
		tables: Tables{
			Agents:    newAgentTable(),
			Tasks:     newTaskTable(),
			Logs:      NewLogRing(opts.LogCapacity),
			Telemetry: newTelemetryBook(),
		},
		sessionID: uuid.New().String(),
		logger:    logger,
	}
	s.notify = newNotifier(logger)
	return s
}

// Update runs fn as one atomic transition and publishes the changes it reports.
func (s *Store) Update(fn func(t *Tables) []Change) {
	s.mu.Lock()
	changes := fn(&s.tables)
	s.mu.Unlock()

	for _, c := range changes {
		s.notify.publish(c)
	}
}

// SetConnected records the connection status. Only the connection manager calls this.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	changed := s.connected != connected
	s.connected = connected
	s.mu.Unlock()

	if changed {
		s.notify.publish(Change{Kind: ChangeConnection})
	}
}

// Connected reports the last recorded connection status.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// SessionID identifies the current store lifecycle. It changes on Reset.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Reset clears every table and the connection flag and starts a new session.
func (s *Store) Reset() {
	s.mu.Lock()
	capacity := s.tables.Logs.Cap()
	s.tables = Tables{
		Agents:    newAgentTable(),
		Tasks:     newTaskTable(),
		Logs:      NewLogRing(capacity),
		Telemetry: newTelemetryBook(),
	}
	s.connected = false
	s.sessionID = uuid.New().String()
	id := s.sessionID
	s.mu.Unlock()

	s.logger.Info("store reset", "session_id", id)
	s.notify.publish(Change{Kind: ChangeReset})
}

// Agents returns all agents.
func (s *Store) Agents() []model.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Agents.List()
}

// Agent returns one agent.
func (s *Store) Agent(id string) (model.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Agents.Get(id)
}

// Tasks returns copies of all tasks.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Tasks.List()
}

// Task returns a copy of one task.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Tasks.Get(id)
}

// Logs returns the retained log entries, oldest first.
func (s *Store) Logs() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Logs.Entries()
}

// Telemetry returns a copy of one task's telemetry.
func (s *Store) Telemetry(taskID string) model.TaskTelemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Telemetry.Get(taskID)
}

// TelemetryTotals returns totals across all tasks.
func (s *Store) TelemetryTotals() model.TaskTelemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Telemetry.Totals()
}

// TotalCost returns the estimated cost across all tasks.
func (s *Store) TotalCost() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Telemetry.TotalCost()
}
