// ABOUTME: Engine applies typed stream events to the store, one transition per event
// ABOUTME: Implements events.Handler so every event kind must be handled explicitly

package reconcile

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kurek775/saladin/internal/events"
	"github.com/kurek775/saladin/internal/model"
	"github.com/kurek775/saladin/internal/state"
)

// feedbackPreview bounds supervisor feedback quoted in a log line.
const feedbackPreview = 100

// AgentNamer resolves an agent id to its display name.
type AgentNamer interface {
	Name(id string) (string, bool)
}

// UsageRecorder receives every telemetry entry after it is committed.
type UsageRecorder interface {
	RecordUsage(taskID, agentID string, u model.TokenUsage) error
}

// Options configures an Engine.
type Options struct {
	// GuardTerminalStatus ignores status changes out of approved, rejected or failed.
	GuardTerminalStatus bool
	Recorder            UsageRecorder
	Logger              *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine is the only writer of the store's entity tables.
type Engine struct {
	store    *state.Store
	guard    bool
	recorder UsageRecorder
	now      func() time.Time
	logSeq   atomic.Uint64
	logger   *slog.Logger
}

var _ events.Handler = (*Engine)(nil)

// New creates an engine writing to store.
func New(store *state.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:    store,
		guard:    opts.GuardTerminalStatus,
		recorder: opts.Recorder,
		now:      now,
		logger:   logger.With("component", "reconcile"),
	}
}

// Apply dispatches one validated event.
func (e *Engine) Apply(ev events.Event) {
	ev.Accept(e)
}

// HandleAgentUpdate upserts, re-statuses or removes an agent.
func (e *Engine) HandleAgentUpdate(ev events.AgentUpdate) {
	e.store.Update(func(t *state.Tables) []state.Change {
		switch ev.Action {
		case events.AgentCreated, events.AgentUpdated:
			t.Agents.Upsert(ev.Agent)
			return []state.Change{{Kind: state.ChangeAgent, ID: ev.AgentID}}
		case events.AgentStatusChanged:
			if !t.Agents.SetStatus(ev.AgentID, ev.Agent.Status) {
				e.logger.Debug("status change for unknown agent", "agent_id", ev.AgentID)
				return nil
			}
			return []state.Change{{Kind: state.ChangeAgent, ID: ev.AgentID}}
		case events.AgentDeleted:
			if !t.Agents.Remove(ev.AgentID) {
				e.logger.Debug("delete for unknown agent", "agent_id", ev.AgentID)
				return nil
			}
			return []state.Change{{Kind: state.ChangeAgentRemoved, ID: ev.AgentID}}
		}
		return nil
	})
}

// HandleTaskUpdate patches the fields the frame carried onto a known task.
func (e *Engine) HandleTaskUpdate(ev events.TaskUpdate) {
	e.store.Update(func(t *state.Tables) []state.Change {
		ok := t.Tasks.Patch(ev.TaskID, func(task *model.Task) {
			e.patchTask(task, ev)
		})
		if !ok {
			e.logger.Debug("update for unknown task", "task_id", ev.TaskID, "action", ev.Action)
			return nil
		}
		return []state.Change{{Kind: state.ChangeTask, ID: ev.TaskID}}
	})
}

func (e *Engine) patchTask(task *model.Task, ev events.TaskUpdate) {
	if ev.Status != "" {
		e.setStatus(task, ev.Status)
	}
	if ev.Description != nil {
		task.Description = *ev.Description
	}
	if ev.AssignedAgents != nil {
		task.AssignedAgents = append([]string(nil), ev.AssignedAgents...)
	}
	if ev.CurrentRevision != nil && *ev.CurrentRevision > task.CurrentRevision {
		task.CurrentRevision = *ev.CurrentRevision
	}
	if ev.FinalOutput != nil && *ev.FinalOutput != "" {
		task.FinalOutput = *ev.FinalOutput
	}
	if ev.UpdatedAt != nil && ev.UpdatedAt.After(task.UpdatedAt.Time) {
		task.UpdatedAt = *ev.UpdatedAt
	}
	if ev.ParentTaskID != nil {
		task.ParentTaskID = *ev.ParentTaskID
	}
	if ev.Depth != nil {
		task.Depth = *ev.Depth
	}
	if ev.SpawnedByAgent != nil {
		task.SpawnedByAgent = *ev.SpawnedByAgent
	}
	task.ChildTaskIDs = appendUnique(task.ChildTaskIDs, ev.ChildTaskIDs...)
	if ev.ChildID != "" {
		task.ChildTaskIDs = appendUnique(task.ChildTaskIDs, ev.ChildID)
	}
}

func (e *Engine) setStatus(task *model.Task, status model.TaskStatus) {
	if e.guard && task.Status.IsTerminal() && status != task.Status {
		e.logger.Warn("ignoring status change out of terminal state",
			"task_id", task.ID, "from", task.Status, "to", status)
		return
	}
	task.Status = status
}

// HandleLog appends a free-form log line.
func (e *Engine) HandleLog(ev events.Log) {
	e.pushLog(model.LogEntry{
		TaskID:    ev.TaskID,
		AgentID:   ev.AgentID,
		AgentName: ev.AgentName,
		Level:     ev.Level,
		Message:   ev.Message,
		Timestamp: ev.Timestamp,
	})
}

// HandleWorkerOutput logs that a worker produced output. The task's output
// array is refreshed from the detail endpoint, not from this frame.
func (e *Engine) HandleWorkerOutput(ev events.WorkerOutput) {
	e.pushLog(model.LogEntry{
		TaskID:    ev.TaskID,
		AgentID:   ev.AgentID,
		AgentName: ev.AgentName,
		Level:     model.LevelInfo,
		Message:   fmt.Sprintf("[Worker: %s] Output received (rev %d)", ev.AgentName, ev.Revision),
		Timestamp: ev.Timestamp,
	})
}

// HandleSupervisorReview logs a supervisor verdict.
func (e *Engine) HandleSupervisorReview(ev events.SupervisorReview) {
	e.pushLog(model.LogEntry{
		TaskID:    ev.TaskID,
		Level:     model.LevelInfo,
		Message:   fmt.Sprintf("[Supervisor] Decision: %s - %s", ev.Decision, truncate(ev.Feedback, feedbackPreview)),
		Timestamp: ev.Timestamp,
	})
}

// HandleHumanApprovalRequired parks the task and records a warning.
func (e *Engine) HandleHumanApprovalRequired(ev events.HumanApprovalRequired) {
	entry := model.LogEntry{
		TaskID:    ev.TaskID,
		Level:     model.LevelWarning,
		Message:   fmt.Sprintf("[Approval] Task %s awaiting human decision (supervisor: %s)", ev.TaskID, ev.SupervisorDecision),
		Timestamp: ev.Timestamp,
	}
	e.store.Update(func(t *state.Tables) []state.Change {
		var changes []state.Change
		if t.Tasks.Patch(ev.TaskID, func(task *model.Task) {
			e.setStatus(task, model.TaskPendingHumanApproval)
		}) {
			changes = append(changes, state.Change{Kind: state.ChangeTask, ID: ev.TaskID})
		} else {
			e.logger.Debug("approval request for unknown task", "task_id", ev.TaskID)
		}
		return append(changes, e.appendLog(t, entry))
	})
}

// HandleTelemetry records one usage entry, filling in totals and cost the
// frame omitted.
func (e *Engine) HandleTelemetry(ev events.Telemetry) {
	u := ev.Usage
	if !ev.HasTotal {
		u.TotalTokens = u.InputTokens + u.OutputTokens
	}
	if !ev.HasCost {
		u.EstimatedCostUSD, _ = EstimateCost(u.Model, u.InputTokens, u.OutputTokens)
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = model.NewTimestamp(e.now())
	}

	e.store.Update(func(t *state.Tables) []state.Change {
		t.Telemetry.Add(ev.TaskID, u)
		return []state.Change{{Kind: state.ChangeTelemetry, ID: ev.TaskID}}
	})

	if e.recorder != nil {
		if err := e.recorder.RecordUsage(ev.TaskID, ev.AgentID, u); err != nil {
			e.logger.Warn("failed to record usage", "task_id", ev.TaskID, "error", err)
		}
	}
}

// HandlePing is answered by the connection manager and never reaches the store.
func (e *Engine) HandlePing(events.Ping) {}

func (e *Engine) pushLog(entry model.LogEntry) {
	e.store.Update(func(t *state.Tables) []state.Change {
		return []state.Change{e.appendLog(t, entry)}
	})
}

// appendLog fills in id, name and timestamp and pushes the entry. Callers hold the store lock.
func (e *Engine) appendLog(t *state.Tables, entry model.LogEntry) state.Change {
	now := e.now()
	entry.ID = fmt.Sprintf("%d-%d", now.UnixMilli(), e.logSeq.Add(1))
	if entry.Level == "" {
		entry.Level = model.LevelInfo
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = model.NewTimestamp(now)
	}
	if entry.AgentName == "" && entry.AgentID != "" {
		entry.AgentName = resolveName(t.Agents, entry.AgentID)
	}
	t.Logs.Push(entry)
	return state.Change{Kind: state.ChangeLog, ID: entry.ID}
}

func resolveName(n AgentNamer, id string) string {
	name, _ := n.Name(id)
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
