// ABOUTME: Snapshot merges for REST results: collection replaces and single-entity upserts
// ABOUTME: Never touches logs, telemetry or the connection flag

package reconcile

import (
	"github.com/kurek775/saladin/internal/model"
	"github.com/kurek775/saladin/internal/state"
)

// ApplyAgents replaces the agent collection with a snapshot.
func (e *Engine) ApplyAgents(agents []model.Agent) {
	e.store.Update(func(t *state.Tables) []state.Change {
		t.Agents.Replace(agents)
		return []state.Change{{Kind: state.ChangeAgents}}
	})
}

// ApplyAgent upserts one agent returned by the REST API.
func (e *Engine) ApplyAgent(a model.Agent) {
	e.store.Update(func(t *state.Tables) []state.Change {
		t.Agents.Upsert(a)
		return []state.Change{{Kind: state.ChangeAgent, ID: a.ID}}
	})
}

// RemoveAgent drops one agent after a successful delete.
func (e *Engine) RemoveAgent(id string) {
	e.store.Update(func(t *state.Tables) []state.Change {
		if !t.Agents.Remove(id) {
			return nil
		}
		return []state.Change{{Kind: state.ChangeAgentRemoved, ID: id}}
	})
}

// ApplyTaskSummaries replaces the task collection with a list snapshot.
// Tasks already known keep their detail fields, the higher revision and
// every child id either side has seen. Status follows the snapshot only when
// its updated_at is strictly newer.
func (e *Engine) ApplyTaskSummaries(summaries []model.TaskSummary) {
	e.store.Update(func(t *state.Tables) []state.Change {
		merged := make([]model.Task, 0, len(summaries))
		for _, s := range summaries {
			if local, ok := t.Tasks.Get(s.ID); ok {
				merged = append(merged, mergeSummary(local, s))
				continue
			}
			merged = append(merged, newTask(s))
		}
		t.Tasks.Replace(merged)
		return []state.Change{{Kind: state.ChangeTasks}}
	})
}

// ApplyTask upserts a full task record from the detail endpoint.
func (e *Engine) ApplyTask(task model.Task) {
	e.store.Update(func(t *state.Tables) []state.Change {
		local, ok := t.Tasks.Get(task.ID)
		if !ok {
			fresh := newTask(task.Summary())
			fresh.WorkerOutputs = task.WorkerOutputs
			fresh.SupervisorReviews = task.SupervisorReviews
			fresh.FinalOutput = task.FinalOutput
			t.Tasks.Put(fresh)
		} else {
			t.Tasks.Put(mergeDetail(local, task))
		}
		return []state.Change{{Kind: state.ChangeTask, ID: task.ID}}
	})
}

// ClearLogs empties the log ring.
func (e *Engine) ClearLogs() {
	e.store.Update(func(t *state.Tables) []state.Change {
		t.Logs.Clear()
		return []state.Change{{Kind: state.ChangeLog}}
	})
}
