// ABOUTME: Agent table keyed by id with full-replace and status-patch operations
// ABOUTME: Owned by the Store and mutated only inside Store.Update

package state

import (
	"sort"

	"github.com/kurek775/saladin/internal/model"
)

// AgentTable holds agents by id.
type AgentTable struct {
	byID map[string]model.Agent
}

func newAgentTable() *AgentTable {
	return &AgentTable{byID: make(map[string]model.Agent)}
}

// Replace swaps the whole collection for agents.
func (t *AgentTable) Replace(agents []model.Agent) {
	t.byID = make(map[string]model.Agent, len(agents))
	for _, a := range agents {
		t.byID[a.ID] = a
	}
}

// Upsert inserts or fully replaces one agent.
func (t *AgentTable) Upsert(a model.Agent) {
	t.byID[a.ID] = a
}

// SetStatus patches the status of a known agent. It reports false if the agent is unknown.
func (t *AgentTable) SetStatus(id string, status model.AgentStatus) bool {
	a, ok := t.byID[id]
	if !ok {
		return false
	}
	a.Status = status
	t.byID[id] = a
	return true
}

// Remove deletes an agent. It reports false if the agent is unknown.
func (t *AgentTable) Remove(id string) bool {
	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	return true
}

// Get returns an agent by id.
func (t *AgentTable) Get(id string) (model.Agent, bool) {
	a, ok := t.byID[id]
	return a, ok
}

// Name returns the display name of a known agent.
func (t *AgentTable) Name(id string) (string, bool) {
	a, ok := t.byID[id]
	if !ok {
		return "", false
	}
	return a.Name, true
}

// Len returns the number of agents.
func (t *AgentTable) Len() int {
	return len(t.byID)
}

// List returns all agents ordered by creation time, then id.
func (t *AgentTable) List() []model.Agent {
	out := make([]model.Agent, 0, len(t.byID))
	for _, a := range t.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
