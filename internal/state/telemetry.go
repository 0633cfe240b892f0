// ABOUTME: Per-task token usage book with running totals and raw entries
// ABOUTME: Totals are maintained incrementally and always equal a recomputation

package state

import (
	"sort"

	"github.com/kurek775/saladin/internal/model"
)

// TelemetryBook holds token usage per task.
type TelemetryBook struct {
	byTask map[string]*model.TaskTelemetry
}

func newTelemetryBook() *TelemetryBook {
	return &TelemetryBook{byTask: make(map[string]*model.TaskTelemetry)}
}

// Add appends an entry to a task and folds it into the totals.
func (b *TelemetryBook) Add(taskID string, u model.TokenUsage) {
	tt, ok := b.byTask[taskID]
	if !ok {
		tt = &model.TaskTelemetry{}
		b.byTask[taskID] = tt
	}
	tt.TotalInputTokens += u.InputTokens
	tt.TotalOutputTokens += u.OutputTokens
	tt.TotalTokens += u.TotalTokens
	tt.TotalCostUSD += u.EstimatedCostUSD
	tt.Entries = append(tt.Entries, u)
}

// Get returns a copy of a task's telemetry. Unknown tasks yield the zero aggregate.
func (b *TelemetryBook) Get(taskID string) model.TaskTelemetry {
	tt, ok := b.byTask[taskID]
	if !ok {
		return model.TaskTelemetry{}
	}
	return tt.Clone()
}

// TaskIDs returns the ids of tasks with telemetry, sorted.
func (b *TelemetryBook) TaskIDs() []string {
	ids := make([]string, 0, len(b.byTask))
	for id := range b.byTask {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Totals sums the aggregates of every task. Entries are not included.
func (b *TelemetryBook) Totals() model.TaskTelemetry {
	var sum model.TaskTelemetry
	for _, id := range b.TaskIDs() {
		tt := b.byTask[id]
		sum.TotalInputTokens += tt.TotalInputTokens
		sum.TotalOutputTokens += tt.TotalOutputTokens
		sum.TotalTokens += tt.TotalTokens
		sum.TotalCostUSD += tt.TotalCostUSD
	}
	return sum
}

// TotalCost returns the estimated cost across all tasks.
func (b *TelemetryBook) TotalCost() float64 {
	return b.Totals().TotalCostUSD
}

// Clear drops all telemetry.
func (b *TelemetryBook) Clear() {
	b.byTask = make(map[string]*model.TaskTelemetry)
}

// Recompute derives a task's totals from its entries alone.
func Recompute(entries []model.TokenUsage) model.TaskTelemetry {
	var tt model.TaskTelemetry
	for _, u := range entries {
		tt.TotalInputTokens += u.InputTokens
		tt.TotalOutputTokens += u.OutputTokens
		tt.TotalTokens += u.TotalTokens
		tt.TotalCostUSD += u.EstimatedCostUSD
	}
	tt.Entries = append([]model.TokenUsage(nil), entries...)
	return tt
}
