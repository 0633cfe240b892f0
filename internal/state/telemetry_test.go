// ABOUTME: Tests for per-task telemetry aggregation
// ABOUTME: Checks totals against recomputation after every insertion

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurek775/saladin/internal/model"
)

func TestTelemetryBook_AggregateMatchesRecompute(t *testing.T) {
	b := newTelemetryBook()
	usages := []model.TokenUsage{
		{Model: "gpt-4o", InputTokens: 100, OutputTokens: 50, TotalTokens: 150, EstimatedCostUSD: 0.002},
		{Model: "gpt-4o", InputTokens: 7, OutputTokens: 3, TotalTokens: 10, EstimatedCostUSD: 0.1},
		{Model: "gpt-4o-mini", InputTokens: 0, OutputTokens: 0, TotalTokens: 0, EstimatedCostUSD: 0},
		{Model: "claude", InputTokens: 1234, OutputTokens: 4321, TotalTokens: 5555, EstimatedCostUSD: 0.3333},
	}

	for i, u := range usages {
		b.Add("t1", u)

		got := b.Get("t1")
		want := Recompute(got.Entries)
		require.Len(t, got.Entries, i+1)
		assert.Equal(t, want.TotalInputTokens, got.TotalInputTokens)
		assert.Equal(t, want.TotalOutputTokens, got.TotalOutputTokens)
		assert.Equal(t, want.TotalTokens, got.TotalTokens)
		assert.Equal(t, want.TotalCostUSD, got.TotalCostUSD)
	}
}

func TestTelemetryBook_PerTaskIsolation(t *testing.T) {
	b := newTelemetryBook()
	b.Add("t1", model.TokenUsage{InputTokens: 10, TotalTokens: 10, EstimatedCostUSD: 1})
	b.Add("t2", model.TokenUsage{OutputTokens: 5, TotalTokens: 5, EstimatedCostUSD: 2})

	assert.Equal(t, int64(10), b.Get("t1").TotalTokens)
	assert.Equal(t, int64(5), b.Get("t2").TotalTokens)
	assert.Equal(t, []string{"t1", "t2"}, b.TaskIDs())

	totals := b.Totals()
	assert.Equal(t, int64(15), totals.TotalTokens)
	assert.InDelta(t, 3.0, b.TotalCost(), 1e-9)
}

func TestTelemetryBook_UnknownTaskIsZero(t *testing.T) {
	b := newTelemetryBook()
	got := b.Get("missing")
	assert.Zero(t, got.TotalTokens)
	assert.Empty(t, got.Entries)
}

func TestTelemetryBook_GetReturnsCopy(t *testing.T) {
	b := newTelemetryBook()
	b.Add("t1", model.TokenUsage{Model: "m"})
	got := b.Get("t1")
	got.Entries[0].Model = "mutated"
	assert.Equal(t, "m", b.Get("t1").Entries[0].Model)
}
