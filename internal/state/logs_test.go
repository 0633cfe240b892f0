// ABOUTME: Tests for the bounded log ring
// ABOUTME: Validates FIFO eviction, insertion order and capacity defaults

package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurek775/saladin/internal/model"
)

func entry(i int) model.LogEntry {
	return model.LogEntry{ID: fmt.Sprintf("log-%d", i), Message: fmt.Sprintf("message %d", i)}
}

func TestLogRing_DefaultCapacity(t *testing.T) {
	r := NewLogRing(0)
	assert.Equal(t, DefaultLogCapacity, r.Cap())
	assert.Equal(t, 200, r.Cap())
}

func TestLogRing_UnderCapacity(t *testing.T) {
	r := NewLogRing(5)
	for i := 0; i < 3; i++ {
		assert.False(t, r.Push(entry(i)))
	}

	got := r.Entries()
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("log-%d", i), e.ID)
	}
}

func TestLogRing_KeepsMostRecentInInsertionOrder(t *testing.T) {
	for _, k := range []int{201, 250, 400, 1000} {
		t.Run(fmt.Sprintf("K=%d", k), func(t *testing.T) {
			r := NewLogRing(DefaultLogCapacity)
			for i := 0; i < k; i++ {
				r.Push(entry(i))
			}

			got := r.Entries()
			require.Len(t, got, DefaultLogCapacity)
			for j, e := range got {
				assert.Equal(t, fmt.Sprintf("log-%d", k-DefaultLogCapacity+j), e.ID)
			}
		})
	}
}

func TestLogRing_EvictionReported(t *testing.T) {
	r := NewLogRing(2)
	assert.False(t, r.Push(entry(0)))
	assert.False(t, r.Push(entry(1)))
	assert.True(t, r.Push(entry(2)))
	assert.Equal(t, []string{"log-1", "log-2"}, ids(r.Entries()))
}

func TestLogRing_Clear(t *testing.T) {
	r := NewLogRing(3)
	for i := 0; i < 5; i++ {
		r.Push(entry(i))
	}
	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Entries())

	r.Push(entry(9))
	assert.Equal(t, []string{"log-9"}, ids(r.Entries()))
}

func TestLogRing_EntriesIsCopy(t *testing.T) {
	r := NewLogRing(3)
	r.Push(entry(0))
	got := r.Entries()
	got[0].Message = "mutated"
	assert.Equal(t, "message 0", r.Entries()[0].Message)
}

func ids(entries []model.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
