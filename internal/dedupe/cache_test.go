// ABOUTME: Tests for the replay cache and frame keys
// ABOUTME: Uses a manual clock so window expiry is exercised without sleeping

package dedupe

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *manualClock {
	return &manualClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, window time.Duration, size int) (*Cache, *manualClock) {
	t.Helper()
	clock := newClock()
	c := New(Options{Window: window, MaxSize: size, Now: clock.Now})
	t.Cleanup(c.Close)
	return c, clock
}

func TestCache_Defaults(t *testing.T) {
	c := New(Options{})
	defer c.Close()
	assert.Equal(t, DefaultWindow, c.Window())
	assert.Equal(t, DefaultMaxSize, c.maxSize)
}

func TestCache_DuplicateWithinWindow(t *testing.T) {
	c, clock := newTestCache(t, 2*time.Second, 100)

	assert.False(t, c.Duplicate("k"), "first sighting is new")
	assert.True(t, c.Seen("k"))

	clock.Advance(time.Second)
	assert.True(t, c.Duplicate("k"), "replay inside window")
}

func TestCache_ExpiresAfterWindow(t *testing.T) {
	c, clock := newTestCache(t, 2*time.Second, 100)

	c.Duplicate("k")
	clock.Advance(2 * time.Second)

	assert.False(t, c.Seen("k"))
	assert.False(t, c.Duplicate("k"), "expired key is new again")
	assert.True(t, c.Seen("k"))
}

func TestCache_Eviction(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 3)

	for i := 0; i < 4; i++ {
		c.Duplicate(fmt.Sprintf("k%d", i))
	}

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Seen("k0"), "oldest evicted")
	assert.True(t, c.Seen("k3"))
}

func TestCache_Expire(t *testing.T) {
	c, clock := newTestCache(t, time.Second, 100)

	c.Duplicate("old-1")
	c.Duplicate("old-2")
	clock.Advance(1500 * time.Millisecond)
	c.Duplicate("fresh")

	c.expire()

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Seen("fresh"))
}

func TestCache_Reset(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 100)
	c.Duplicate("k")
	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Duplicate("k"))
}

func TestCache_DuplicateIsAtomic(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 100)

	const goroutines = 100
	var winners atomic.Int32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if !c.Duplicate("contended") {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestCache_CloseTwice(t *testing.T) {
	c := New(Options{})
	c.Close()
	c.Close()
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, 10*time.Second, sweepInterval(2*time.Second))
	assert.Equal(t, time.Second, sweepInterval(10*time.Millisecond))
	assert.Equal(t, time.Minute, sweepInterval(time.Hour))
}

func TestKey(t *testing.T) {
	a := Key([]byte(`{"type":"log","data":{"message":"hi","timestamp":"2025-06-01T00:00:00Z"}}`))
	b := Key([]byte(`{"type":"log","data":{"message":"hi","timestamp":"2025-06-01T00:00:00Z"}}`))
	c := Key([]byte(`{"type":"log","data":{"message":"hi","timestamp":"2025-06-01T00:00:01Z"}}`))

	require.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
