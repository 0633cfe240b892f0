// ABOUTME: Exponential reconnect delay capped at a maximum
// ABOUTME: Attempt zero waits the base delay

package conn

import "time"

// Default reconnect delays.
const (
	DefaultBackoffBase = time.Second
	DefaultBackoffMax  = 30 * time.Second
)

// Backoff returns min(base*2^attempt, ceiling).
func Backoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= ceiling || d <= 0 {
			return ceiling
		}
	}
	return min(d, ceiling)
}
