// ABOUTME: Best-effort fan-out of store change notifications to subscribers
// ABOUTME: Slow subscribers miss changes instead of blocking the writer

package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// ChangeKind names what a transition touched.
type ChangeKind string

// Change kinds.
const (
	ChangeAgent        ChangeKind = "agent"
	ChangeAgentRemoved ChangeKind = "agent_removed"
	ChangeAgents       ChangeKind = "agents"
	ChangeTask         ChangeKind = "task"
	ChangeTasks        ChangeKind = "tasks"
	ChangeLog          ChangeKind = "log"
	ChangeTelemetry    ChangeKind = "telemetry"
	ChangeConnection   ChangeKind = "connection"
	ChangeReset        ChangeKind = "reset"
)

// Change is published after a committed transition. ID names the entity when
// the change concerns a single agent, task or log entry.
type Change struct {
	Kind ChangeKind
	ID   string
}

type subscription struct {
	ch   chan Change
	done chan struct{}
}

type notifier struct {
	mu   sync.RWMutex
	subs map[string]*subscription
	log  *slog.Logger
}

func newNotifier(logger *slog.Logger) *notifier {
	return &notifier{
		subs: make(map[string]*subscription),
		log:  logger,
	}
}

// Subscribe registers for change notifications. The channel is closed when
// ctx is cancelled or Unsubscribe is called with the returned id.
func (s *Store) Subscribe(ctx context.Context) (<-chan Change, string) {
	return s.notify.subscribe(ctx)
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(subID string) {
	s.notify.unsubscribe(subID)
}

func (n *notifier) subscribe(ctx context.Context) (<-chan Change, string) {
	subID := uuid.New().String()
	sub := &subscription{
		ch:   make(chan Change, subscriberBufferSize),
		done: make(chan struct{}),
	}

	n.mu.Lock()
	n.subs[subID] = sub
	n.mu.Unlock()

	n.log.Debug("subscriber added", "sub_id", subID)

	// The watcher exits on whichever comes first.
	go func() {
		select {
		case <-ctx.Done():
			n.unsubscribe(subID)
		case <-sub.done:
		}
	}()

	return sub.ch, subID
}

func (n *notifier) publish(c Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for id, sub := range n.subs {
		select {
		case sub.ch <- c:
		default:
			n.log.Debug("dropped change for slow subscriber", "sub_id", id, "kind", c.Kind)
		}
	}
}

func (n *notifier) unsubscribe(subID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub, ok := n.subs[subID]
	if !ok {
		return
	}
	delete(n.subs, subID)
	close(sub.done)
	close(sub.ch)

	n.log.Debug("subscriber removed", "sub_id", subID)
}
