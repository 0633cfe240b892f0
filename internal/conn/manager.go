// ABOUTME: Connection lifecycle state machine with heartbeat, backoff and instance tokens
// ABOUTME: Owns the connected flag; forwards every non-ping frame to a handler

package conn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kurek775/saladin/internal/events"
)

// State is a lifecycle phase.
type State int

// Lifecycle phases.
const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrHeartbeatTimeout is the close reason when no frame arrives in time.
var ErrHeartbeatTimeout = errors.New("heartbeat timeout")

// Conn is one established duplex connection.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// StatusSink records whether a connection is open.
type StatusSink interface {
	SetConnected(connected bool)
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Options configures a Manager.
type Options struct {
	Dialer Dialer
	// Handler receives every frame except pings, one at a time.
	Handler func(raw []byte)
	Status  StatusSink

	BackoffBase time.Duration
	BackoffMax  time.Duration
	// HeartbeatTimeout closes a connection that stays silent this long. Zero disables it.
	HeartbeatTimeout time.Duration

	// Wait defaults to a timer honoring ctx.
	Wait WaitFunc
	// OnState observes lifecycle transitions.
	OnState func(State)
	Logger  *slog.Logger
}

type instance struct {
	token  uint64
	cancel context.CancelFunc
	done   chan struct{}
	prev   *instance
}

// Manager runs connection lifecycles, at most one at a time.
type Manager struct {
	dialer    Dialer
	handler   func([]byte)
	status    StatusSink
	base      time.Duration
	max       time.Duration
	heartbeat time.Duration
	wait      WaitFunc
	onState   func(State)
	logger    *slog.Logger

	mu    sync.Mutex
	token uint64
	cur   *instance
	state State
}

// NewManager creates a manager. It does nothing until Start.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		dialer:    opts.Dialer,
		handler:   opts.Handler,
		status:    opts.Status,
		base:      opts.BackoffBase,
		max:       opts.BackoffMax,
		heartbeat: opts.HeartbeatTimeout,
		wait:      opts.Wait,
		onState:   opts.OnState,
		logger:    logger.With("component", "conn"),
	}
	if m.base <= 0 {
		m.base = DefaultBackoffBase
	}
	if m.max <= 0 {
		m.max = DefaultBackoffMax
	}
	if m.wait == nil {
		m.wait = sleep
	}
	if m.handler == nil {
		m.handler = func([]byte) {}
	}
	return m
}

// Start begins a new lifecycle, superseding any running one. The previous
// lifecycle is cancelled and fully torn down before the new one dials.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.token++
	runCtx, cancel := context.WithCancel(ctx)
	inst := &instance{
		token:  m.token,
		cancel: cancel,
		done:   make(chan struct{}),
		prev:   m.cur,
	}
	m.cur = inst
	m.mu.Unlock()

	if inst.prev != nil {
		inst.prev.cancel()
	}
	m.logger.Info("starting connection lifecycle", "instance", inst.token)
	go m.run(runCtx, inst)
}

// Stop ends the current lifecycle intentionally and waits for it to finish.
// A frame being handled completes before Stop returns.
func (m *Manager) Stop() {
	m.mu.Lock()
	inst := m.cur
	m.cur = nil
	m.token++
	m.mu.Unlock()

	if inst == nil {
		return
	}
	inst.cancel()
	<-inst.done
	m.logger.Info("connection lifecycle stopped", "instance", inst.token)
}

// State returns the current lifecycle phase.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) current(token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token == token
}

func (m *Manager) setState(token uint64, s State) {
	m.mu.Lock()
	// A superseded lifecycle may still report its own closure.
	if m.token != token && s != StateClosed {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()

	if m.onState != nil {
		m.onState(s)
	}
}

func (m *Manager) run(ctx context.Context, inst *instance) {
	defer close(inst.done)
	if inst.prev != nil {
		<-inst.prev.done
		inst.prev = nil
	}

	log := m.logger.With("instance", inst.token)
	attempt := 0
	for {
		if ctx.Err() != nil || !m.current(inst.token) {
			m.setState(inst.token, StateClosed)
			return
		}

		m.setState(inst.token, StateConnecting)
		c, err := m.dialer.Dial(ctx)
		if err != nil {
			log.Warn("dial failed", "error", err, "attempt", attempt)
		} else {
			attempt = 0
			m.setConnected(true)
			m.setState(inst.token, StateOpen)
			log.Info("connection open")

			reason := m.serve(ctx, c)
			if cerr := c.Close(); cerr != nil {
				log.Debug("close error", "error", cerr)
			}
			m.setConnected(false)
			log.Info("connection closed", "reason", reason)
		}

		if ctx.Err() != nil || !m.current(inst.token) {
			m.setState(inst.token, StateClosed)
			return
		}

		delay := Backoff(attempt, m.base, m.max)
		attempt++
		m.setState(inst.token, StateReconnecting)
		log.Info("reconnecting", "delay", delay, "attempt", attempt)
		if err := m.wait(ctx, delay); err != nil {
			m.setState(inst.token, StateClosed)
			return
		}
	}
}

// serve reads frames until the connection fails and returns why it stopped.
func (m *Manager) serve(ctx context.Context, c Conn) error {
	for {
		readCtx, cancel := ctx, context.CancelFunc(func() {})
		if m.heartbeat > 0 {
			readCtx, cancel = context.WithTimeout(ctx, m.heartbeat)
		}
		raw, err := c.Read(readCtx)
		timedOut := errors.Is(readCtx.Err(), context.DeadlineExceeded)
		cancel()
		if err != nil {
			if timedOut && ctx.Err() == nil {
				return ErrHeartbeatTimeout
			}
			return err
		}

		if isPing(raw) {
			if err := c.Write(ctx, events.PongFrame); err != nil {
				m.logger.Warn("failed to send pong", "error", err)
			}
			continue
		}
		m.handler(raw)
	}
}

func (m *Manager) setConnected(v bool) {
	if m.status != nil {
		m.status.SetConnected(v)
	}
}

func isPing(raw []byte) bool {
	t := gjson.GetBytes(raw, "type")
	return t.Type == gjson.String && t.Str == string(events.KindPing)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
