// ABOUTME: Session composes the store, reconciliation engine, stream manager and REST client
// ABOUTME: Owns the lifecycle of one client session and the optional usage journal

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/kurek775/saladin/internal/api"
	"github.com/kurek775/saladin/internal/config"
	"github.com/kurek775/saladin/internal/conn"
	"github.com/kurek775/saladin/internal/credentials"
	"github.com/kurek775/saladin/internal/dedupe"
	"github.com/kurek775/saladin/internal/events"
	"github.com/kurek775/saladin/internal/journal"
	"github.com/kurek775/saladin/internal/reconcile"
	"github.com/kurek775/saladin/internal/state"
)

// Options configures a Session. Only Config is required.
type Options struct {
	Config *config.Config
	// Credentials overrides the source built from Config.Credentials.
	Credentials credentials.Source
	// Dialer overrides the WebSocket dialer, mainly for tests.
	Dialer     conn.Dialer
	HTTPClient *http.Client
	// OnState observes stream lifecycle transitions.
	OnState func(conn.State)
	Logger  *slog.Logger
}

// Session is one running sync client.
type Session struct {
	cfg     *config.Config
	store   *state.Store
	engine  *reconcile.Engine
	client  *api.Client
	manager *conn.Manager
	replays *dedupe.Cache
	journal *journal.Journal
	logger  *slog.Logger

	mu            sync.Mutex
	cancelRefresh context.CancelFunc
	refreshDone   chan struct{}
}

// New builds a session from configuration. Nothing connects until Start.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("session: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	creds := opts.Credentials
	if creds == nil {
		src, err := credentialsFromConfig(cfg.Credentials)
		if err != nil {
			return nil, err
		}
		creds = src
	}

	s := &Session{
		cfg:    cfg,
		logger: logger.With("component", "session"),
	}
	s.store = state.New(state.Options{
		LogCapacity: cfg.Sync.LogCapacity,
		Logger:      logger,
	})

	var recorder reconcile.UsageRecorder
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("opening usage journal: %w", err)
		}
		s.journal = j
		recorder = journal.NewRecorder(j, s.store.SessionID)
	}

	s.engine = reconcile.New(s.store, reconcile.Options{
		GuardTerminalStatus: cfg.Sync.GuardTerminalStatus,
		Recorder:            recorder,
		Logger:              logger,
	})
	s.client = api.New(api.Config{
		BaseURL:     cfg.Server.BaseURL,
		Prefix:      cfg.Server.APIPrefix,
		Credentials: creds,
		HTTPClient:  opts.HTTPClient,
		Logger:      logger,
	})
	s.replays = dedupe.New(dedupe.Options{Window: cfg.Sync.DedupeWindow})

	dialer := opts.Dialer
	if dialer == nil {
		wsURL, err := conn.StreamURL(cfg.Server.BaseURL, cfg.Server.WSPath)
		if err != nil {
			s.closeResources()
			return nil, err
		}
		dialer = &conn.WebSocketDialer{
			URL:        wsURL,
			Header:     creds.Headers,
			HTTPClient: opts.HTTPClient,
		}
	}
	s.manager = conn.NewManager(conn.Options{
		Dialer:           dialer,
		Handler:          s.handleFrame,
		Status:           s.store,
		BackoffBase:      cfg.Sync.BackoffBase,
		BackoffMax:       cfg.Sync.BackoffMax,
		HeartbeatTimeout: cfg.Sync.HeartbeatTimeout,
		OnState:          opts.OnState,
		Logger:           logger,
	})

	return s, nil
}

func credentialsFromConfig(cc config.CredentialsConfig) (credentials.Source, error) {
	token := cc.Token
	if token == "" && cc.TokenFile != "" {
		t, err := credentials.ReadTokenFile(cc.TokenFile)
		if err != nil {
			return nil, err
		}
		token = t
	}
	src, err := credentials.NewStatic(token, cc.Keys)
	if err != nil {
		return nil, fmt.Errorf("credentials: %w", err)
	}
	return src, nil
}

// Store is the session's normalized state.
func (s *Session) Store() *state.Store { return s.store }

// API is the session's REST client.
func (s *Session) API() *api.Client { return s.client }

// Journal returns the usage journal, or nil when it is disabled.
func (s *Session) Journal() *journal.Journal { return s.journal }

// Start opens the event stream, loads the initial snapshot and, when
// configured, begins periodic snapshot refreshes. The stream keeps running
// even if the snapshot fails; the snapshot error is returned.
func (s *Session) Start(ctx context.Context) error {
	s.manager.Start(ctx)
	s.startRefreshLoop(ctx)
	return s.Refresh(ctx)
}

// Stop closes the stream intentionally and stops periodic refreshes.
// The store keeps its contents; Start may be called again.
func (s *Session) Stop() {
	s.stopRefreshLoop()
	s.manager.Stop()
}

// Reset stops the stream, discards all session state and starts a fresh
// session id. Call Start to resume.
func (s *Session) Reset() {
	s.Stop()
	s.store.Reset()
	s.replays.Reset()
}

// Close stops the session and releases the replay filter and journal.
func (s *Session) Close() error {
	s.Stop()
	return s.closeResources()
}

func (s *Session) closeResources() error {
	s.replays.Close()
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

// handleFrame runs on the connection goroutine for every non-ping frame.
func (s *Session) handleFrame(raw []byte) {
	ev, err := events.Parse(raw)
	if err != nil {
		s.logger.Debug("dropping frame", "error", err)
		return
	}
	if replayable(ev) && s.replays.Duplicate(dedupe.Key(raw)) {
		s.logger.Debug("dropping replayed frame", "type", ev.Kind())
		return
	}
	s.engine.Apply(ev)
}

// replayable reports whether ev is an append-only event carrying its own
// timestamp. Identical copies of those inside the window are replays rather
// than new facts.
func replayable(ev events.Event) bool {
	switch e := ev.(type) {
	case events.Log:
		return !e.Timestamp.IsZero()
	case events.WorkerOutput:
		return !e.Timestamp.IsZero()
	case events.SupervisorReview:
		return !e.Timestamp.IsZero()
	case events.Telemetry:
		return !e.Usage.Timestamp.IsZero()
	}
	return false
}

func (s *Session) startRefreshLoop(ctx context.Context) {
	interval := s.cfg.Sync.RefreshInterval
	if interval <= 0 {
		return
	}
	s.stopRefreshLoop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancelRefresh = cancel
	s.refreshDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
					s.logger.Warn("periodic refresh failed", "error", err)
				}
			}
		}
	}()
}

func (s *Session) stopRefreshLoop() {
	s.mu.Lock()
	cancel, done := s.cancelRefresh, s.refreshDone
	s.cancelRefresh, s.refreshDone = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}
