package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
	"github.com/nao1215/scamguard/internal/model"
)

// Analyzer turns frozen messages into a result. It must not fail.
type Analyzer interface {
	Analyze(ctx context.Context, snapshot Snapshot) model.AnalysisResult
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, snapshot Snapshot) model.AnalysisResult

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, snapshot Snapshot) model.AnalysisResult {
	return f(ctx, snapshot)
}

// Manager holds every live session. Mutations of one session are
// serialized; different sessions proceed independently.
type Manager struct {
	mu      sync.Mutex
	entries map[Key]*entry

	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type entry struct {
	mu       sync.Mutex
	removed  bool
	state    State
	messages []model.Message
	speakers map[model.UserID]int
	started  time.Time
	touched  time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdleTimeout expires collecting sessions that received no message
// for d. Zero disables expiry, which is the default.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.idleTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entries: make(map[Key]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = log.Discard()
	}
	return m
}

// acquire returns the locked entry for key, creating it when missing.
// The caller must unlock the entry.
func (m *Manager) acquire(key Key) *entry {
	for {
		m.mu.Lock()
		e, ok := m.entries[key]
		if !ok {
			e = &entry{}
			m.entries[key] = e
		}
		m.mu.Unlock()

		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		m.expire(key, e)
		return e
	}
}

// lookup returns the locked entry for key or nil.
func (m *Manager) lookup(key Key) *entry {
	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return nil
	}
	m.expire(key, e)
	return e
}

// expire resets a collecting entry that has been idle too long.
// The entry must be locked.
func (m *Manager) expire(key Key, e *entry) {
	if m.idleTimeout <= 0 || e.state != StateCollecting {
		return
	}
	if m.now().Sub(e.touched) < m.idleTimeout {
		return
	}
	m.logger.Info("session expired", "session", key.String(), "discarded", len(e.messages))
	m.reset(key, e)
}

// reset clears an entry back to Idle. The entry must be locked.
func (m *Manager) reset(key Key, e *entry) {
	if e.state != StateIdle {
		m.metrics.SessionEnded(key.Scope.String())
	}
	e.state = StateIdle
	e.messages = nil
	e.speakers = nil
}

// add appends a message to a collecting entry. The entry must be locked.
func (m *Manager) add(key Key, e *entry, ev Event) {
	msg := ev.Message(key.Scope)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.now()
	}
	e.messages = append(e.messages, msg)
	if _, ok := e.speakers[msg.SenderID]; !ok {
		e.speakers[msg.SenderID] = len(e.speakers) + 1
	}
	e.touched = m.now()
}

// Start begins collecting for key. The initial message, when present,
// becomes the first element; a private session may start empty.
// Starting a session that is already collecting appends the initial
// message. Starting a session under analysis returns ErrBusy.
func (m *Manager) Start(key Key, initial *Event) (Ack, error) {
	e := m.acquire(key)
	defer e.mu.Unlock()

	switch e.state {
	case StateTerminal:
		return Ack{}, ErrBusy
	case StateIdle:
		now := m.now()
		e.state = StateCollecting
		e.messages = nil
		e.speakers = make(map[model.UserID]int)
		e.started = now
		e.touched = now
		m.metrics.SessionStarted(key.Scope.String())
		m.logger.Debug("session started", "session", key.String())
	}

	if initial != nil {
		m.add(key, e, *initial)
	}
	return newAck(len(e.messages)), nil
}

// Append stores ev in the session for key when the session is collecting
// and sender may extend it. In group chats only the owner may extend a
// session. It reports false, without changing anything, otherwise.
func (m *Manager) Append(key Key, sender model.UserID, ev Event) (Ack, bool) {
	e := m.lookup(key)
	if e == nil {
		return Ack{}, false
	}
	defer e.mu.Unlock()

	if e.state != StateCollecting {
		return Ack{}, false
	}
	if key.Scope == model.ScopeGroup && sender != key.OwnerID {
		return Ack{}, false
	}
	m.add(key, e, ev)
	return newAck(len(e.messages)), true
}

// Cancel discards the collected messages and returns how many there were.
func (m *Manager) Cancel(key Key) (int, error) {
	e := m.lookup(key)
	if e == nil {
		return 0, ErrNotCollecting
	}
	defer e.mu.Unlock()

	switch e.state {
	case StateTerminal:
		return 0, ErrBusy
	case StateIdle:
		return 0, ErrNotCollecting
	}
	n := len(e.messages)
	m.reset(key, e)
	m.logger.Debug("session cancelled", "session", key.String(), "discarded", n)
	return n, nil
}

// Complete freezes the collected messages and runs analyzer on them. The
// session is locked against changes while the analyzer runs and is Idle
// again afterwards, whatever the analyzer returned.
func (m *Manager) Complete(ctx context.Context, key Key, analyzer Analyzer) (Outcome, error) {
	e := m.lookup(key)
	if e == nil {
		return Outcome{}, ErrNotCollecting
	}
	switch e.state {
	case StateTerminal:
		e.mu.Unlock()
		return Outcome{}, ErrBusy
	case StateIdle:
		e.mu.Unlock()
		return Outcome{}, ErrNotCollecting
	}
	if len(e.messages) == 0 {
		e.mu.Unlock()
		return Outcome{}, ErrNoMessages
	}

	snapshot := NewSnapshot(key, e.messages)
	snapshot.StartedAt = e.started
	e.state = StateTerminal
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		m.reset(key, e)
		e.mu.Unlock()
	}()

	m.logger.Debug("session frozen", "session", key.String(), "messages", snapshot.Len())
	return Outcome{Snapshot: snapshot, Result: analyzer.Analyze(ctx, snapshot)}, nil
}

// State returns the current state of the session for key.
func (m *Manager) State(key Key) State {
	e := m.lookup(key)
	if e == nil {
		return StateIdle
	}
	defer e.mu.Unlock()
	return e.state
}

// Count returns the number of messages collected for key.
func (m *Manager) Count(key Key) int {
	e := m.lookup(key)
	if e == nil {
		return 0
	}
	defer e.mu.Unlock()
	return len(e.messages)
}

// Active returns the number of sessions that are not Idle.
func (m *Manager) Active() int {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	n := 0
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed && e.state != StateIdle {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Sweep expires idle collecting sessions and forgets Idle ones. It
// returns the number of entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		e.mu.Lock()
		m.expire(key, e)
		if e.state == StateIdle {
			e.removed = true
			delete(m.entries, key)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}
