package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nao1215/scamguard/internal/log"
	"github.com/nao1215/scamguard/internal/metrics"
)

// ErrStopped is returned by Go after Shutdown has been called.
var ErrStopped = errors.New("supervisor is shut down")

// Task is a unit of background work. It should return when ctx is done.
type Task func(ctx context.Context) error

// Supervisor runs tasks in goroutines and keeps track of them. Tasks are
// never retried.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	active  map[string]string

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

// New creates a Supervisor. Tasks receive a context derived from parent
// that is cancelled on Shutdown.
func New(parent context.Context, opts ...Option) *Supervisor {
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{
		ctx:    ctx,
		cancel: cancel,
		active: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	return s
}

// Go starts fn in a new goroutine and returns its task ID. A panic in fn
// is recovered and logged.
func (s *Supervisor) Go(name string, fn Task) (string, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return "", ErrStopped
	}
	id := uuid.NewString()
	s.active[id] = name
	s.wg.Add(1)
	s.mu.Unlock()

	s.metrics.TaskStarted()
	go s.run(id, name, fn)
	return id, nil
}

func (s *Supervisor) run(id, name string, fn Task) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
		s.metrics.TaskFinished()
	}()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panicked", "task", name, "task_id", id, "panic", fmt.Sprint(r))
		}
	}()

	if err := fn(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("task failed", "task", name, "task_id", id, "error", err)
		return
	}
	s.logger.Debug("task finished", "task", name, "task_id", id)
}

// Active returns the number of running tasks.
func (s *Supervisor) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Wait blocks until every started task has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Shutdown stops accepting tasks, cancels the running ones and waits for
// them until ctx is done.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	pending := len(s.active)
	s.mu.Unlock()

	s.cancel()
	s.logger.Debug("supervisor shutting down", "pending", pending)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d tasks: %w", s.Active(), ctx.Err())
	}
}
