// Package timer implements the background supervisor that drives the
// countdown engine. The supervisor owns the single logical thread of
// control: scheduler ticks and user commands both run on its loop
// goroutine, so the engine itself needs no locking.
package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.Scheduler = (*Supervisor)(nil)

// Target receives scheduler ticks. *engine.Engine satisfies it.
type Target interface {
	Tick(elapsed time.Duration)
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets the tick period and the elapsed time each tick reports.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

type command struct {
	fn   func()
	done chan struct{}
}

// Supervisor runs the tick loop and serializes access to its target.
type Supervisor struct {
	log          *logger.Logger
	tickInterval time.Duration
	cmds         chan command

	ticker *time.Ticker
	armed  atomic.Bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a supervisor. Call Start to begin the loop.
func New(log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		log:          log,
		tickInterval: 1 * time.Second,
		cmds:         make(chan command, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ticker = time.NewTicker(s.tickInterval)
	s.ticker.Stop()
	return s
}

// TickInterval returns the configured tick period.
func (s *Supervisor) TickInterval() time.Duration { return s.tickInterval }

// Arm starts delivering ticks, one full interval from now.
func (s *Supervisor) Arm() {
	s.armed.Store(true)
	s.ticker.Reset(s.tickInterval)
	s.log.Debug("supervisor: armed (tick=%s)", s.tickInterval)
}

// Cancel stops tick delivery. A tick already in flight is dropped.
func (s *Supervisor) Cancel() {
	if s.armed.Swap(false) {
		s.log.Debug("supervisor: cancelled")
	}
	s.ticker.Stop()
}

// Armed reports whether ticks are being delivered.
func (s *Supervisor) Armed() bool { return s.armed.Load() }

// Start begins the background loop delivering ticks to target. Non-blocking.
func (s *Supervisor) Start(ctx context.Context, target Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(childCtx, target, s.done)

	s.log.Info("timer supervisor started (tick=%s)", s.tickInterval)
}

// Stop shuts down the loop and waits for it to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.Cancel()
	s.log.Info("timer supervisor stopped")
}

// Do runs fn on the loop goroutine and waits for it to finish. fn may call
// any engine method; it must not call Do itself.
func (s *Supervisor) Do(ctx context.Context, fn func()) error {
	s.mu.Lock()
	running, done := s.running, s.done
	s.mu.Unlock()
	if !running {
		return domain.ErrNotRunning
	}

	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case s.cmds <- cmd:
	case <-done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-cmd.done:
		return nil
	case <-done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop is the main tick loop.
func (s *Supervisor) loop(ctx context.Context, target Target, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmds:
			cmd.fn()
			close(cmd.done)
		case <-s.ticker.C:
			if !s.armed.Load() {
				s.log.Debug("supervisor: dropped tick while disarmed")
				continue
			}
			target.Tick(s.tickInterval)
		}
	}
}
