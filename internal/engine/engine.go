// Package engine implements the countdown state machine and its MM:SS
// arithmetic. The engine is single-threaded: callers serialize every call,
// ticks included (see the timer package).
package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Engine owns the countdown session. It depends only on interfaces and is
// fully testable with fakes.
type Engine struct {
	sched    domain.Scheduler
	listener domain.Listener
	log      *logger.Logger

	session domain.Session
	pending string // MM:SS text currently displayed and editable
}

// New creates a countdown engine. A nil scheduler or listener is replaced
// with a no-op.
func New(sched domain.Scheduler, listener domain.Listener, log *logger.Logger) *Engine {
	if sched == nil {
		sched = nopScheduler{}
	}
	if listener == nil {
		listener = nopListener{}
	}
	return &Engine{
		sched:    sched,
		listener: listener,
		log:      log,
		session:  domain.Session{State: domain.StateIdle},
	}
}

// State returns the current timer state.
func (e *Engine) State() domain.TimerState { return e.session.State }

// Remaining returns the live countdown value.
func (e *Engine) Remaining() time.Duration { return e.session.Remaining }

// Configured returns the duration last committed by Start.
func (e *Engine) Configured() time.Duration { return e.session.Configured }

// Pending returns the MM:SS text currently displayed.
func (e *Engine) Pending() string { return e.pending }

// SetPendingDuration parses text as MM:SS and makes it the pending value.
// While running the countdown owns the display, so the text is parsed but
// not stored. While paused the parsed value replaces the frozen remaining
// time and, when non-zero, the configured duration, so both the next Start
// and a later Restart use it.
func (e *Engine) SetPendingDuration(text string) (time.Duration, error) {
	d, err := ParseMMSS(text)
	if err != nil {
		return 0, e.reject(err)
	}

	switch e.session.State {
	case domain.StateRunning:
		e.log.Debug("engine: pending %q ignored while running", text)
		return d, nil
	case domain.StatePaused:
		e.pending = FormatMMSS(d)
		e.rebasePaused(d)
	default:
		e.pending = strings.TrimSpace(text)
	}
	e.log.Debug("engine: pending set to %q (%s)", e.pending, d)
	return d, nil
}

// Adjust adds the deltas to the displayed minutes/seconds pair. It applies
// only while idle or paused and reports whether anything changed. While
// paused the adjusted value is rebased the same way SetPendingDuration does.
func (e *Engine) Adjust(minutesDelta, secondsDelta int) bool {
	if e.session.State == domain.StateRunning {
		e.log.Debug("engine: adjust ignored while running")
		return false
	}

	e.pending = AdjustMMSS(e.pending, minutesDelta, secondsDelta)
	if e.session.State == domain.StatePaused {
		// AdjustMMSS always yields a parsable value.
		d, _ := ParseMMSS(e.pending)
		e.rebasePaused(d)
	}
	e.log.Debug("engine: adjusted by %+dm%+ds -> %s", minutesDelta, secondsDelta, e.pending)
	return true
}

// Start begins or resumes the countdown. A paused session resumes from its
// remaining time; otherwise the pending text is parsed and committed as
// the configured duration. Starting while running is a no-op.
func (e *Engine) Start() error {
	if e.session.State == domain.StateRunning {
		return nil
	}

	if e.session.Remaining > 0 {
		e.log.Info("resuming countdown at %s", FormatMMSS(e.session.Remaining))
		e.run()
		return nil
	}

	text := strings.TrimSpace(e.pending)
	if text == "" {
		return e.reject(domain.ErrEmptyOrZero)
	}
	d, err := ParseMMSS(text)
	if err != nil {
		return e.reject(err)
	}
	if d == 0 {
		return e.reject(domain.ErrEmptyOrZero)
	}

	e.session.Configured = d
	e.session.Remaining = d
	e.log.Info("starting countdown of %s", FormatMMSS(d))
	e.run()
	return nil
}

// Pause freezes the countdown. No-op unless running.
func (e *Engine) Pause() {
	if e.session.State != domain.StateRunning {
		return
	}
	e.sched.Cancel()
	e.setState(domain.StatePaused)
	e.log.Info("paused at %s", FormatMMSS(e.session.Remaining))
}

// Reset cancels any countdown and returns to idle. The configured duration
// is kept for Restart.
func (e *Engine) Reset() {
	e.sched.Cancel()
	e.session.Remaining = 0
	e.pending = FormatMMSS(0)
	e.setState(domain.StateIdle)
	e.log.Info("reset")
}

// Restart re-arms the countdown from the configured duration, bypassing
// the pending text. Without a configured duration it resets and returns
// domain.ErrNothingToRestart.
func (e *Engine) Restart() error {
	if e.session.Configured <= 0 {
		e.Reset()
		return e.reject(domain.ErrNothingToRestart)
	}

	e.sched.Cancel()
	e.session.Remaining = e.session.Configured
	e.log.Info("restarting countdown of %s", FormatMMSS(e.session.Configured))
	e.run()
	return nil
}

// Tick applies one scheduler period. Ticks that arrive when the session is
// not running are stale and ignored.
func (e *Engine) Tick(elapsed time.Duration) {
	if e.session.State != domain.StateRunning {
		e.log.Debug("engine: stale tick ignored (state=%s)", e.session.State)
		return
	}
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := e.session.Remaining - elapsed
	if remaining < 0 {
		remaining = 0
	}
	e.session.Remaining = remaining
	e.pending = FormatMMSS(remaining)
	e.listener.OnTick(remaining)

	if remaining > 0 {
		return
	}

	e.sched.Cancel()
	e.setState(domain.StateExpired)
	e.log.Info("countdown expired")
	e.listener.OnExpired()

	e.session.Remaining = 0
	e.setState(domain.StateIdle)
}

// Snapshot returns the serializable form of the session.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		RemainingMs:  e.session.Remaining.Milliseconds(),
		Running:      e.session.State == domain.StateRunning,
		ConfiguredMs: e.session.Configured.Milliseconds(),
	}
}

// Restore replaces the session with snap. A running snapshot re-arms the
// countdown; one with remaining time but not running comes back paused.
func (e *Engine) Restore(snap domain.Snapshot) {
	e.sched.Cancel()

	remaining := msToDuration(snap.RemainingMs)
	e.session.Configured = msToDuration(snap.ConfiguredMs)
	e.session.Remaining = remaining
	e.pending = FormatMMSS(remaining)

	e.log.Info("restored session (remaining=%s, running=%t, configured=%s)",
		FormatMMSS(remaining), snap.Running, FormatMMSS(e.session.Configured))

	switch {
	case remaining > 0 && snap.Running:
		e.run()
	case remaining > 0:
		e.setState(domain.StatePaused)
	default:
		e.setState(domain.StateIdle)
	}
}

// run moves to running and arms the scheduler.
func (e *Engine) run() {
	e.pending = FormatMMSS(e.session.Remaining)
	e.sched.Arm()
	e.setState(domain.StateRunning)
}

// rebasePaused replaces the frozen remaining time of a paused session and
// commits d as the configured duration. A zero value leaves nothing to
// resume, so the session falls back to idle with its configured duration
// untouched.
func (e *Engine) rebasePaused(d time.Duration) {
	e.session.Remaining = d
	if d == 0 {
		e.setState(domain.StateIdle)
		return
	}
	e.session.Configured = d
}

func (e *Engine) setState(state domain.TimerState) {
	prev := e.session.State
	e.session.State = state
	e.log.Debug("engine: %s -> %s", prev, state)
	e.listener.OnStateChanged(state)
}

// reject reports a failed operation to the listener and returns err.
func (e *Engine) reject(err error) error {
	e.log.Debug("engine: rejected: %v", err)
	e.listener.OnValidationError(err)
	return err
}

func msToDuration(ms int64) time.Duration {
	if ms <= 0 {
		return 0
	}
	if ms > int64(MaxDuration/time.Millisecond) {
		return MaxDuration
	}
	return time.Duration(ms) * time.Millisecond
}

// IsValidationError reports whether err is one of the recoverable input errors.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidFormat) ||
		errors.Is(err, domain.ErrEmptyOrZero) ||
		errors.Is(err, domain.ErrNothingToRestart)
}

type nopScheduler struct{}

func (nopScheduler) Arm() {}
func (nopScheduler) Cancel() {}

type nopListener struct{}

func (nopListener) OnTick(time.Duration) {}
func (nopListener) OnExpired() {}
func (nopListener) OnStateChanged(domain.TimerState) {}
func (nopListener) OnValidationError(error) {}
