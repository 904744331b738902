package main

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/ottotimer/internal/alarm"
	"github.com/hammamikhairi/ottotimer/internal/command"
	"github.com/hammamikhairi/ottotimer/internal/config"
	"github.com/hammamikhairi/ottotimer/internal/display"
	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/engine"
	"github.com/hammamikhairi/ottotimer/internal/logger"
	"github.com/hammamikhairi/ottotimer/internal/notify"
	"github.com/hammamikhairi/ottotimer/internal/timer"
)

// screen is the part of display.UI the app drives.
type screen interface {
	PrintHint(text string)
	SetStatus(s display.Status)
}

// tunableAlarm is an alarm whose sound can change while the app runs.
type tunableAlarm interface {
	domain.Alarm
	Configure(s alarm.Settings) error
}

// notifier is the notify.CLINotifier surface the app uses.
type notifier interface {
	domain.Notifier
	Echo(ctx context.Context, message string) error
}

// Compile-time interface check.
var _ domain.Listener = (*cliApp)(nil)

// cliApp routes user input to the engine and engine events to the user.
// Every engine call goes through the supervisor so commands and ticks
// never race; the Listener methods run on the supervisor goroutine.
type cliApp struct {
	ctx      context.Context // parent of alarm rings
	engine   *engine.Engine
	sup      *timer.Supervisor
	parser   domain.IntentParser
	notifier notifier
	alarm    tunableAlarm
	store    domain.SnapshotStore
	log      *logger.Logger
	ui       screen

	minuteStep atomic.Int64
	secondStep atomic.Int64
	alarmOn    atomic.Bool
}

func newApp(ctx context.Context, cfg *config.Config, sup *timer.Supervisor, parser domain.IntentParser,
	notifier notifier, alrm tunableAlarm, store domain.SnapshotStore, ui screen, log *logger.Logger) *cliApp {
	a := &cliApp{
		ctx:      ctx,
		sup:      sup,
		parser:   parser,
		notifier: notifier,
		alarm:    alrm,
		store:    store,
		log:      log,
		ui:       ui,
	}
	a.engine = engine.New(sup, a, log)
	a.minuteStep.Store(int64(cfg.MinuteStep))
	a.secondStep.Store(int64(cfg.SecondStep))
	a.alarmOn.Store(cfg.Alarm.Enabled)
	return a
}

// ── Engine events ────────────────────────────────────────────────

func (a *cliApp) OnTick(time.Duration) { a.pushStatus() }

func (a *cliApp) OnExpired() {
	a.log.Info("countdown expired")
	if a.alarmOn.Load() {
		a.alarm.Ring(a.ctx)
	}
	a.notifier.NotifyUrgent(a.ctx, notify.LineTimesUp())

	// A finished countdown has nothing left to restore.
	if err := a.store.Clear(a.ctx); err != nil {
		a.log.Warn("clearing saved timer: %v", err)
	}
}

func (a *cliApp) OnStateChanged(domain.TimerState) { a.pushStatus() }

func (a *cliApp) OnValidationError(err error) {
	a.notifier.Notify(a.ctx, notify.LineForError(err))
}

// pushStatus must run on the supervisor goroutine.
func (a *cliApp) pushStatus() {
	a.ui.SetStatus(display.Status{
		Clock:   a.clock(),
		State:   a.engine.State(),
		Ringing: a.alarm.Ringing(),
	})
}

// clock is the MM:SS shown for the current session.
func (a *cliApp) clock() string {
	switch a.engine.State() {
	case domain.StateRunning, domain.StatePaused:
		return engine.FormatMMSS(a.engine.Remaining())
	}
	if d, err := engine.ParseMMSS(a.engine.Pending()); err == nil {
		return engine.FormatMMSS(d)
	}
	return engine.FormatMMSS(0)
}

// exec runs fn on the supervisor goroutine.
func (a *cliApp) exec(ctx context.Context, fn func()) bool {
	if err := a.sup.Do(ctx, fn); err != nil {
		a.log.Error("engine dispatch: %v", err)
		return false
	}
	return true
}

// check logs errors the listener has not already shown to the user.
func (a *cliApp) check(op string, err error) {
	if err != nil && !engine.IsValidationError(err) {
		a.log.Error("%s: %v", op, err)
	}
}

// ── Input loop ───────────────────────────────────────────────────

func (a *cliApp) run(ctx context.Context, lines <-chan string, keys <-chan display.Key, reloads <-chan *config.Config) {
	a.notifier.Notify(ctx, notify.LineWelcome())

	// A nil reloads channel blocks forever, which leaves the select to
	// the other cases.
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := a.handleLine(ctx, line); quit {
				return
			}
		case k := <-keys:
			a.handleKey(ctx, k)
		case cfg := <-reloads:
			a.applyConfig(cfg)
		}
	}
}

func (a *cliApp) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	intent, err := a.parser.Parse(ctx, line)
	if err != nil {
		a.log.Error("parsing input: %v", err)
		return false
	}

	a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
	return a.handleIntent(ctx, intent)
}

// handleIntent executes one intent. It reports whether the app should quit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentSetTime:
		a.setTime(ctx, intent.Payload)
	case domain.IntentStart:
		a.start(ctx)
	case domain.IntentPause:
		a.pause(ctx)
	case domain.IntentReset:
		a.reset(ctx)
	case domain.IntentRestart:
		a.restart(ctx)
	case domain.IntentAdjust:
		a.adjust(ctx, intent.Minutes, intent.Seconds)
	case domain.IntentStatus:
		a.status(ctx)
	case domain.IntentHelp:
		for _, l := range strings.Split(command.HelpText(), "\n") {
			a.ui.PrintHint(l)
		}
	case domain.IntentQuit:
		a.notifier.Notify(ctx, notify.LineBye())
		return true
	default:
		a.notifier.Notify(ctx, notify.LineUnknown(intent.Payload))
	}
	return false
}

func (a *cliApp) handleKey(ctx context.Context, k display.Key) {
	a.log.Debug("key: %s", k)

	switch k {
	case display.KeyToggle:
		// The first press after expiry only silences the alarm.
		if a.alarm.Ringing() {
			a.silence(ctx)
			return
		}
		a.toggle(ctx)
	case display.KeyRestart:
		if a.restart(ctx) {
			a.notifier.Echo(ctx, notify.LineRestartedByShortcut())
		}
	case display.KeyReset:
		a.reset(ctx)
		a.notifier.Echo(ctx, notify.LineResetByShortcut())
	case display.KeyMinuteUp:
		a.adjust(ctx, int(a.minuteStep.Load()), 0)
	case display.KeyMinuteDown:
		a.adjust(ctx, -int(a.minuteStep.Load()), 0)
	case display.KeySecondUp:
		a.adjust(ctx, 0, int(a.secondStep.Load()))
	case display.KeySecondDown:
		a.adjust(ctx, 0, -int(a.secondStep.Load()))
	}
}

// ── Commands ─────────────────────────────────────────────────────

// setTime starts a countdown from text. A running countdown keeps going;
// the user is told to pause first.
func (a *cliApp) setTime(ctx context.Context, text string) {
	a.alarm.Stop()
	var err error
	var running bool
	ok := a.exec(ctx, func() {
		if _, err = a.engine.SetPendingDuration(text); err != nil {
			return
		}
		if running = a.engine.State() == domain.StateRunning; running {
			return
		}
		err = a.engine.Start()
	})
	if !ok {
		return
	}
	if running {
		a.notifier.Notify(ctx, notify.LineTimeWhileRunning())
		return
	}
	a.check("set time", err)
}

func (a *cliApp) start(ctx context.Context) {
	a.alarm.Stop()
	var err error
	a.exec(ctx, func() { err = a.engine.Start() })
	a.check("start", err)
}

func (a *cliApp) pause(ctx context.Context) {
	a.exec(ctx, a.engine.Pause)
}

func (a *cliApp) toggle(ctx context.Context) {
	var err error
	a.exec(ctx, func() {
		if a.engine.State() == domain.StateRunning {
			a.engine.Pause()
			return
		}
		err = a.engine.Start()
	})
	a.check("toggle", err)
}

func (a *cliApp) reset(ctx context.Context) {
	a.alarm.Stop()
	a.exec(ctx, a.engine.Reset)
}

// restart reports whether the countdown was restarted.
func (a *cliApp) restart(ctx context.Context) bool {
	a.alarm.Stop()
	var err error
	if !a.exec(ctx, func() { err = a.engine.Restart() }) {
		return false
	}
	a.check("restart", err)
	return err == nil
}

func (a *cliApp) adjust(ctx context.Context, minutes, seconds int) {
	var applied bool
	ok := a.exec(ctx, func() {
		applied = a.engine.Adjust(minutes, seconds)
		if applied {
			a.pushStatus()
		}
	})
	if ok && !applied {
		a.notifier.Notify(ctx, notify.LineAdjustWhileRunning())
	}
}

func (a *cliApp) silence(ctx context.Context) {
	a.alarm.Stop()
	a.exec(ctx, a.pushStatus)
}

func (a *cliApp) status(ctx context.Context) {
	var line string
	a.exec(ctx, func() {
		configured := ""
		if c := a.engine.Configured(); c > 0 {
			configured = engine.FormatMMSS(c)
		}
		line = notify.LineStatus(a.engine.State(), a.clock(), configured)
	})
	if line != "" {
		a.notifier.Notify(ctx, line)
	}
}

// ── Lifecycle ────────────────────────────────────────────────────

// restore loads the saved snapshot, if any, into the engine.
func (a *cliApp) restore(ctx context.Context) error {
	snap, err := a.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var state domain.TimerState
	var clock string
	a.exec(ctx, func() {
		a.engine.Restore(snap)
		state, clock = a.engine.State(), a.clock()
		a.pushStatus()
	})
	if state != domain.StateIdle {
		a.notifier.Echo(ctx, notify.LineRestored(state, clock))
	}
	return nil
}

// shutdown silences the alarm and persists the session.
func (a *cliApp) shutdown(ctx context.Context) error {
	a.alarm.Stop()

	var snap domain.Snapshot
	if !a.exec(ctx, func() { snap = a.engine.Snapshot() }) {
		return domain.ErrNotRunning
	}
	return a.store.Save(ctx, snap)
}

// applyConfig applies a reloaded config. The tick interval only changes on
// the next launch.
func (a *cliApp) applyConfig(cfg *config.Config) {
	a.minuteStep.Store(int64(cfg.MinuteStep))
	a.secondStep.Store(int64(cfg.SecondStep))
	a.alarmOn.Store(cfg.Alarm.Enabled)

	if err := a.alarm.Configure(alarm.FromConfig(cfg.Alarm)); err != nil {
		a.log.Warn("alarm: keeping previous sound: %v", err)
	}
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		a.log.SetLevel(level)
	}
	if cfg.TickInterval != a.sup.TickInterval() {
		a.log.Info("tick_interval change to %s applies after restart", cfg.TickInterval)
	}
	a.log.Info("config reloaded (steps=%dm/%ds, alarm=%t)", cfg.MinuteStep, cfg.SecondStep, cfg.Alarm.Enabled)
}
