package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// fakeScheduler counts arm/cancel calls and tracks whether ticks are live.
type fakeScheduler struct {
	armed   bool
	arms    int
	cancels int
}

func (s *fakeScheduler) Arm() {
	s.armed = true
	s.arms++
}

func (s *fakeScheduler) Cancel() {
	s.armed = false
	s.cancels++
}

// recordingListener captures every engine event in order.
type recordingListener struct {
	ticks   []time.Duration
	expired int
	states  []domain.TimerState
	errs    []error
}

func (l *recordingListener) OnTick(remaining time.Duration) {
	l.ticks = append(l.ticks, remaining)
}

func (l *recordingListener) OnExpired() {
	l.expired++
}

func (l *recordingListener) OnStateChanged(s domain.TimerState) {
	l.states = append(l.states, s)
}

func (l *recordingListener) OnValidationError(err error) {
	l.errs = append(l.errs, err)
}

func setupEngine(t *testing.T) (*Engine, *fakeScheduler, *recordingListener) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	sched := &fakeScheduler{}
	listener := &recordingListener{}
	return New(sched, listener, log), sched, listener
}

func startWith(t *testing.T, eng *Engine, text string) {
	t.Helper()
	if _, err := eng.SetPendingDuration(text); err != nil {
		t.Fatalf("set pending %q: %v", text, err)
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("start %q: %v", text, err)
	}
}

func TestStartComputesRemaining(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"00:01", time.Second},
		{"01:30", 90 * time.Second},
		{"25:00", 25 * time.Minute},
		{"05:75", 375 * time.Second},
		{"0:7", 7 * time.Second},
		{"120:00", 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			eng, sched, _ := setupEngine(t)
			startWith(t, eng, tt.text)

			if eng.State() != domain.StateRunning {
				t.Fatalf("expected running, got %s", eng.State())
			}
			if eng.Remaining() != tt.want {
				t.Fatalf("expected remaining %s, got %s", tt.want, eng.Remaining())
			}
			if eng.Configured() != tt.want {
				t.Fatalf("expected configured %s, got %s", tt.want, eng.Configured())
			}
			if !sched.armed {
				t.Fatal("expected scheduler armed")
			}
		})
	}
}

func TestStartRejectsEmptyOrZero(t *testing.T) {
	for _, text := range []string{"", "00:00", "0:0"} {
		t.Run(text, func(t *testing.T) {
			eng, sched, listener := setupEngine(t)
			if text != "" {
				if _, err := eng.SetPendingDuration(text); err != nil {
					t.Fatalf("set pending: %v", err)
				}
			}

			err := eng.Start()
			if !errors.Is(err, domain.ErrEmptyOrZero) {
				t.Fatalf("expected ErrEmptyOrZero, got %v", err)
			}
			if eng.State() != domain.StateIdle {
				t.Fatalf("expected idle, got %s", eng.State())
			}
			if sched.arms != 0 {
				t.Fatal("scheduler should not be armed")
			}
			if len(listener.errs) != 1 {
				t.Fatalf("expected one validation event, got %d", len(listener.errs))
			}
		})
	}
}

func TestSetPendingDurationRejectsBadFormat(t *testing.T) {
	for _, text := range []string{"", "5", "1:2:3", "ab:cd", "-1:00", "01:+5", ":30", "10:"} {
		t.Run(text, func(t *testing.T) {
			eng, _, listener := setupEngine(t)
			_, err := eng.SetPendingDuration(text)
			if !errors.Is(err, domain.ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
			if eng.Pending() != "" {
				t.Fatalf("pending changed on failure: %q", eng.Pending())
			}
			if len(listener.errs) != 1 {
				t.Fatalf("expected one validation event, got %d", len(listener.errs))
			}
		})
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	eng, sched, _ := setupEngine(t)
	startWith(t, eng, "00:10")
	eng.Tick(time.Second)

	if err := eng.Start(); err != nil {
		t.Fatalf("start while running: %v", err)
	}
	if sched.arms != 1 {
		t.Fatalf("expected one arm, got %d", sched.arms)
	}
	if eng.Remaining() != 9*time.Second {
		t.Fatalf("expected 9s remaining, got %s", eng.Remaining())
	}
}

func TestTickCountsDownAndExpires(t *testing.T) {
	eng, sched, listener := setupEngine(t)
	startWith(t, eng, "00:03")

	for i := 0; i < 3; i++ {
		eng.Tick(time.Second)
	}

	want := []time.Duration{2 * time.Second, time.Second, 0}
	if len(listener.ticks) != len(want) {
		t.Fatalf("expected %d ticks, got %v", len(want), listener.ticks)
	}
	for i, d := range want {
		if listener.ticks[i] != d {
			t.Fatalf("tick %d: expected %s, got %s", i, d, listener.ticks[i])
		}
	}
	if listener.expired != 1 {
		t.Fatalf("expected one expiry, got %d", listener.expired)
	}
	if eng.State() != domain.StateIdle {
		t.Fatalf("expected idle after expiry, got %s", eng.State())
	}
	if eng.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %s", eng.Remaining())
	}
	if sched.armed {
		t.Fatal("scheduler still armed after expiry")
	}

	// Expired is seen only in passing.
	n := len(listener.states)
	if n < 2 || listener.states[n-2] != domain.StateExpired || listener.states[n-1] != domain.StateIdle {
		t.Fatalf("expected ... expired, idle; got %v", listener.states)
	}

	// A late tick after expiry does nothing.
	eng.Tick(time.Second)
	if len(listener.ticks) != 3 || listener.expired != 1 {
		t.Fatal("late tick after expiry had an effect")
	}

	// Starting again needs fresh input.
	if err := eng.Start(); !errors.Is(err, domain.ErrEmptyOrZero) {
		t.Fatalf("expected ErrEmptyOrZero after expiry, got %v", err)
	}
}

func TestTickClampsAtZero(t *testing.T) {
	eng, _, listener := setupEngine(t)
	startWith(t, eng, "00:02")

	eng.Tick(5 * time.Second)

	if len(listener.ticks) != 1 || listener.ticks[0] != 0 {
		t.Fatalf("expected a single tick at 0, got %v", listener.ticks)
	}
	if listener.expired != 1 {
		t.Fatalf("expected expiry, got %d", listener.expired)
	}
}

func TestPauseResumeKeepsRemaining(t *testing.T) {
	eng, sched, listener := setupEngine(t)
	startWith(t, eng, "01:00")
	eng.Tick(time.Second)
	eng.Tick(1500 * time.Millisecond)

	eng.Pause()
	if eng.State() != domain.StatePaused {
		t.Fatalf("expected paused, got %s", eng.State())
	}
	if sched.armed {
		t.Fatal("scheduler still armed after pause")
	}
	captured := eng.Remaining()

	// A stale tick delivered after pause must not move the clock.
	eng.Tick(time.Second)
	if eng.Remaining() != captured {
		t.Fatalf("stale tick changed remaining: %s -> %s", captured, eng.Remaining())
	}

	if err := eng.Start(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if eng.State() != domain.StateRunning {
		t.Fatalf("expected running, got %s", eng.State())
	}
	if eng.Remaining() != captured {
		t.Fatalf("expected %s after resume, got %s", captured, eng.Remaining())
	}
	if eng.Configured() != time.Minute {
		t.Fatalf("resume changed configured to %s", eng.Configured())
	}
	if len(listener.ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(listener.ticks))
	}
}

func TestPauseWhenNotRunningIsNoop(t *testing.T) {
	eng, sched, listener := setupEngine(t)
	eng.Pause()

	if eng.State() != domain.StateIdle {
		t.Fatalf("expected idle, got %s", eng.State())
	}
	if sched.cancels != 0 || len(listener.states) != 0 {
		t.Fatal("pause on idle engine had side effects")
	}
}

func TestResetKeepsConfigured(t *testing.T) {
	eng, sched, _ := setupEngine(t)
	startWith(t, eng, "02:00")
	eng.Tick(time.Second)

	eng.Reset()

	if eng.State() != domain.StateIdle {
		t.Fatalf("expected idle, got %s", eng.State())
	}
	if eng.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %s", eng.Remaining())
	}
	if eng.Configured() != 2*time.Minute {
		t.Fatalf("reset cleared configured: %s", eng.Configured())
	}
	if eng.Pending() != "00:00" {
		t.Fatalf("expected pending 00:00, got %q", eng.Pending())
	}
	if sched.armed {
		t.Fatal("scheduler still armed after reset")
	}
}

func TestRestartFromConfigured(t *testing.T) {
	eng, sched, _ := setupEngine(t)
	startWith(t, eng, "01:30")
	eng.Tick(10 * time.Second)
	eng.Reset()

	// Pending text does not matter for restart.
	if _, err := eng.SetPendingDuration("00:05"); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	if err := eng.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if eng.State() != domain.StateRunning {
		t.Fatalf("expected running, got %s", eng.State())
	}
	if eng.Remaining() != 90*time.Second {
		t.Fatalf("expected 90s, got %s", eng.Remaining())
	}
	if eng.Pending() != "01:30" {
		t.Fatalf("expected pending 01:30, got %q", eng.Pending())
	}
	if !sched.armed {
		t.Fatal("expected scheduler armed")
	}
}

func TestRestartWhileRunningRearms(t *testing.T) {
	eng, sched, _ := setupEngine(t)
	startWith(t, eng, "00:30")
	eng.Tick(5 * time.Second)

	if err := eng.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if eng.Remaining() != 30*time.Second {
		t.Fatalf("expected 30s, got %s", eng.Remaining())
	}
	if sched.arms != 2 || !sched.armed {
		t.Fatalf("expected re-armed scheduler, arms=%d armed=%v", sched.arms, sched.armed)
	}
}

func TestRestartWithNothingConfigured(t *testing.T) {
	eng, _, listener := setupEngine(t)
	if _, err := eng.SetPendingDuration("00:10"); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	err := eng.Restart()
	if !errors.Is(err, domain.ErrNothingToRestart) {
		t.Fatalf("expected ErrNothingToRestart, got %v", err)
	}
	if eng.State() != domain.StateIdle {
		t.Fatalf("expected idle, got %s", eng.State())
	}
	if len(listener.errs) != 1 {
		t.Fatalf("expected one validation event, got %d", len(listener.errs))
	}
}

func TestAdjust(t *testing.T) {
	eng, _, _ := setupEngine(t)
	if _, err := eng.SetPendingDuration("03:58"); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	if !eng.Adjust(0, 5) {
		t.Fatal("adjust rejected while idle")
	}
	if eng.Pending() != "04:03" {
		t.Fatalf("expected 04:03, got %q", eng.Pending())
	}

	eng.Adjust(1, 0)
	eng.Adjust(-1, 0)
	if eng.Pending() != "04:03" {
		t.Fatalf("expected round trip to 04:03, got %q", eng.Pending())
	}
}

func TestAdjustIgnoredWhileRunning(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "00:20")

	if eng.Adjust(1, 0) {
		t.Fatal("adjust applied while running")
	}
	if eng.Pending() != "00:20" || eng.Remaining() != 20*time.Second {
		t.Fatalf("running session changed: pending=%q remaining=%s", eng.Pending(), eng.Remaining())
	}
}

func TestAdjustWhilePausedRebasesRemaining(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "01:00")
	eng.Tick(time.Second)
	eng.Pause()

	eng.Adjust(1, 0)
	if eng.Pending() != "01:59" {
		t.Fatalf("expected 01:59, got %q", eng.Pending())
	}
	if eng.Remaining() != 119*time.Second {
		t.Fatalf("expected 119s, got %s", eng.Remaining())
	}

	if err := eng.Start(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if eng.Remaining() != 119*time.Second {
		t.Fatalf("expected resume from 119s, got %s", eng.Remaining())
	}
}

func TestTimeTypedWhilePausedBecomesConfigured(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "05:00")
	eng.Tick(time.Second)
	eng.Pause()

	if _, err := eng.SetPendingDuration("10:00"); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if eng.Configured() != 10*time.Minute {
		t.Fatalf("expected configured 10m, got %s", eng.Configured())
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	eng.Tick(time.Second)

	if err := eng.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if eng.Remaining() != 10*time.Minute {
		t.Fatalf("expected restart from 10m, got %s", eng.Remaining())
	}
}

func TestAdjustWhilePausedBecomesConfigured(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "01:00")
	eng.Tick(time.Second)
	eng.Pause()

	eng.Adjust(1, 1)
	if eng.Configured() != 2*time.Minute {
		t.Fatalf("expected configured 2m, got %s", eng.Configured())
	}
	if err := eng.Restart(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if eng.Remaining() != 2*time.Minute {
		t.Fatalf("expected restart from 2m, got %s", eng.Remaining())
	}
}

func TestAdjustIdleKeepsConfigured(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "00:30")
	eng.Reset()

	eng.Adjust(5, 0)
	if eng.Configured() != 30*time.Second {
		t.Fatalf("idle adjust changed configured to %s", eng.Configured())
	}
}

func TestAdjustHugePendingSaturates(t *testing.T) {
	eng, _, _ := setupEngine(t)
	if _, err := eng.SetPendingDuration("99999999999:00"); err != nil {
		t.Fatalf("set pending: %v", err)
	}

	eng.Adjust(0, 5)
	if eng.Pending() != FormatMMSS(MaxDuration) {
		t.Fatalf("expected %q, got %q", FormatMMSS(MaxDuration), eng.Pending())
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if eng.Remaining() != MaxDuration {
		t.Fatalf("expected %s, got %s", MaxDuration, eng.Remaining())
	}
}

func TestAdjustToZeroWhilePausedFallsBackToIdle(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "00:10")
	eng.Tick(5 * time.Second)
	eng.Pause()

	eng.Adjust(0, -5)

	if eng.State() != domain.StateIdle {
		t.Fatalf("expected idle, got %s", eng.State())
	}
	if err := eng.Start(); !errors.Is(err, domain.ErrEmptyOrZero) {
		t.Fatalf("expected ErrEmptyOrZero, got %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	eng, _, _ := setupEngine(t)
	startWith(t, eng, "02:00")
	eng.Tick(30 * time.Second)

	snap := eng.Snapshot()
	want := domain.Snapshot{RemainingMs: 90000, Running: true, ConfiguredMs: 120000}
	if snap != want {
		t.Fatalf("expected %+v, got %+v", want, snap)
	}

	tests := []struct {
		name      string
		snap      domain.Snapshot
		wantState domain.TimerState
		wantArmed bool
	}{
		{"running", want, domain.StateRunning, true},
		{"paused", domain.Snapshot{RemainingMs: 90000, ConfiguredMs: 120000}, domain.StatePaused, false},
		{"idle", domain.Snapshot{ConfiguredMs: 120000}, domain.StateIdle, false},
		{"running without time", domain.Snapshot{Running: true}, domain.StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restored, sched, _ := setupEngine(t)
			restored.Restore(tt.snap)

			if restored.State() != tt.wantState {
				t.Fatalf("expected %s, got %s", tt.wantState, restored.State())
			}
			if sched.armed != tt.wantArmed {
				t.Fatalf("expected armed=%v, got %v", tt.wantArmed, sched.armed)
			}
			if restored.Configured() != time.Duration(tt.snap.ConfiguredMs)*time.Millisecond {
				t.Fatalf("configured not restored: %s", restored.Configured())
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	eng, _, _ := setupEngine(t)
	_, err := eng.SetPendingDuration("nope")
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if IsValidationError(errors.New("disk full")) {
		t.Fatal("unrelated error classified as validation error")
	}
}
