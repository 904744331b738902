// Package alarm plays the expiry signal. The alarm repeats an on/off
// cadence until it is stopped, its context ends, or the configured maximum
// ring time passes.
package alarm

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/hammamikhairi/ottotimer/internal/config"
	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Audio parameters for generated tones and the playback context.
const (
	SampleRate   = 44100
	ChannelCount = 1
	BitDepth     = 16
)

// Settings describe what the alarm sounds like and how it repeats.
type Settings struct {
	ToneHz    float64
	Volume    float64
	SoundFile string
	Delay     time.Duration // before the first sound
	On        time.Duration // length of each tone burst
	Off       time.Duration // silence between bursts
	MaxRing   time.Duration // 0 rings until stopped
}

// FromConfig converts the alarm section of the config.
func FromConfig(c config.AlarmConfig) Settings {
	delay, on, off := c.Pattern()
	return Settings{
		ToneHz:    c.ToneHz,
		Volume:    c.Volume,
		SoundFile: c.SoundFile,
		Delay:     delay,
		On:        on,
		Off:       off,
		MaxRing:   c.MaxRing,
	}
}

// sounder makes one burst of sound lasting roughly on, returning early
// when ctx ends.
type sounder interface {
	sound(ctx context.Context, on time.Duration) error
}

// ringer runs the repeat loop shared by every alarm implementation.
type ringer struct {
	log *logger.Logger

	mu       sync.Mutex
	settings Settings
	cancel   context.CancelFunc
	done     chan struct{}
}

func (r *ringer) configure(s Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
}

func (r *ringer) current() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *ringer) ring(ctx context.Context, s sounder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		select {
		case <-r.done:
		default:
			r.log.Debug("alarm: already ringing")
			return
		}
	}

	var ringCtx context.Context
	var cancel context.CancelFunc
	if r.settings.MaxRing > 0 {
		ringCtx, cancel = context.WithTimeout(ctx, r.settings.MaxRing)
	} else {
		ringCtx, cancel = context.WithCancel(ctx)
	}
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ringCtx, s, r.settings, r.done)
	r.log.Info("alarm ringing (on=%s, off=%s)", r.settings.On, r.settings.Off)
}

func (r *ringer) run(ctx context.Context, s sounder, set Settings, done chan struct{}) {
	defer close(done)

	if !sleepCtx(ctx, set.Delay) {
		return
	}
	for {
		if err := s.sound(ctx, set.On); err != nil {
			r.log.Error("alarm: %v", err)
			return
		}
		if !sleepCtx(ctx, set.Off) {
			return
		}
	}
}

// stop ends the ring loop and waits for it to exit.
func (r *ringer) stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *ringer) ringing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// sleepCtx waits for d or until ctx ends. It reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Compile-time interface check.
var _ domain.Alarm = (*Bell)(nil)

// Bell rings the terminal bell. Used when no audio device is available.
type Bell struct {
	ringer
	writeMu sync.Mutex
	out     io.Writer
}

// NewBell creates a terminal-bell alarm writing BEL characters to out.
func NewBell(out io.Writer, settings Settings, log *logger.Logger) *Bell {
	b := &Bell{out: out}
	b.ringer.log = log
	b.ringer.settings = settings
	return b
}

// Configure replaces the settings used by the next Ring. The bell has no
// sound file to load, so it never fails.
func (b *Bell) Configure(s Settings) error {
	b.configure(s)
	return nil
}

// Ring starts ringing in the background. No-op if already ringing.
func (b *Bell) Ring(ctx context.Context) { b.ring(ctx, b) }

// Stop silences the bell.
func (b *Bell) Stop() { b.stop() }

// Ringing reports whether the bell is ringing.
func (b *Bell) Ringing() bool { return b.ringing() }

func (b *Bell) sound(ctx context.Context, on time.Duration) error {
	b.writeMu.Lock()
	_, err := io.WriteString(b.out, "\a")
	b.writeMu.Unlock()
	if err != nil {
		return err
	}
	sleepCtx(ctx, on)
	return nil
}
