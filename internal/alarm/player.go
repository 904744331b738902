package alarm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.Alarm = (*Player)(nil)

// Player rings through the system audio device via oto. It plays either a
// generated tone or a WAV clip on each burst.
type Player struct {
	ringer
	ctx *oto.Context

	audioMu sync.Mutex
	tone    []byte // cached burst for the current settings
	clip    []byte // PCM from SoundFile, nil when using the tone
	active  *oto.Player
}

// NewPlayer initializes the system audio context. Returns an error if the
// audio device is unavailable. oto allows one context per process, so
// create a single Player.
func NewPlayer(settings Settings, log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	p := &Player{ctx: ctx}
	p.ringer.log = log
	if err := p.Configure(settings); err != nil {
		// A bad sound file should not silence the alarm; fall back to the tone.
		log.Warn("alarm: %v (using generated tone)", err)
		settings.SoundFile = ""
		if err := p.Configure(settings); err != nil {
			return nil, err
		}
	}

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return p, nil
}

// Configure replaces the alarm settings. Takes effect on the next Ring.
func (p *Player) Configure(s Settings) error {
	var clip []byte
	if s.SoundFile != "" {
		data, err := os.ReadFile(s.SoundFile)
		if err != nil {
			return fmt.Errorf("reading sound file: %w", err)
		}
		format, pcm, err := decodeWAV(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", s.SoundFile, err)
		}
		if err := format.checkPlayable(SampleRate, ChannelCount); err != nil {
			return fmt.Errorf("%s: %w", s.SoundFile, err)
		}
		clip = pcm
	}
	tone := tonePCM(s.ToneHz, s.Volume, s.On)

	p.audioMu.Lock()
	p.tone = tone
	p.clip = clip
	p.audioMu.Unlock()

	p.configure(s)
	p.log.Debug("alarm configured (tone=%gHz, volume=%.2f, file=%q)", s.ToneHz, s.Volume, s.SoundFile)
	return nil
}

// Ring starts the alarm in the background. No-op if already ringing.
func (p *Player) Ring(ctx context.Context) { p.ring(ctx, p) }

// Stop silences the alarm and waits for the ring loop to exit. Safe to call
// concurrently and when nothing is ringing.
func (p *Player) Stop() {
	p.audioMu.Lock()
	active := p.active
	p.audioMu.Unlock()

	if active != nil {
		active.Pause()
	}
	p.stop()
}

// Ringing reports whether the alarm is ringing.
func (p *Player) Ringing() bool { return p.ringing() }

// sound plays one burst and blocks until it finishes or ctx ends.
func (p *Player) sound(ctx context.Context, on time.Duration) error {
	clipVolume := p.current().Volume

	p.audioMu.Lock()
	pcm, volume := p.tone, 1.0
	if p.clip != nil {
		pcm, volume = p.clip, clipVolume
	}
	p.audioMu.Unlock()

	if len(pcm) == 0 {
		sleepCtx(ctx, on)
		return nil
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	player.SetVolume(volume)

	p.audioMu.Lock()
	p.active = player
	p.audioMu.Unlock()

	player.Play()

	// Wait for playback to complete or be interrupted.
	for player.IsPlaying() {
		if ctx.Err() != nil {
			player.Pause()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	p.audioMu.Lock()
	p.active = nil
	p.audioMu.Unlock()

	return player.Close()
}
