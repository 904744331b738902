// Package config loads the timer's YAML configuration, applies environment
// overrides, and hot-reloads the file when it changes on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Env var names recognised as overrides. A .env file is loaded into the
// process environment before these are read.
const (
	EnvConfigPath = "OTTOTIMER_CONFIG"
	EnvStateFile  = "OTTOTIMER_STATE_FILE"
	EnvAlarmFile  = "OTTOTIMER_ALARM_FILE"
	EnvLogLevel   = "OTTOTIMER_LOG_LEVEL"
)

// DefaultPath is where the config file lives unless overridden.
const DefaultPath = ".ottotimer/config.yaml"

// Config is the full application configuration.
type Config struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	MinuteStep   int           `yaml:"minute_step"`
	SecondStep   int           `yaml:"second_step"`
	StateFile    string        `yaml:"state_file"`
	Log          LogConfig     `yaml:"log"`
	Alarm        AlarmConfig   `yaml:"alarm"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // "stderr" logs to the console
}

// AlarmConfig controls the expiry alarm.
type AlarmConfig struct {
	Enabled   bool          `yaml:"enabled"`
	SoundFile string        `yaml:"sound_file"` // WAV file; empty plays a generated tone
	ToneHz    float64       `yaml:"tone_hz"`
	Volume    float64       `yaml:"volume"`     // 0..1
	PatternMs []int64       `yaml:"pattern_ms"` // delay, on, off
	MaxRing   time.Duration `yaml:"max_ring"`   // 0 rings until dismissed
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		TickInterval: time.Second,
		MinuteStep:   1,
		SecondStep:   5,
		StateFile:    ".ottotimer/timer.state",
		Log: LogConfig{
			Level: "normal",
			File:  ".ottotimer/ottotimer.log",
		},
		Alarm: AlarmConfig{
			Enabled:   true,
			ToneHz:    880,
			Volume:    0.6,
			PatternMs: []int64{0, 1000, 500},
		},
	}
}

// Pattern returns the alarm cadence as durations.
func (a AlarmConfig) Pattern() (delay, on, off time.Duration) {
	return time.Duration(a.PatternMs[0]) * time.Millisecond,
		time.Duration(a.PatternMs[1]) * time.Millisecond,
		time.Duration(a.PatternMs[2]) * time.Millisecond
}

// Validate checks the values a running timer depends on.
func (c *Config) Validate() error {
	var err error
	if c.TickInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("tick_interval must be > 0, got %s", c.TickInterval))
	}
	if c.MinuteStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("minute_step must be > 0, got %d", c.MinuteStep))
	}
	if c.SecondStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("second_step must be > 0, got %d", c.SecondStep))
	}
	if len(c.Alarm.PatternMs) != 3 {
		err = multierr.Append(err, fmt.Errorf("alarm.pattern_ms needs 3 values (delay, on, off), got %d", len(c.Alarm.PatternMs)))
	} else {
		for _, v := range c.Alarm.PatternMs {
			if v < 0 {
				err = multierr.Append(err, fmt.Errorf("alarm.pattern_ms values must be >= 0, got %d", v))
				break
			}
		}
		if c.Alarm.PatternMs[1] == 0 {
			err = multierr.Append(err, errors.New("alarm.pattern_ms on-time must be > 0"))
		}
	}
	if c.Alarm.Volume < 0 || c.Alarm.Volume > 1 {
		err = multierr.Append(err, fmt.Errorf("alarm.volume must be within 0..1, got %g", c.Alarm.Volume))
	}
	if c.Alarm.ToneHz <= 0 {
		err = multierr.Append(err, fmt.Errorf("alarm.tone_hz must be > 0, got %g", c.Alarm.ToneHz))
	}
	if c.Alarm.MaxRing < 0 {
		err = multierr.Append(err, fmt.Errorf("alarm.max_ring must be >= 0, got %s", c.Alarm.MaxRing))
	}
	return err
}

// Load reads and validates the config at path. Fields missing from the
// file keep their defaults. A missing file returns an error wrapping
// fs.ErrNotExist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrCreate loads path, writing the defaults there first if the file
// does not exist yet.
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg fields from the environment. getenv is usually
// os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvStateFile); v != "" {
		cfg.StateFile = v
	}
	if v := getenv(EnvAlarmFile); v != "" {
		cfg.Alarm.SoundFile = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}
