// Package domain defines the core types and interfaces for the countdown timer.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"encoding/binary"
	"time"
)

// Session is the mutable countdown aggregate owned by the engine.
type Session struct {
	State      TimerState
	Remaining  time.Duration // live countdown value, frozen while paused
	Configured time.Duration // last value committed by Start, reused by Restart
}

// TimerState is the lifecycle state of the countdown.
type TimerState int

const (
	StateIdle TimerState = iota
	StateRunning
	StatePaused
	// StateExpired is transient: observers see it only as a notification,
	// the engine folds it back to StateIdle right away.
	StateExpired
)

// String returns a human-readable timer state.
func (s TimerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// SnapshotSize is the encoded length of a Snapshot: two int64 and one flag byte.
const SnapshotSize = 8 + 1 + 8

// Snapshot is the flat record kept across process recreation.
// Field order on the wire is RemainingMs, Running, ConfiguredMs.
type Snapshot struct {
	RemainingMs  int64
	Running      bool
	ConfiguredMs int64
}

// MarshalBinary encodes the snapshot as big-endian fields in record order.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SnapshotSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(s.RemainingMs))
	if s.Running {
		buf[8] = 1
	}
	binary.BigEndian.PutUint64(buf[9:17], uint64(s.ConfiguredMs))
	return buf, nil
}

// UnmarshalBinary decodes a record written by MarshalBinary.
func (s *Snapshot) UnmarshalBinary(data []byte) error {
	if len(data) != SnapshotSize {
		return ErrCorruptSnapshot
	}
	remaining := int64(binary.BigEndian.Uint64(data[0:8]))
	configured := int64(binary.BigEndian.Uint64(data[9:17]))
	if remaining < 0 || configured < 0 || data[8] > 1 {
		return ErrCorruptSnapshot
	}
	s.RemainingMs = remaining
	s.Running = data[8] == 1
	s.ConfiguredMs = configured
	return nil
}
