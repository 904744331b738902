package domain

import (
	"context"
	"time"
)

// Listener observes engine events. Implementations must not call back into
// the engine synchronously; hand the event off instead.
type Listener interface {
	OnTick(remaining time.Duration)
	OnExpired()
	OnStateChanged(state TimerState)
	OnValidationError(err error)
}

// Scheduler is the periodic tick source driving the engine. The engine arms
// it when the countdown starts running and cancels it when it stops.
type Scheduler interface {
	Arm()
	Cancel()
}

// Alarm is the audible signal played when the countdown expires.
type Alarm interface {
	Ring(ctx context.Context)
	Stop()
	Ringing() bool
}

// Notifier delivers short user-visible messages, the terminal counterpart of
// a toast. Implementations can write to stdout or a UI status line.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// SnapshotStore persists the session snapshot between runs.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	Clear(ctx context.Context) error
}

// IntentParser converts raw typed input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
