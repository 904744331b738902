package notify

import (
	"errors"
	"fmt"

	"github.com/hammamikhairi/ottotimer/internal/domain"
)

// ── Lifecycle ────────────────────────────────────────────────────

func LineWelcome() string {
	return "Type a time like 05:00 and press enter."
}

func LineBye() string {
	return "Bye."
}

func LineRestored(state domain.TimerState, clock string) string {
	return fmt.Sprintf("Restored %s timer at %s.", state, clock)
}

// ── Countdown ────────────────────────────────────────────────────

func LineTimesUp() string {
	return "Time's up!"
}

func LineStarted(clock string) string {
	return fmt.Sprintf("Counting down from %s.", clock)
}

func LinePaused(clock string) string {
	return fmt.Sprintf("Paused at %s.", clock)
}

func LineAdjustWhileRunning() string {
	return "Pause the timer to adjust it."
}

func LineTimeWhileRunning() string {
	return "Pause the timer to change the time."
}

// ── Shortcuts ────────────────────────────────────────────────────

func LineRestartedByShortcut() string {
	return "Timer restarted by shortcut"
}

func LineResetByShortcut() string {
	return "Timer reset by shortcut"
}

// ── Validation ───────────────────────────────────────────────────

func LineEnterValidTime() string {
	return "Please enter a valid time!"
}

func LineInvalidFormat() string {
	return "Invalid time format!"
}

func LineNothingToRestart() string {
	return "No previous time to restart."
}

func LineUnknown(input string) string {
	return fmt.Sprintf("Unknown command: %s. Type help for commands.", input)
}

// LineForError maps an engine error to the message shown to the user.
// Errors that are not validation failures fall back to their own text.
func LineForError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrEmptyOrZero):
		return LineEnterValidTime()
	case errors.Is(err, domain.ErrInvalidFormat):
		return LineInvalidFormat()
	case errors.Is(err, domain.ErrNothingToRestart):
		return LineNothingToRestart()
	default:
		return err.Error()
	}
}

// ── Status ───────────────────────────────────────────────────────

// LineStatus describes the session for the status command.
func LineStatus(state domain.TimerState, clock string, configured string) string {
	if configured == "" {
		return fmt.Sprintf("%s, %s.", state, clock)
	}
	return fmt.Sprintf("%s, %s of %s.", state, clock, configured)
}
