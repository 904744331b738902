package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentSetTime            // payload is MM:SS, set pending and start
	IntentStart              // start or resume
	IntentPause
	IntentReset
	IntentRestart
	IntentAdjust // payload is a signed step like "+1m" or "-5s"
	IntentStatus
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentSetTime:
		return "set_time"
	case IntentStart:
		return "start"
	case IntentPause:
		return "pause"
	case IntentReset:
		return "reset"
	case IntentRestart:
		return "restart"
	case IntentAdjust:
		return "adjust"
	case IntentStatus:
		return "status"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
	// Minutes and Seconds carry the parsed deltas of an IntentAdjust.
	Minutes int
	Seconds int
}
