// Package notify delivers short user-facing messages and keeps every
// message string in one place.
package notify

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// Kind selects how a message is rendered.
type Kind int

const (
	KindInfo   Kind = iota // replies to typed commands
	KindEcho               // confirmations of shortcut keys and restores
	KindUrgent             // expiry
)

func (k Kind) String() string {
	switch k {
	case KindEcho:
		return "echo"
	case KindUrgent:
		return "urgent"
	default:
		return "info"
	}
}

// EchoMark prefixes echo messages so they read apart from replies even
// without colour.
const EchoMark = "· "

var (
	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#67e8f9"))
	echoStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a1a1aa"))
	urgentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f87171"))
)

// PrintFunc matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier writes styled messages above the status bar.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewCLINotifier creates a terminal notifier. A nil printFn prints one
// line per message to stdout.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLINotifier{log: log, printFn: printFn}
}

// Notify prints a reply to a typed command.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	return n.emit(KindInfo, message)
}

// Echo prints a dim confirmation for an action the user did not type out.
func (n *CLINotifier) Echo(ctx context.Context, message string) error {
	return n.emit(KindEcho, message)
}

// NotifyUrgent prints an alert.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	return n.emit(KindUrgent, message)
}

func (n *CLINotifier) emit(kind Kind, message string) error {
	if message == "" {
		return nil
	}
	n.log.Debug("notify[%s]: %s", kind, message)
	n.printFn("%s", Render(kind, message))
	return nil
}

// Render styles message for kind.
func Render(kind Kind, message string) string {
	switch kind {
	case KindEcho:
		return echoStyle.Render(EchoMark + message)
	case KindUrgent:
		return urgentStyle.Render(message)
	default:
		return infoStyle.Render(message)
	}
}
