// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the countdown clock, its state, and an input
// prompt at the bottom of the terminal. Messages are printed above the
// rendered area via Program.Println / Printf, ensuring concurrent writes
// never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottotimer/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	clockRunStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#fde68a"))

	clockDoneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#fca5a5"))

	clockIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	clockPausedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Dimmed zinc for hints.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// Key is a single-keystroke shortcut forwarded to the application.
type Key int

const (
	KeyToggle     Key = iota // start, continue, or pause
	KeyRestart               // "+"
	KeyReset                 // "-"
	KeyMinuteUp              // up
	KeyMinuteDown            // down
	KeySecondUp              // shift+up
	KeySecondDown            // shift+down
)

// String returns the shortcut name used in logs.
func (k Key) String() string {
	switch k {
	case KeyToggle:
		return "toggle"
	case KeyRestart:
		return "restart"
	case KeyReset:
		return "reset"
	case KeyMinuteUp:
		return "minute_up"
	case KeyMinuteDown:
		return "minute_down"
	case KeySecondUp:
		return "second_up"
	case KeySecondDown:
		return "second_down"
	default:
		return "unknown"
	}
}

// Status is what the clock area shows.
type Status struct {
	Clock   string // MM:SS
	State   domain.TimerState
	Ringing bool
}

// StartLabel returns the label of the start action for a state.
func StartLabel(state domain.TimerState) string {
	switch state {
	case domain.StateRunning:
		return "Pause"
	case domain.StatePaused:
		return "Continue"
	default:
		return "Start"
	}
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], [UI.SetStatus] and read
// from [UI.InputChan] / [UI.KeyChan] at any time after
// [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	inputCh chan string
	keyCh   chan Key
	readyCh chan struct{}
	quitCh  chan struct{}
	started atomic.Bool
	done    atomic.Bool
}

// NewUI creates the display showing initial until the first SetStatus.
// Call Run() to start.
func NewUI(initial Status) *UI {
	u := &UI{
		inputCh: make(chan string, 16),
		keyCh:   make(chan Key, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
	u.program = tea.NewProgram(newModel(initial, u.inputCh, u.keyCh, u.readyCh, u.PrintUserInput))
	return u
}

// live reports whether output should go through the Bubble Tea program.
func (u *UI) live() bool {
	return u.started.Load() && !u.done.Load()
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.live() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
// The output is printed on its own line (a trailing newline in the
// format string will produce an extra blank line).
func (u *UI) Printf(format string, a ...interface{}) {
	if u.live() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// SetStatus updates the clock area. Thread-safe; dropped after quit.
func (u *UI) SetStatus(s Status) {
	if u.live() {
		u.program.Send(statusMsg(s))
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// KeyChan returns shortcut keystrokes.
func (u *UI) KeyChan() <-chan Key { return u.keyCh }

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("timer") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.live() {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	u.started.Store(true)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

// promptText is plain so the textinput width math stays correct;
// styled prompts add invisible ANSI bytes to the offset calculations.
const promptText = "timer> "

type model struct {
	input   textinput.Model
	inputCh chan<- string
	keyCh   chan<- Key
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback
	status  Status
	width   int
}

// Messages.
type statusMsg Status

func newModel(initial Status, inputCh chan<- string, keyCh chan<- Key, readyCh chan struct{}, echoFn func(string)) model {
	ti := textinput.New()
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Placeholder = "MM:SS or help"
	ti.CharLimit = 64
	ti.Width = 40 // updated on first WindowSizeMsg
	ti.Focus()

	m := model{
		input:   ti,
		inputCh: inputCh,
		keyCh:   keyCh,
		readyCh: readyCh,
		echoFn:  echoFn,
	}
	m.applyStatus(initial)
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

// editable reports whether the entry field accepts typing. It is
// read-only while the countdown runs.
func (m model) editable() bool {
	return m.status.State != domain.StateRunning
}

func (m *model) applyStatus(s Status) {
	m.status = s
	if m.editable() {
		m.input.Focus()
	} else {
		m.input.Blur()
		m.input.Reset()
	}
}

// sendKey forwards a shortcut without blocking the event loop.
func (m model) sendKey(k Key) {
	select {
	case m.keyCh <- k:
	default:
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
		if !m.editable() {
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case statusMsg:
		m.applyStatus(Status(msg))
		return m, tea.SetWindowTitle(m.titleStr())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes shortcuts. Single-character shortcuts only fire
// when the entry field is empty, so "+1m" can still be typed.
func (m *model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	empty := m.input.Value() == ""

	switch msg.Type {
	case tea.KeyCtrlC:
		return true, tea.Quit
	case tea.KeyEsc:
		m.sendKey(KeyToggle)
		return true, nil
	case tea.KeyUp:
		m.sendKey(KeyMinuteUp)
		return true, nil
	case tea.KeyDown:
		m.sendKey(KeyMinuteDown)
		return true, nil
	case tea.KeyShiftUp:
		m.sendKey(KeySecondUp)
		return true, nil
	case tea.KeyShiftDown:
		m.sendKey(KeySecondDown)
		return true, nil
	case tea.KeyEnter:
		v := m.input.Value()
		m.input.Reset()
		if strings.TrimSpace(v) == "" {
			m.sendKey(KeyToggle)
			return true, nil
		}
		select {
		case m.inputCh <- v:
		default:
			return true, nil
		}
		// Return a Cmd that prints the echo; this runs
		// outside Update so it won't deadlock on msgs.
		echoFn := m.echoFn
		return true, func() tea.Msg {
			echoFn(v)
			return nil
		}
	case tea.KeySpace:
		if empty || !m.editable() {
			m.sendKey(KeyToggle)
			return true, nil
		}
	case tea.KeyRunes:
		if !empty && m.editable() {
			return false, nil
		}
		switch msg.String() {
		case "+":
			m.sendKey(KeyRestart)
			return true, nil
		case "-":
			m.sendKey(KeyReset)
			return true, nil
		case "p":
			if !m.editable() {
				m.sendKey(KeyToggle)
				return true, nil
			}
		case "q":
			if !m.editable() {
				return true, tea.Quit
			}
		}
	}
	return false, nil
}

func (m model) titleStr() string {
	if m.status.Ringing || m.status.State == domain.StateExpired {
		return "OttoTimer — DONE!"
	}
	return "OttoTimer — " + m.status.Clock + " " + m.status.State.String()
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderBar())
	b.WriteByte('\n')

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	if m.editable() {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(secondaryStyle.Render(promptText + "running, [space] pause  [+] restart  [-] reset"))
	}
	return b.String()
}

func (m model) renderBar() string {
	clock := m.status.Clock
	if clock == "" {
		clock = "00:00"
	}

	var clockStr string
	switch {
	case m.status.Ringing || m.status.State == domain.StateExpired:
		clockStr = clockDoneStyle.Render(clock + "  TIME'S UP")
	case m.status.State == domain.StateRunning:
		clockStr = clockRunStyle.Render(clock)
	case m.status.State == domain.StatePaused:
		clockStr = clockPausedStyle.Render(clock)
	default:
		clockStr = clockIdleStyle.Render(clock)
	}

	parts := []string{
		clockStr,
		labelStyle.Render(m.status.State.String()),
		labelStyle.Render("[enter] " + StartLabel(m.status.State)),
		labelStyle.Render("[↑↓] min  [⇧↑↓] sec"),
	}
	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}
