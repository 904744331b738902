// Package command turns typed input into timer intents.
package command

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottotimer/internal/domain"
	"github.com/hammamikhairi/ottotimer/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// adjustPattern matches signed steps such as "+1m", "-5s", "+30" and "-2 min".
// A bare number is read as seconds.
var adjustPattern = regexp.MustCompile(`(?i)^([+-])\s*(\d{1,4})\s*(m|min|mins|minutes?|s|sec|secs|seconds?)?$`)

// adjustPrefixes rewrite worded steps ("add 1m", "sub 30s") into signed
// ones. On an empty prompt "+" and "-" are shortcuts, so typed adjustments
// usually start with a word.
var adjustPrefixes = []struct {
	word string
	sign string
}{
	{"adjust ", ""},
	{"add ", "+"},
	{"plus ", "+"},
	{"sub ", "-"},
	{"minus ", "-"},
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|go|resume|continue|s)$`), domain.IntentStart},
		{regexp.MustCompile(`(?i)^(pause|hold|wait|p)$`), domain.IntentPause},
		{regexp.MustCompile(`(?i)^(reset|zero|clear)$`), domain.IntentReset},
		{regexp.MustCompile(`(?i)^(restart|again|redo|r)$`), domain.IntentRestart},
		{regexp.MustCompile(`(?i)^(status|info|where)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. Anything containing a colon is
// treated as a time to set, so malformed times reach the engine and are
// reported as format errors rather than as unknown commands.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	if strings.Contains(trimmed, ":") {
		return &domain.Intent{Type: domain.IntentSetTime, Payload: trimmed}, nil
	}

	if m := adjustPattern.FindStringSubmatch(signedStep(trimmed)); m != nil {
		return adjustIntent(trimmed, m), nil
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent}, nil
		}
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// signedStep strips an adjust word, prefixing its sign when the remaining
// step is unsigned.
func signedStep(s string) string {
	lower := strings.ToLower(s)
	for _, p := range adjustPrefixes {
		if !strings.HasPrefix(lower, p.word) {
			continue
		}
		rest := strings.TrimSpace(s[len(p.word):])
		if rest != "" && rest[0] != '+' && rest[0] != '-' {
			if p.sign == "" {
				return "+" + rest
			}
			return p.sign + rest
		}
		return rest
	}
	return s
}

func adjustIntent(raw string, m []string) *domain.Intent {
	// The regex bounds the digits, so Atoi cannot fail.
	n, _ := strconv.Atoi(m[2])
	if m[1] == "-" {
		n = -n
	}

	intent := &domain.Intent{Type: domain.IntentAdjust, Payload: raw}
	if strings.HasPrefix(strings.ToLower(m[3]), "m") {
		intent.Minutes = n
	} else {
		intent.Seconds = n
	}
	return intent
}

// HelpText lists the commands the parser understands.
func HelpText() string {
	return strings.Join([]string{
		"MM:SS                set the time and start",
		"start | go           start or continue",
		"pause | p            pause",
		"reset                stop and zero the timer",
		"restart | r          run the last duration again",
		"add 1m | sub 5s      adjust while not running",
		"status               show the current state",
		"quit | q             leave",
		"",
		"space / enter        start, continue or pause",
		"+ / -                restart / reset (empty prompt)",
		"up / down            minute step",
		"shift+up / down      second step",
	}, "\n")
}
