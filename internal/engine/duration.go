package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hammamikhairi/ottotimer/internal/domain"
)

// maxSeconds is the largest whole-second count a time.Duration can hold.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// MaxDuration is the ceiling every parsed or adjusted duration is clamped to.
const MaxDuration = time.Duration(maxSeconds) * time.Second

// ParseMMSS parses "MM:SS" into a duration of MM*60+SS seconds.
// Both fields must be non-empty decimal digit sequences. Seconds of 60 or
// more are accepted as raw seconds and no upper bound is enforced; values
// too large for a time.Duration saturate at MaxDuration.
func ParseMMSS(text string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, text)
	}

	minutes, err := parseDigits(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: minutes %q", domain.ErrInvalidFormat, parts[0])
	}
	seconds, err := parseDigits(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: seconds %q", domain.ErrInvalidFormat, parts[1])
	}
	return fromMinSec(minutes, seconds), nil
}

// parseDigits accepts only [0-9]+. Out-of-range values saturate.
func parseDigits(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty field")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit %q", c)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64, nil
	}
	return n, err
}

// fromMinSec converts a non-negative minutes/seconds pair with saturation.
func fromMinSec(minutes, seconds int64) time.Duration {
	if minutes > maxSeconds/60 {
		return MaxDuration
	}
	total := minutes * 60
	if seconds > maxSeconds-total {
		return MaxDuration
	}
	return time.Duration(total+seconds) * time.Second
}

// FormatMMSS renders d as zero-padded "MM:SS", truncating sub-second
// remainders. Minutes are not wrapped into hours.
func FormatMMSS(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// AdjustMMSS adds the deltas to the minutes/seconds pair shown in text and
// returns the normalized "MM:SS" result.
//
// Unparsable text counts as 0:0; a field that fails to parse keeps whatever
// was read before it. Seconds of 60 or more carry into minutes. Negative
// seconds borrow one minute at a time and clamp to 0 once no minutes are
// left. Minutes never go below 0. Results beyond MaxDuration saturate.
func AdjustMMSS(text string, minutesDelta, secondsDelta int) string {
	minutes, seconds := splitLenient(text)

	m := minutes + clampField(int64(minutesDelta))
	s := seconds + clampField(int64(secondsDelta))

	if s >= 60 {
		m += s / 60
		s %= 60
	}
	if s < 0 {
		borrow := (-s + 59) / 60
		if m >= borrow {
			m -= borrow
			s += borrow * 60
		} else {
			m, s = 0, 0
		}
	}
	if m < 0 {
		m = 0
	}
	if m > maxSeconds/60 || m*60+s > maxSeconds {
		return FormatMMSS(MaxDuration)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// splitLenient reads the first two colon-separated integer fields of text.
// Each field is clamped to ±maxSeconds so the arithmetic above cannot
// overflow.
func splitLenient(text string) (minutes, seconds int64) {
	if text == "" || !strings.Contains(text, ":") {
		return 0, 0
	}
	parts := strings.Split(text, ":")
	m, ok := parseLenient(parts[0])
	if !ok {
		return 0, 0
	}
	s, ok := parseLenient(parts[1])
	if !ok {
		return m, 0
	}
	return m, s
}

// parseLenient parses a signed decimal field, saturating out-of-range values.
func parseLenient(field string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return clampField(n), true
}

func clampField(n int64) int64 {
	switch {
	case n > maxSeconds:
		return maxSeconds
	case n < -maxSeconds:
		return -maxSeconds
	}
	return n
}
