package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art followed by any hint lines, each
// horizontally centred for the current terminal width.
func RenderBanner(hints ...string) string {
	return renderBanner(termWidth(), hints...)
}

func renderBanner(width int, hints ...string) string {
	art := strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n")

	var b strings.Builder
	writeCentred(&b, width, art)
	if len(hints) > 0 {
		b.WriteByte('\n')
		writeCentred(&b, width, hints)
	}
	return b.String()
}

// writeCentred pads every line by the same amount so multi-line art keeps
// its shape.
func writeCentred(b *strings.Builder, width int, lines []string) {
	maxW := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxW {
			maxW = n
		}
	}

	pad := 0
	if width > maxW {
		pad = (width - maxW) / 2
	}
	for _, l := range lines {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
