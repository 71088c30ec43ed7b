// Package util holds small string helpers shared by the TUI and the
// command-line output paths.
package util

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates a string to maxLen runes, appending "..." when
// it was cut. Plain text only; styled strings must go through
// TruncateANSI so escape sequences are not severed mid-run.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI truncates a string to maxWidth visual columns, appending
// "..." when it was cut. Escape sequences and wide characters are
// measured by their rendered width, so styled rows stay aligned.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail against the final width
	return ansi.Truncate(s, maxWidth, "...")
}

// PadRight pads a plain string with spaces to the given rune width.
// Strings already wider than width are returned unchanged; pad before
// styling, or the escape bytes will be counted as column width.
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
