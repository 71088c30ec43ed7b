package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor lipgloss.Color
	successColor lipgloss.Color
	warningColor lipgloss.Color
	errorColor   lipgloss.Color
	mutedColor   lipgloss.Color
	textColor    lipgloss.Color
)

// Styles are vars rather than consts so a custom theme can rebuild them
// before the program starts.
var (
	// Title renders the header line.
	Title lipgloss.Style

	// Subtitle renders the line under the header.
	Subtitle lipgloss.Style

	// Selected renders the row under the cursor.
	Selected lipgloss.Style

	// Item renders unselected rows.
	Item lipgloss.Style

	// Muted renders secondary details like UDIDs and runtimes.
	Muted lipgloss.Style

	// ErrorText renders failures.
	ErrorText lipgloss.Style

	// StatusText renders transient action feedback.
	StatusText lipgloss.Style

	// Help renders the key binding bar.
	Help lipgloss.Style

	// HelpKey highlights key names inside the help bar.
	HelpKey lipgloss.Style

	// Spinner colors the loading spinner.
	Spinner lipgloss.Style

	statusBooted       lipgloss.Style
	statusShutdown     lipgloss.Style
	statusTransitional lipgloss.Style
)

func init() {
	DefaultTheme().Apply()
}

// rebuildStyles derives every style from the current palette.
func rebuildStyles() {
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor)

	Subtitle = lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true)

	Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(textColor)

	Item = lipgloss.NewStyle().
		Foreground(textColor)

	Muted = lipgloss.NewStyle().
		Foreground(mutedColor)

	ErrorText = lipgloss.NewStyle().
		Bold(true).
		Foreground(errorColor)

	StatusText = lipgloss.NewStyle().
		Foreground(warningColor)

	Help = lipgloss.NewStyle().
		Foreground(mutedColor)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	Spinner = lipgloss.NewStyle().
		Foreground(primaryColor)

	statusBooted = lipgloss.NewStyle().Foreground(successColor)
	statusShutdown = lipgloss.NewStyle().Foreground(mutedColor)
	statusTransitional = lipgloss.NewStyle().Foreground(warningColor)
}

// cursorMarker is the selection cursor prefix.
func cursorMarker() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor).
		Render("› ")
}
