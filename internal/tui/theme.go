package tui

import (
	"fmt"
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// themeFileVersion is the theme file format version this build reads.
const themeFileVersion = "1"

// Theme is a custom color palette for the device browser, loaded from YAML.
type Theme struct {
	// Name is the theme's display name (e.g., "Solarized Dark")
	Name string `yaml:"name"`
	// Version is the theme file format version (currently "1")
	Version string `yaml:"version"`
	// Colors defines the color palette
	Colors ThemeColors `yaml:"colors"`
}

// ThemeColors contains all color definitions for a theme.
// All colors should be hex format (#RRGGBB or #RGB).
type ThemeColors struct {
	Primary string `yaml:"primary"`
	Success string `yaml:"success"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`
	Muted   string `yaml:"muted"`
	Text    string `yaml:"text"`
}

// hexColorRegex validates hex color format.
var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// DefaultTheme returns the built-in palette.
func DefaultTheme() *Theme {
	return &Theme{
		Name:    "simdeck",
		Version: themeFileVersion,
		Colors: ThemeColors{
			Primary: "#A78BFA", // purple
			Success: "#10B981", // green for booted
			Warning: "#F59E0B", // amber for transitional states
			Error:   "#F87171",
			Muted:   "#9CA3AF",
			Text:    "#F9FAFB",
		},
	}
}

// LoadTheme loads a theme from a YAML file. The os.ErrNotExist from a
// missing file is left unwrapped in the chain so callers can treat an
// absent theme as "use the default".
func LoadTheme(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}

	var theme Theme
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}

	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}

	return &theme, nil
}

// Validate checks that the theme file is well-formed.
func (t *Theme) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("theme name is required")
	}

	if t.Version == "" {
		return fmt.Errorf("theme version is required")
	}

	if t.Version != themeFileVersion {
		return fmt.Errorf("unsupported theme version: %s (supported: %s)", t.Version, themeFileVersion)
	}

	requiredColors := map[string]string{
		"primary": t.Colors.Primary,
		"success": t.Colors.Success,
		"warning": t.Colors.Warning,
		"error":   t.Colors.Error,
		"muted":   t.Colors.Muted,
		"text":    t.Colors.Text,
	}

	for name, color := range requiredColors {
		if color == "" {
			return fmt.Errorf("color '%s' is required", name)
		}
		if !hexColorRegex.MatchString(color) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", name, color)
		}
	}

	return nil
}

// Apply installs the theme's palette and rebuilds the package styles.
// Styles are package state, so call this before the program starts.
func (t *Theme) Apply() {
	primaryColor = lipgloss.Color(t.Colors.Primary)
	successColor = lipgloss.Color(t.Colors.Success)
	warningColor = lipgloss.Color(t.Colors.Warning)
	errorColor = lipgloss.Color(t.Colors.Error)
	mutedColor = lipgloss.Color(t.Colors.Muted)
	textColor = lipgloss.Color(t.Colors.Text)
	rebuildStyles()
}
