package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validThemeYAML = `name: Midnight
version: "1"
colors:
  primary: "#60A5FA"
  success: "#22C55E"
  warning: "#FBBF24"
  error: "#EF4444"
  muted: "#6B7280"
  text: "#E5E7EB"
`

func TestHexColorRegex(t *testing.T) {
	tests := []struct {
		name     string
		color    string
		expected bool
	}{
		{"valid 6-digit hex", "#A78BFA", true},
		{"valid 6-digit hex lowercase", "#a78bfa", true},
		{"valid 3-digit hex", "#ABC", true},
		{"invalid - no hash", "A78BFA", false},
		{"invalid - too short", "#AB", false},
		{"invalid - 4 digits", "#ABCD", false},
		{"invalid - bad characters", "#GHIJKL", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hexColorRegex.MatchString(tt.color)
			if got != tt.expected {
				t.Errorf("hexColorRegex.MatchString(%q) = %v, want %v", tt.color, got, tt.expected)
			}
		})
	}
}

func TestThemeValidate(t *testing.T) {
	valid := func() Theme {
		return Theme{
			Name:    "Test Theme",
			Version: "1",
			Colors: ThemeColors{
				Primary: "#A78BFA",
				Success: "#10B981",
				Warning: "#F59E0B",
				Error:   "#F87171",
				Muted:   "#9CA3AF",
				Text:    "#F9FAFB",
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Theme)
		expectErr bool
		errMsg    string
	}{
		{
			name:   "valid theme",
			mutate: func(*Theme) {},
		},
		{
			name:      "missing name",
			mutate:    func(th *Theme) { th.Name = "" },
			expectErr: true,
			errMsg:    "theme name is required",
		},
		{
			name:      "missing version",
			mutate:    func(th *Theme) { th.Version = "" },
			expectErr: true,
			errMsg:    "theme version is required",
		},
		{
			name:      "unsupported version",
			mutate:    func(th *Theme) { th.Version = "2" },
			expectErr: true,
			errMsg:    "unsupported theme version",
		},
		{
			name:      "missing required color",
			mutate:    func(th *Theme) { th.Colors.Muted = "" },
			expectErr: true,
			errMsg:    "color 'muted' is required",
		},
		{
			name:      "invalid hex color format",
			mutate:    func(th *Theme) { th.Colors.Primary = "purple" },
			expectErr: true,
			errMsg:    "invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := valid()
			tt.mutate(&theme)

			err := theme.Validate()
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte(validThemeYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	theme, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme() error = %v", err)
	}
	if theme.Name != "Midnight" {
		t.Errorf("Name = %q, want %q", theme.Name, "Midnight")
	}
	if theme.Colors.Primary != "#60A5FA" {
		t.Errorf("Colors.Primary = %q, want %q", theme.Colors.Primary, "#60A5FA")
	}
}

func TestLoadThemeMissingFile(t *testing.T) {
	_, err := LoadTheme(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadTheme() error = %v, want os.ErrNotExist in chain", err)
	}
}

func TestLoadThemeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "not yaml",
			content: "{{{",
			errMsg:  "parsing theme file",
		},
		{
			name:    "missing colors",
			content: "name: Bare\nversion: \"1\"\n",
			errMsg:  "invalid theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "theme.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := LoadTheme(path)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestThemeApply(t *testing.T) {
	t.Cleanup(func() { DefaultTheme().Apply() })

	theme := Theme{
		Name:    "Test Theme",
		Version: "1",
		Colors: ThemeColors{
			Primary: "#112233",
			Success: "#10B981",
			Warning: "#F59E0B",
			Error:   "#F87171",
			Muted:   "#9CA3AF",
			Text:    "#445566",
		},
	}
	theme.Apply()

	if got := Title.GetForeground(); got != primaryColor {
		t.Errorf("Title foreground = %v, want %v", got, primaryColor)
	}
	if string(primaryColor) != "#112233" {
		t.Errorf("primaryColor = %q, want %q", primaryColor, "#112233")
	}
	if string(textColor) != "#445566" {
		t.Errorf("textColor = %q, want %q", textColor, "#445566")
	}
}

func TestDefaultThemeIsValid(t *testing.T) {
	if err := DefaultTheme().Validate(); err != nil {
		t.Errorf("DefaultTheme().Validate() = %v, want nil", err)
	}
}
