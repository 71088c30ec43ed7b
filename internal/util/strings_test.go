package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short name unchanged", "iPhone 16 Pro", 28, "iPhone 16 Pro"},
		{"exact width unchanged", "iPad Air", 8, "iPad Air"},
		{"long name truncated", "iPad Pro 13-inch (M4) 16GB Cellular", 20, "iPad Pro 13-inch ..."},
		{"width too small for content", "iPhone", 3, "..."},
		{"zero width", "iPhone", 0, "..."},
		{"empty input", "", 10, ""},
		{"wide runes counted once each", "日本語のシミュレータ", 6, "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("iPhone 16 Pro Max Booted")

	t.Run("plain string clipped to width", func(t *testing.T) {
		got := TruncateANSI("iPhone 16 Pro Max", 10)
		if got != "iPhone ..." {
			t.Errorf("got %q, want %q", got, "iPhone ...")
		}
	})

	t.Run("styled string keeps rendered width", func(t *testing.T) {
		got := TruncateANSI(styled, 12)
		if w := lipgloss.Width(got); w > 12 {
			t.Errorf("rendered width = %d, want <= 12", w)
		}
	})

	t.Run("styled string under width unchanged", func(t *testing.T) {
		if got := TruncateANSI(styled, 80); got != styled {
			t.Errorf("string was modified below the limit")
		}
	})

	t.Run("tiny width collapses to ellipsis", func(t *testing.T) {
		if got := TruncateANSI("iPhone", 2); got != "..." {
			t.Errorf("got %q, want ...", got)
		}
	})
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"pads short string", "iPad", 8, "iPad    "},
		{"exact width untouched", "iPhone", 6, "iPhone"},
		{"wider than width untouched", "iPhone 16 Pro", 6, "iPhone 16 Pro"},
		{"empty input padded", "", 3, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PadRight(tt.input, tt.width); got != tt.want {
				t.Errorf("PadRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}

	t.Run("unicode width counts runes", func(t *testing.T) {
		got := PadRight("日本", 4)
		if !strings.HasSuffix(got, "  ") || len([]rune(got)) != 4 {
			t.Errorf("PadRight unicode = %q, want two trailing spaces", got)
		}
	})
}
