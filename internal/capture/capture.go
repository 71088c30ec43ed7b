// Package capture manages screenshot and video output for simulator
// devices. Screenshots are one-shot simctl calls; video recordings are
// long-running child processes tracked per session and finalized with
// SIGINT, escalating to SIGKILL when a recording refuses to stop.
package capture

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout names output files down to the second, matching one
// capture per session per second at most.
const timestampLayout = "20060102-150405"

// ScreenshotPath returns the default output path for a session screenshot.
// The extension follows the image type; empty means png.
func ScreenshotPath(dir, sessionID, imageType string) string {
	ext := strings.ToLower(imageType)
	switch ext {
	case "":
		ext = "png"
	case "jpeg":
		ext = "jpg"
	}
	return filepath.Join(dir, captureName(sessionID, ext))
}

// VideoPath returns the default output path for a session recording.
func VideoPath(dir, sessionID string) string {
	return filepath.Join(dir, captureName(sessionID, "mp4"))
}

func captureName(sessionID, ext string) string {
	return fmt.Sprintf("simdeck-%s-%s.%s", sanitize(sessionID), time.Now().Format(timestampLayout), ext)
}

// sanitize keeps session identifiers filesystem-safe. Anything outside
// [A-Za-z0-9._-] becomes a dash.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
