// Package geometry implements the rotation math that maps rectangles between
// a device's currently reported coordinate frame and the canonical portrait
// frame. Everything here is pure: no registry access, no I/O, no state.
package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Orientation describes how a device is rotated relative to portrait.
// Auto is a resolution policy rather than a physical rotation: it infers
// the rotation from the reported root dimensions on every query.
type Orientation string

const (
	// OrientationAuto infers the rotation from the reported screen
	// dimensions (width > height implies LandscapeRight).
	OrientationAuto Orientation = "auto"
	// OrientationPortrait is the canonical frame; transforms are identity.
	OrientationPortrait Orientation = "portrait"
	// OrientationLandscapeRight is a 90° clockwise rotation of the device.
	OrientationLandscapeRight Orientation = "landscape_right"
	// OrientationLandscapeLeft is a 90° counter-clockwise rotation.
	OrientationLandscapeLeft Orientation = "landscape_left"
	// OrientationUpsideDown is a 180° rotation.
	OrientationUpsideDown Orientation = "upside_down"
)

// Orientations returns every accepted orientation value, Auto included.
func Orientations() []Orientation {
	return []Orientation{
		OrientationAuto,
		OrientationPortrait,
		OrientationLandscapeRight,
		OrientationLandscapeLeft,
		OrientationUpsideDown,
	}
}

// ParseOrientation converts a user-supplied string into an Orientation.
// Matching is case-insensitive and returns an error naming the valid values.
func ParseOrientation(s string) (Orientation, error) {
	candidate := Orientation(strings.ToLower(strings.TrimSpace(s)))
	for _, o := range Orientations() {
		if candidate == o {
			return o, nil
		}
	}

	valid := make([]string, 0, len(Orientations()))
	for _, o := range Orientations() {
		valid = append(valid, string(o))
	}
	return "", fmt.Errorf("invalid orientation %q (valid values: %s)", s, strings.Join(valid, ", "))
}

// String returns the wire form of the orientation.
func (o Orientation) String() string {
	return string(o)
}

// Effective resolves Auto against the reported root dimensions and returns
// the orientation the transform should actually use. Explicit overrides are
// returned verbatim; they exist precisely so a caller can force-correct a
// rotation that reported dimensions cannot disambiguate (LandscapeLeft,
// LandscapeRight and UpsideDown can all report the same width/height).
func (o Orientation) Effective(screen Size) Orientation {
	if o != OrientationAuto {
		return o
	}
	if screen.Width > screen.Height {
		return OrientationLandscapeRight
	}
	return OrientationPortrait
}

// Inverse returns the orientation whose transform undoes this one.
// LandscapeRight and LandscapeLeft invert each other; Portrait and
// UpsideDown are their own inverses. The inverse transform must be applied
// with the root dimensions of its own input frame (width and height swap
// under the landscape rotations).
func (o Orientation) Inverse() Orientation {
	switch o {
	case OrientationLandscapeRight:
		return OrientationLandscapeLeft
	case OrientationLandscapeLeft:
		return OrientationLandscapeRight
	default:
		return o
	}
}

// Size holds the reported dimensions of a root screen element.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Swapped returns the size with width and height exchanged, which is the
// root size of the frame produced by either landscape transform.
func (s Size) Swapped() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// Rect is a rectangle in either the device frame or the canonical frame.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Degenerate reports whether the rectangle carries no extent at all.
// Degenerate frames pass through the transform untouched.
func (r Rect) Degenerate() bool {
	return r.Width == 0 && r.Height == 0
}

// String renders the rectangle in the accessibility-frame literal form,
// e.g. "{{0.0, 0.0}, {390.0, 844.0}}".
func (r Rect) String() string {
	return fmt.Sprintf("{{%s, %s}, {%s, %s}}",
		axCoord(r.X), axCoord(r.Y), axCoord(r.Width), axCoord(r.Height))
}

// axCoord formats a coordinate with at least one decimal place, matching
// the accessibility layer's own serialization of frames.
func axCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Apply maps a rectangle expressed in the device's currently reported frame
// into the canonical portrait frame. The screen argument is the root
// element's reported size in that same device frame, and the orientation
// must already be effective (resolve Auto with Effective first; Auto and
// Portrait both apply the identity here).
func Apply(r Rect, screen Size, o Orientation) Rect {
	switch o {
	case OrientationLandscapeRight:
		return Rect{
			X:      r.Y,
			Y:      screen.Width - r.X - r.Width,
			Width:  r.Height,
			Height: r.Width,
		}
	case OrientationLandscapeLeft:
		return Rect{
			X:      screen.Height - r.Y - r.Height,
			Y:      r.X,
			Width:  r.Height,
			Height: r.Width,
		}
	case OrientationUpsideDown:
		return Rect{
			X:      screen.Width - r.X - r.Width,
			Y:      screen.Height - r.Y - r.Height,
			Width:  r.Width,
			Height: r.Height,
		}
	default:
		return r
	}
}
