package geometry

import (
	"encoding/json"
	"fmt"
)

// Accessibility trees arrive as raw JSON from the automation CLI. The
// rewrite deliberately avoids binding the whole document to structs: only
// "frame", "AXFrame" and "children" are interpreted, every other field is
// carried through byte-for-byte equivalent. Roots may be a single object or
// an array whose first element is the root screen node.

// RootSize extracts the root element's frame dimensions from a raw tree.
// The boolean is false when no root frame can be located, in which case the
// tree cannot be transformed and should be returned to the caller as-is.
func RootSize(raw []byte) (Size, bool) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Size{}, false
	}
	root, ok := rootNode(doc)
	if !ok {
		return Size{}, false
	}
	f, ok := frameOf(root)
	if !ok {
		return Size{}, false
	}
	return Size{Width: f.Width, Height: f.Height}, true
}

// CanonicalizeTree rewrites every frame in a raw accessibility tree into
// the canonical portrait coordinate space and annotates each rewritten node
// with the frame's string serialization under "AXFrame". The stored
// orientation may be Auto, which is resolved against the tree's own root
// dimensions. Trees without a locatable root frame are returned unchanged.
func CanonicalizeTree(raw []byte, stored Orientation) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing accessibility tree: %w", err)
	}

	root, ok := rootNode(doc)
	if !ok {
		return raw, nil
	}
	f, ok := frameOf(root)
	if !ok {
		return raw, nil
	}

	screen := Size{Width: f.Width, Height: f.Height}
	eff := stored.Effective(screen)

	switch v := doc.(type) {
	case map[string]any:
		rewriteNode(v, screen, eff)
	case []any:
		for _, el := range v {
			if node, ok := el.(map[string]any); ok {
				rewriteNode(node, screen, eff)
			}
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing accessibility tree: %w", err)
	}
	return out, nil
}

// CanonicalizeNode rewrites a single element (typically the result of a
// point query) and any children it carries, using externally supplied root
// dimensions. The stored orientation may be Auto.
func CanonicalizeNode(raw []byte, screen Size, stored Orientation) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing accessibility element: %w", err)
	}

	eff := stored.Effective(screen)
	switch v := doc.(type) {
	case map[string]any:
		rewriteNode(v, screen, eff)
	case []any:
		for _, el := range v {
			if node, ok := el.(map[string]any); ok {
				rewriteNode(node, screen, eff)
			}
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing accessibility element: %w", err)
	}
	return out, nil
}

// rewriteNode transforms the node's own frame and recurses into children.
// Degenerate frames (zero width and zero height) are left untouched so
// placeholder elements keep their literal coordinates.
func rewriteNode(node map[string]any, screen Size, eff Orientation) {
	if f, ok := frameOf(node); ok && !f.Degenerate() {
		nf := Apply(f, screen, eff)
		node["frame"] = map[string]any{
			"x":      nf.X,
			"y":      nf.Y,
			"width":  nf.Width,
			"height": nf.Height,
		}
		node["AXFrame"] = nf.String()
	}

	kids, ok := node["children"].([]any)
	if !ok {
		return
	}
	for _, k := range kids {
		if child, ok := k.(map[string]any); ok {
			rewriteNode(child, screen, eff)
		}
	}
}

// rootNode returns the document's root element: the object itself, or the
// first object of a top-level array.
func rootNode(doc any) (map[string]any, bool) {
	switch v := doc.(type) {
	case map[string]any:
		return v, true
	case []any:
		for _, el := range v {
			if node, ok := el.(map[string]any); ok {
				return node, true
			}
		}
	}
	return nil, false
}

// frameOf reads a node's "frame" object. Missing coordinate keys default to
// zero; a missing or malformed frame reports false.
func frameOf(node map[string]any) (Rect, bool) {
	raw, ok := node["frame"].(map[string]any)
	if !ok {
		return Rect{}, false
	}
	return Rect{
		X:      numField(raw, "x"),
		Y:      numField(raw, "y"),
		Width:  numField(raw, "width"),
		Height: numField(raw, "height"),
	}, true
}

func numField(m map[string]any, key string) float64 {
	v, ok := m[key].(float64)
	if !ok {
		return 0
	}
	return v
}
