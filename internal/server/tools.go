package server

import (
	"github.com/Iron-Ham/simdeck/internal/geometry"
)

// toolDefinitions returns every tool this server can expose, before
// configuration filtering. Order is stable so tools/list output is
// deterministic.
func toolDefinitions() []Tool {
	var tools []Tool
	tools = append(tools, deviceTools()...)
	tools = append(tools, uiTools()...)
	tools = append(tools, captureTools()...)
	tools = append(tools, appTools()...)
	return tools
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Caller session identifier. Each session holds at most one device.",
	}
}

func deviceTools() []Tool {
	return []Tool{
		{
			Name:        "device_start",
			Description: "Create and boot a fresh simulator device bound to the session. The session owns the device and device_destroy will delete it.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"device_type": map[string]any{
						"type":        "string",
						"description": "Device type keyword matched case-insensitively against the simulator catalog (e.g. 'iPhone', 'iPad Air'). Defaults to 'iPhone'.",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "device_attach",
			Description: "Bind the session to an already-booted simulator device without taking ownership. device_destroy will release it but leave it running.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"instance_id": map[string]any{
						"type":        "string",
						"description": "UDID of the booted simulator device to attach to.",
					},
				},
				"required": []string{"session_id", "instance_id"},
			},
		},
		{
			Name:        "device_destroy",
			Description: "Release the session's device. Owned devices are shut down and deleted; attached devices are left running. Any active recording is stopped first.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "device_list",
			Description: "List every active session and its device handle.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func uiTools() []Tool {
	orientations := make([]string, 0, len(geometry.Orientations()))
	for _, o := range geometry.Orientations() {
		orientations = append(orientations, string(o))
	}

	return []Tool{
		{
			Name:        "set_orientation",
			Description: "Override the orientation used to canonicalize accessibility frames for this session. 'auto' re-enables detection from the reported screen dimensions.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"orientation": map[string]any{
						"type":        "string",
						"enum":        orientations,
						"description": "Orientation to assume when rewriting frames.",
					},
				},
				"required": []string{"session_id", "orientation"},
			},
		},
		{
			Name:        "ui_describe_all",
			Description: "Return the full accessibility tree of the session's device. Frames are rewritten into the canonical portrait coordinate space.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "ui_describe_point",
			Description: "Return the accessibility element at a screen point. The result's frames are rewritten into the canonical portrait coordinate space.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"x": map[string]any{
						"type":        "number",
						"description": "X coordinate of the point, in the device's native screen space.",
					},
					"y": map[string]any{
						"type":        "number",
						"description": "Y coordinate of the point, in the device's native screen space.",
					},
				},
				"required": []string{"session_id", "x", "y"},
			},
		},
		{
			Name:        "ui_tap",
			Description: "Tap the session's device at a point. Coordinates are forwarded to the device as given.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"x": map[string]any{
						"type":        "number",
						"description": "X coordinate to tap.",
					},
					"y": map[string]any{
						"type":        "number",
						"description": "Y coordinate to tap.",
					},
					"duration": map[string]any{
						"type":        "number",
						"description": "Press duration in seconds. Omit for a plain tap; set for a long press.",
					},
				},
				"required": []string{"session_id", "x", "y"},
			},
		},
		{
			Name:        "ui_type",
			Description: "Type text on the session's device.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"text": map[string]any{
						"type":        "string",
						"description": "Text to type.",
					},
				},
				"required": []string{"session_id", "text"},
			},
		},
		{
			Name:        "ui_swipe",
			Description: "Swipe on the session's device from a start point to an end point. Coordinates are forwarded to the device as given.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"x_start": map[string]any{
						"type":        "number",
						"description": "X coordinate of the swipe start.",
					},
					"y_start": map[string]any{
						"type":        "number",
						"description": "Y coordinate of the swipe start.",
					},
					"x_end": map[string]any{
						"type":        "number",
						"description": "X coordinate of the swipe end.",
					},
					"y_end": map[string]any{
						"type":        "number",
						"description": "Y coordinate of the swipe end.",
					},
					"duration": map[string]any{
						"type":        "number",
						"description": "Swipe duration in seconds.",
					},
					"delta": map[string]any{
						"type":        "number",
						"description": "Distance in points between intermediate touch events.",
					},
				},
				"required": []string{"session_id", "x_start", "y_start", "x_end", "y_end"},
			},
		},
	}
}

func captureTools() []Tool {
	return []Tool{
		{
			Name:        "screenshot",
			Description: "Capture a screenshot of the session's device and save it to a file.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"output_path": map[string]any{
						"type":        "string",
						"description": "Destination file path. Defaults to a timestamped file in the configured output directory.",
					},
					"type": map[string]any{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "tiff", "bmp", "gif"},
						"description": "Image format. Defaults to png.",
					},
					"display": map[string]any{
						"type":        "string",
						"enum":        []string{"internal", "external"},
						"description": "Which display to capture on multi-display devices.",
					},
					"mask": map[string]any{
						"type":        "string",
						"enum":        []string{"ignored", "alpha", "black"},
						"description": "How to handle the non-rectangular screen mask.",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "record_video",
			Description: "Start recording the session's device screen to a video file. At most one recording per session; stop it with stop_recording.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"output_path": map[string]any{
						"type":        "string",
						"description": "Destination file path. Defaults to a timestamped .mp4 in the configured output directory.",
					},
					"codec": map[string]any{
						"type":        "string",
						"enum":        []string{"h264", "hevc"},
						"description": "Video codec. Defaults to h264.",
					},
					"display": map[string]any{
						"type":        "string",
						"enum":        []string{"internal", "external"},
						"description": "Which display to record on multi-display devices.",
					},
					"mask": map[string]any{
						"type":        "string",
						"enum":        []string{"ignored", "alpha", "black"},
						"description": "How to handle the non-rectangular screen mask.",
					},
				},
				"required": []string{"session_id"},
			},
		},
		{
			Name:        "stop_recording",
			Description: "Stop the session's active recording and finalize the video file.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
				},
				"required": []string{"session_id"},
			},
		},
	}
}

func appTools() []Tool {
	return []Tool{
		{
			Name:        "install_app",
			Description: "Install an app bundle on the session's device.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"app_path": map[string]any{
						"type":        "string",
						"description": "Path to the .app bundle to install.",
					},
				},
				"required": []string{"session_id", "app_path"},
			},
		},
		{
			Name:        "launch_app",
			Description: "Launch an installed app on the session's device.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"session_id": sessionIDProperty(),
					"bundle_id": map[string]any{
						"type":        "string",
						"description": "Bundle identifier of the app to launch.",
					},
					"terminate_running": map[string]any{
						"type":        "boolean",
						"description": "Terminate a running instance of the app before launching.",
					},
				},
				"required": []string{"session_id", "bundle_id"},
			},
		},
	}
}
