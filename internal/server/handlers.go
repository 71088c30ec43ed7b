package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/simdeck/internal/capture"
	"github.com/Iron-Ham/simdeck/internal/device"
	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/geometry"
	"github.com/Iron-Ham/simdeck/internal/simctl"
)

// decodeArgs binds raw tool arguments to the handler's params struct.
// Absent arguments bind everything to zero values; handlers check their
// own required fields.
func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// resolveSession maps a session id to its device handle. The second return
// is non-nil on failure and is the tool result to send back.
func (s *Server) resolveSession(sessionID string) (device.Handle, *ToolResult) {
	h, err := s.manager.Resolve(sessionID)
	if err != nil {
		return device.Handle{}, failureResult(err)
	}
	return h, nil
}

func (s *Server) handleDeviceStart(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID  string `json:"session_id"`
		DeviceType string `json:"device_type"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	res, err := s.manager.Start(ctx, p.SessionID, p.DeviceType)
	if err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":  res.SessionID,
		"instance_id": res.Handle.InstanceID,
		"name":        res.Handle.DisplayName,
		"device_type": res.DeviceType,
		"runtime":     res.Runtime,
		"owned":       true,
	})
}

func (s *Server) handleDeviceAttach(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID  string `json:"session_id"`
		InstanceID string `json:"instance_id"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	h, err := s.manager.Attach(ctx, p.SessionID, p.InstanceID)
	if err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":  p.SessionID,
		"instance_id": h.InstanceID,
		"name":        h.DisplayName,
		"owned":       false,
	})
}

func (s *Server) handleDeviceDestroy(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	// An active recording holds a child process on the device; stop it
	// before the device goes away so the video file gets finalized.
	var recordingPath string
	if rec, err := s.recorder.Stop(p.SessionID); err == nil {
		recordingPath = rec.Path
	} else if !errors.Is(err, errors.ErrNoActiveRecording) {
		s.logger.Warn("could not stop recording during destroy",
			"session_id", p.SessionID, "error", err)
	}

	h, err := s.manager.Destroy(ctx, p.SessionID)
	if err != nil {
		if h.InstanceID == "" {
			return failureResult(err)
		}
		// The session is released even when simulator teardown fails.
		return errorResult("device %s released, but teardown failed: %v", h.InstanceID, err)
	}

	out := map[string]any{
		"session_id":  p.SessionID,
		"instance_id": h.InstanceID,
		"name":        h.DisplayName,
		"owned":       h.Owned,
		"destroyed":   h.Owned,
	}
	if recordingPath != "" {
		out["recording_path"] = recordingPath
	}
	return jsonResult(out)
}

func (s *Server) handleDeviceList(_ context.Context, _ json.RawMessage) *ToolResult {
	entries := s.manager.List()
	sessions := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		sessions = append(sessions, map[string]any{
			"session_id":  e.SessionID,
			"instance_id": e.Handle.InstanceID,
			"name":        e.Handle.DisplayName,
			"owned":       e.Handle.Owned,
			"orientation": e.Handle.Orientation.String(),
		})
	}
	return jsonResult(map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleSetOrientation(_ context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID   string `json:"session_id"`
		Orientation string `json:"orientation"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	o, err := geometry.ParseOrientation(p.Orientation)
	if err != nil {
		return failureResult(err)
	}
	if err := s.manager.SetOrientation(p.SessionID, o); err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":  p.SessionID,
		"orientation": o.String(),
	})
}

func (s *Server) handleDescribeAll(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}
	raw, err := s.auto.DescribeAll(ctx, h.InstanceID)
	if err != nil {
		return failureResult(err)
	}
	out, err := geometry.CanonicalizeTree(raw, h.Orientation)
	if err != nil {
		return failureResult(err)
	}
	return textResult(string(out))
}

func (s *Server) handleDescribePoint(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string   `json:"session_id"`
		X         *float64 `json:"x"`
		Y         *float64 `json:"y"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if p.X == nil || p.Y == nil {
		return errorResult("x and y are required")
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}

	// The screen dimensions steer the coordinate transform and can change
	// under rotation, so they are re-read for every point query rather
	// than cached on the handle.
	tree, err := s.auto.DescribeAll(ctx, h.InstanceID)
	if err != nil {
		return failureResult(err)
	}
	screen, ok := geometry.RootSize(tree)

	raw, err := s.auto.DescribePoint(ctx, h.InstanceID, *p.X, *p.Y)
	if err != nil {
		return failureResult(err)
	}
	if !ok {
		// No root frame to size the transform against; return the
		// element untouched, matching the whole-tree behavior.
		return textResult(string(raw))
	}
	out, err := geometry.CanonicalizeNode(raw, screen, h.Orientation)
	if err != nil {
		return failureResult(err)
	}
	return textResult(string(out))
}

func (s *Server) handleTap(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string   `json:"session_id"`
		X         *float64 `json:"x"`
		Y         *float64 `json:"y"`
		Duration  float64  `json:"duration"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if p.X == nil || p.Y == nil {
		return errorResult("x and y are required")
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}
	if err := s.auto.Tap(ctx, h.InstanceID, *p.X, *p.Y, secondsToDuration(p.Duration)); err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id": p.SessionID,
		"tapped":     map[string]any{"x": *p.X, "y": *p.Y},
	})
}

func (s *Server) handleType(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string  `json:"session_id"`
		Text      *string `json:"text"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if p.Text == nil {
		return errorResult("text is required")
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}
	if err := s.auto.Type(ctx, h.InstanceID, *p.Text); err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id": p.SessionID,
		"typed":      len(*p.Text),
	})
}

func (s *Server) handleSwipe(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string   `json:"session_id"`
		XStart    *float64 `json:"x_start"`
		YStart    *float64 `json:"y_start"`
		XEnd      *float64 `json:"x_end"`
		YEnd      *float64 `json:"y_end"`
		Duration  float64  `json:"duration"`
		Delta     float64  `json:"delta"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if p.XStart == nil || p.YStart == nil || p.XEnd == nil || p.YEnd == nil {
		return errorResult("x_start, y_start, x_end and y_end are required")
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}
	err := s.auto.Swipe(ctx, h.InstanceID,
		*p.XStart, *p.YStart, *p.XEnd, *p.YEnd,
		secondsToDuration(p.Duration), p.Delta)
	if err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id": p.SessionID,
		"from":       map[string]any{"x": *p.XStart, "y": *p.YStart},
		"to":         map[string]any{"x": *p.XEnd, "y": *p.YEnd},
	})
}

func (s *Server) handleScreenshot(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID  string `json:"session_id"`
		OutputPath string `json:"output_path"`
		Type       string `json:"type"`
		Display    string `json:"display"`
		Mask       string `json:"mask"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}

	path := p.OutputPath
	if path == "" {
		path = capture.ScreenshotPath(s.cfg.ResolveOutputDir(), p.SessionID, p.Type)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errorResult("creating output directory: %v", err)
	}

	opts := simctl.ScreenshotOptions{Type: p.Type, Display: p.Display, Mask: p.Mask}
	if err := s.sim.Screenshot(ctx, h.InstanceID, path, opts); err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":  p.SessionID,
		"instance_id": h.InstanceID,
		"path":        path,
	})
}

func (s *Server) handleRecordVideo(_ context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID  string `json:"session_id"`
		OutputPath string `json:"output_path"`
		Codec      string `json:"codec"`
		Display    string `json:"display"`
		Mask       string `json:"mask"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}

	path := p.OutputPath
	if path == "" {
		path = capture.VideoPath(s.cfg.ResolveOutputDir(), p.SessionID)
	}

	opts := simctl.RecordOptions{Codec: p.Codec, Display: p.Display, Mask: p.Mask}
	rec, err := s.recorder.Start(p.SessionID, h.InstanceID, path, opts)
	if err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":  p.SessionID,
		"instance_id": rec.InstanceID,
		"path":        rec.Path,
		"started_at":  rec.StartedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleStopRecording(_ context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}

	rec, err := s.recorder.Stop(p.SessionID)
	if err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":       p.SessionID,
		"instance_id":      rec.InstanceID,
		"path":             rec.Path,
		"duration_seconds": rec.Duration().Round(time.Millisecond).Seconds(),
	})
}

func (s *Server) handleInstallApp(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID string `json:"session_id"`
		AppPath   string `json:"app_path"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if p.AppPath == "" {
		return errorResult("app_path is required")
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}
	if err := s.sim.InstallApp(ctx, h.InstanceID, p.AppPath); err != nil {
		return failureResult(err)
	}
	return jsonResult(map[string]any{
		"session_id":  p.SessionID,
		"instance_id": h.InstanceID,
		"app_path":    p.AppPath,
		"installed":   true,
	})
}

func (s *Server) handleLaunchApp(ctx context.Context, args json.RawMessage) *ToolResult {
	var p struct {
		SessionID        string `json:"session_id"`
		BundleID         string `json:"bundle_id"`
		TerminateRunning bool   `json:"terminate_running"`
	}
	if err := decodeArgs(args, &p); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if p.BundleID == "" {
		return errorResult("bundle_id is required")
	}

	h, fail := s.resolveSession(p.SessionID)
	if fail != nil {
		return fail
	}
	pid, err := s.sim.LaunchApp(ctx, h.InstanceID, p.BundleID, p.TerminateRunning)
	if err != nil {
		return failureResult(err)
	}

	out := map[string]any{
		"session_id":  p.SessionID,
		"instance_id": h.InstanceID,
		"bundle_id":   p.BundleID,
	}
	if pid > 0 {
		out["pid"] = pid
	}
	return jsonResult(out)
}

// secondsToDuration converts a JSON seconds value to a Duration. Zero and
// negative values mean "not set".
func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
