// Package server exposes the device lifecycle and UI automation surface
// over the Model Context Protocol. Transport is JSON-RPC 2.0, either
// line-delimited on stdio or POSTed to an HTTP endpoint; both feed the
// same Dispatch.
//
// Failure handling is split by layer: malformed JSON-RPC, unknown methods
// and unknown tools become protocol errors, while everything that goes
// wrong inside a tool (bad arguments, session state, simulator and
// automation failures) is reported in-band as an isError tool result so
// the calling agent always sees the diagnostic text.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Iron-Ham/simdeck/internal/automation"
	"github.com/Iron-Ham/simdeck/internal/capture"
	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/Iron-Ham/simdeck/internal/session"
	"github.com/Iron-Ham/simdeck/internal/simctl"
)

// maxRequestBytes bounds a single stdio request line. Accessibility trees
// flow the other way, but clients can still send large text payloads.
const maxRequestBytes = 10 * 1024 * 1024

// Deps bundles the collaborators a Server needs.
type Deps struct {
	Manager    *session.Manager
	Automation *automation.Client
	Simctl     *simctl.Client
	Recorder   *capture.Recorder
	Config     *config.Config
	Logger     *logging.Logger
	Version    string
}

// Server dispatches MCP requests to tool handlers.
type Server struct {
	manager  *session.Manager
	auto     *automation.Client
	sim      *simctl.Client
	recorder *capture.Recorder
	cfg      *config.Config
	logger   *logging.Logger
	info     ServerInfo
}

// New builds a Server from its collaborators. A nil logger is replaced
// with a no-op logger.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Server{
		manager:  deps.Manager,
		auto:     deps.Automation,
		sim:      deps.Simctl,
		recorder: deps.Recorder,
		cfg:      deps.Config,
		logger:   logger,
		info:     ServerInfo{Name: "simdeck", Version: deps.Version},
	}
}

// ServeStdio reads line-delimited JSON-RPC requests from r and writes
// responses to w until EOF or context cancellation. Notifications produce
// no output.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.Dispatch(ctx, line)
		if resp == nil {
			continue
		}
		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("could not serialize response", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}

// Dispatch handles one raw JSON-RPC message and returns the response, or
// nil for notifications.
func (s *Server) Dispatch(ctx context.Context, raw []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(nil, codeParseError, "Parse error")
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return errorResponse(req.ID, codeInvalidRequest, "Invalid request")
	}

	if strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug("notification received", "method", req.Method)
		return nil
	}

	resp := s.handleMethod(ctx, &req)
	if req.IsNotification() {
		return nil
	}
	return resp
}

func (s *Server) handleMethod(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	case "tools/list":
		return resultResponse(req.ID, map[string]any{"tools": s.visibleTools()})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Unknown method: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidParams, "Invalid params")
		}
	}
	s.logger.Info("client initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"client_protocol", params.ProtocolVersion)

	return resultResponse(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": s.info,
	})
}

// visibleTools returns the tool catalog minus anything hidden by
// server.filtered_tools.
func (s *Server) visibleTools() []Tool {
	all := toolDefinitions()
	tools := make([]Tool, 0, len(all))
	for _, t := range all {
		if s.cfg.Server.IsFiltered(t.Name) {
			continue
		}
		tools = append(tools, t)
	}
	return tools
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) (resp *JSONRPCResponse) {
	var call ToolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params")
	}
	if call.Name == "" {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params: missing tool name")
	}

	// A panicking handler must not take the serve loop down with it.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panicked", "tool", call.Name, "panic", fmt.Sprint(r))
			resp = errorResponse(req.ID, codeInternalError, fmt.Sprintf("Internal error in tool %s", call.Name))
		}
	}()

	if s.cfg.Server.IsFiltered(call.Name) {
		s.logger.Warn("filtered tool called", "tool", call.Name)
		return resultResponse(req.ID, errorResult("tool %q is disabled by server configuration (server.filtered_tools)", call.Name))
	}

	result := s.callTool(ctx, call.Name, call.Arguments)
	if result == nil {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("Tool not found: %s", call.Name))
	}

	logger := s.logger.WithTool(call.Name)
	if result.IsError {
		logger.Warn("tool call failed")
	} else {
		logger.Debug("tool call succeeded")
	}
	return resultResponse(req.ID, result)
}

// callTool routes a tools/call to its handler. A nil return means the tool
// does not exist.
func (s *Server) callTool(ctx context.Context, name string, args json.RawMessage) *ToolResult {
	switch name {
	case "device_start":
		return s.handleDeviceStart(ctx, args)
	case "device_attach":
		return s.handleDeviceAttach(ctx, args)
	case "device_destroy":
		return s.handleDeviceDestroy(ctx, args)
	case "device_list":
		return s.handleDeviceList(ctx, args)
	case "set_orientation":
		return s.handleSetOrientation(ctx, args)
	case "ui_describe_all":
		return s.handleDescribeAll(ctx, args)
	case "ui_describe_point":
		return s.handleDescribePoint(ctx, args)
	case "ui_tap":
		return s.handleTap(ctx, args)
	case "ui_type":
		return s.handleType(ctx, args)
	case "ui_swipe":
		return s.handleSwipe(ctx, args)
	case "screenshot":
		return s.handleScreenshot(ctx, args)
	case "record_video":
		return s.handleRecordVideo(ctx, args)
	case "stop_recording":
		return s.handleStopRecording(ctx, args)
	case "install_app":
		return s.handleInstallApp(ctx, args)
	case "launch_app":
		return s.handleLaunchApp(ctx, args)
	default:
		return nil
	}
}

func resultResponse(id any, result any) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
}
