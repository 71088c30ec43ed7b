// Package automation wraps the axe command line tool for coordinate-addressed
// UI interaction with booted simulator devices.
//
// Coordinates given to this package are forwarded to the binary as-is. The
// canonical-frame convention (callers speak portrait coordinates, query
// results are canonicalized by the geometry package) lives in the session
// layer; this package is a thin collaborator wrapper that reports failures
// as AutomationError values with the tool's verbatim output attached.
package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/logging"
)

// DefaultBinary is the UI automation executable used when none is configured.
const DefaultBinary = "axe"

// installHint points users at the usual cause of a missing automation binary.
const installHint = "install the axe CLI (https://github.com/cameroncooke/AXe) and ensure it is on PATH"

// Client runs axe commands against simulator devices.
type Client struct {
	binary string
	logger *logging.Logger
}

// NewClient creates an automation client using the given binary.
// An empty binary falls back to DefaultBinary; a nil logger is replaced
// with a no-op logger.
func NewClient(binary string, logger *logging.Logger) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Client{binary: binary, logger: logger}
}

// Binary returns the configured automation binary.
func (c *Client) Binary() string {
	return c.binary
}

// Command creates an exec.Cmd for an axe subcommand.
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, c.binary, args...)
}

// wrapErr converts a command failure into an AutomationError carrying the
// tool's output verbatim.
func (c *Client) wrapErr(op, udid string, args []string, output string, err error) error {
	autoErr := errors.NewAutomationError(fmt.Sprintf("axe %s failed", op), err).
		WithUDID(udid).
		WithCommand("axe " + strings.Join(args, " ")).
		WithOutput(strings.TrimSpace(output))
	if errors.Is(err, exec.ErrNotFound) {
		autoErr = autoErr.WithHint(installHint)
	}
	return autoErr
}

// query runs a subcommand whose stdout is a JSON payload. Stderr is kept
// separate so diagnostics cannot corrupt the payload.
func (c *Client) query(ctx context.Context, op, udid string, args ...string) ([]byte, error) {
	cmd := c.Command(ctx, args...)
	c.logger.Debug("running automation query", "instance_id", udid, "args", strings.Join(args, " "))

	output, err := cmd.Output()
	if err != nil {
		stderr := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = string(exitErr.Stderr)
		}
		return nil, c.wrapErr(op, udid, args, stderr, err)
	}
	return output, nil
}

// action runs a subcommand performed for its side effect.
func (c *Client) action(ctx context.Context, op, udid string, args ...string) error {
	cmd := c.Command(ctx, args...)
	c.logger.Debug("running automation action", "instance_id", udid, "args", strings.Join(args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return c.wrapErr(op, udid, args, string(output), err)
	}
	return nil
}

// DescribeAll returns the full accessibility tree of the device as raw JSON.
func (c *Client) DescribeAll(ctx context.Context, udid string) ([]byte, error) {
	return c.query(ctx, "describe-ui", udid, "describe-ui", "--udid", udid)
}

// DescribePoint returns the accessibility element at the given coordinates
// as raw JSON.
func (c *Client) DescribePoint(ctx context.Context, udid string, x, y float64) ([]byte, error) {
	args := []string{"describe-point", "-x", formatCoord(x), "-y", formatCoord(y), "--udid", udid}
	return c.query(ctx, "describe-point", udid, args...)
}

// Tap taps the screen at the given coordinates. A positive duration holds
// the touch down for that long (long press).
func (c *Client) Tap(ctx context.Context, udid string, x, y float64, duration time.Duration) error {
	args := []string{"tap", "-x", formatCoord(x), "-y", formatCoord(y)}
	if duration > 0 {
		args = append(args, "--duration", formatSeconds(duration))
	}
	args = append(args, "--udid", udid)
	return c.action(ctx, "tap", udid, args...)
}

// Type types the given text into the focused element.
func (c *Client) Type(ctx context.Context, udid, text string) error {
	args := []string{"type", text, "--udid", udid}
	return c.action(ctx, "type", udid, args...)
}

// Swipe drags from the start point to the end point. A positive duration
// controls the gesture speed; a positive delta controls the step size
// between interpolated touch points.
func (c *Client) Swipe(ctx context.Context, udid string, x0, y0, x1, y1 float64, duration time.Duration, delta float64) error {
	args := []string{
		"swipe",
		"--start-x", formatCoord(x0),
		"--start-y", formatCoord(y0),
		"--end-x", formatCoord(x1),
		"--end-y", formatCoord(y1),
	}
	if duration > 0 {
		args = append(args, "--duration", formatSeconds(duration))
	}
	if delta > 0 {
		args = append(args, "--delta", formatCoord(delta))
	}
	args = append(args, "--udid", udid)
	return c.action(ctx, "swipe", udid, args...)
}

// formatCoord renders a coordinate without trailing zeros ("100", "12.5").
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatSeconds renders a duration as fractional seconds for axe flags.
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
