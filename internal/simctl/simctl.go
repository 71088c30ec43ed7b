// Package simctl wraps the "xcrun simctl" command line interface for
// controlling iOS simulator devices.
//
// All operations shell out to the configured binary (default "xcrun") and
// surface failures as SimulatorError values carrying the verbatim command
// output, so callers can relay what simctl actually said. The binary is
// configurable mainly so tests can point at a fake.
package simctl

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/logging"
)

// DefaultBinary is the command used to reach simctl when none is configured.
const DefaultBinary = "xcrun"

// installHint points users at the usual cause of a missing simctl.
const installHint = "ensure Xcode command line tools are installed (xcode-select --install)"

// Client runs simctl subcommands.
type Client struct {
	binary string
	logger *logging.Logger
}

// NewClient creates a simctl client using the given binary.
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

// Command creates an exec.Cmd for a simctl subcommand.
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, c.binary, c.CommandArgs(args...)...)
}

// CommandArgs returns the argument list for a simctl subcommand, without
// the binary itself. Use this when building the command differently
// (e.g. for display or for process-group control).
func (c *Client) CommandArgs(args ...string) []string {
	return append([]string{"simctl"}, args...)
}

// Binary returns the configured command runner binary.
func (c *Client) Binary() string {
	return c.binary
}

// run executes a simctl subcommand and returns its combined output.
// Failures come back as SimulatorError with the output attached verbatim.
func (c *Client) run(ctx context.Context, udid string, args ...string) (string, error) {
	cmd := c.Command(ctx, args...)
	c.logger.Debug("running simctl command", "args", strings.Join(args, " "))

	output, err := cmd.CombinedOutput()
	if err != nil {
		simErr := errors.NewSimulatorError(fmt.Sprintf("simctl %s failed", args[0]), err).
			WithCommand("simctl " + strings.Join(args, " ")).
			WithOutput(strings.TrimSpace(string(output)))
		if udid != "" {
			simErr = simErr.WithUDID(udid)
		}
		if errors.Is(err, exec.ErrNotFound) {
			simErr = simErr.WithHint(installHint)
		}
		return string(output), simErr
	}

	return string(output), nil
}

// List returns the full simulator catalog: device types, runtimes, and
// devices grouped by runtime.
func (c *Client) List(ctx context.Context) (*List, error) {
	output, err := c.run(ctx, "", "list", "-j")
	if err != nil {
		return nil, err
	}
	return parseList([]byte(output))
}

// Create creates a new simulator device and returns its UDID.
func (c *Client) Create(ctx context.Context, name, deviceTypeID, runtimeID string) (string, error) {
	output, err := c.run(ctx, "", "create", name, deviceTypeID, runtimeID)
	if err != nil {
		return "", err
	}

	udid := strings.TrimSpace(output)
	if udid == "" {
		return "", errors.NewSimulatorError("simctl create returned no UDID", nil).
			WithCommand("simctl create " + name)
	}
	return udid, nil
}

// Boot boots the device. Booting an already-booted device is treated as
// success; simctl reports it as an error but the desired state holds.
func (c *Client) Boot(ctx context.Context, udid string) error {
	output, err := c.run(ctx, udid, "boot", udid)
	if err != nil {
		if strings.Contains(output, "current state: Booted") {
			c.logger.Debug("device already booted", "instance_id", udid)
			return nil
		}
		return err
	}
	return nil
}

// Shutdown shuts the device down. Shutting down an already-stopped device
// is treated as success.
func (c *Client) Shutdown(ctx context.Context, udid string) error {
	output, err := c.run(ctx, udid, "shutdown", udid)
	if err != nil {
		if strings.Contains(output, "current state: Shutdown") {
			c.logger.Debug("device already shut down", "instance_id", udid)
			return nil
		}
		return err
	}
	return nil
}

// Delete removes the device and its data.
func (c *Client) Delete(ctx context.Context, udid string) error {
	_, err := c.run(ctx, udid, "delete", udid)
	return err
}

// InstallApp installs a .app bundle onto the device.
func (c *Client) InstallApp(ctx context.Context, udid, appPath string) error {
	_, err := c.run(ctx, udid, "install", udid, appPath)
	if err != nil {
		var simErr *errors.SimulatorError
		if errors.As(err, &simErr) {
			return simErr.WithHint("the path must point at a built .app bundle for the simulator")
		}
	}
	return err
}

// LaunchApp launches an installed app by bundle identifier and returns its
// process ID. With terminateRunning set, an already-running instance of the
// app is terminated first. A launch that succeeds but prints an unparseable
// pid returns 0 without error.
func (c *Client) LaunchApp(ctx context.Context, udid, bundleID string, terminateRunning bool) (int, error) {
	args := []string{"launch"}
	if terminateRunning {
		args = append(args, "--terminate-running-process")
	}
	args = append(args, udid, bundleID)

	output, err := c.run(ctx, udid, args...)
	if err != nil {
		var simErr *errors.SimulatorError
		if errors.As(err, &simErr) {
			return 0, simErr.WithHint("verify the app is installed with the install_app tool first")
		}
		return 0, err
	}

	// Output has the form "com.example.App: 12345"
	trimmed := strings.TrimSpace(output)
	if idx := strings.LastIndex(trimmed, ":"); idx >= 0 {
		pidStr := strings.TrimSpace(trimmed[idx+1:])
		if pid, err := strconv.Atoi(pidStr); err == nil {
			return pid, nil
		}
	}

	c.logger.Warn("could not parse pid from launch output", "instance_id", udid, "output", trimmed)
	return 0, nil
}

// ScreenshotOptions holds the optional flags of a screenshot capture.
// Zero values leave the corresponding flag off so simctl picks its default.
type ScreenshotOptions struct {
	Type    string // png, tiff, bmp, gif, jpeg
	Display string // internal, external
	Mask    string // ignored, alpha, black
}

func (o ScreenshotOptions) args() []string {
	var args []string
	if o.Type != "" {
		args = append(args, "--type="+o.Type)
	}
	if o.Display != "" {
		args = append(args, "--display="+o.Display)
	}
	if o.Mask != "" {
		args = append(args, "--mask="+o.Mask)
	}
	return args
}

// Screenshot captures the device screen to the given path.
func (c *Client) Screenshot(ctx context.Context, udid, outputPath string, opts ScreenshotOptions) error {
	args := append([]string{"io", udid, "screenshot"}, opts.args()...)
	args = append(args, outputPath)
	_, err := c.run(ctx, udid, args...)
	return err
}

// RecordOptions holds the optional flags of a video recording.
// Codec defaults to h264 when empty.
type RecordOptions struct {
	Codec   string // h264, hevc
	Display string // internal, external
	Mask    string // ignored, alpha, black
}

func (o RecordOptions) args() []string {
	codec := o.Codec
	if codec == "" {
		codec = "h264"
	}
	args := []string{"--codec=" + codec}
	if o.Display != "" {
		args = append(args, "--display="+o.Display)
	}
	if o.Mask != "" {
		args = append(args, "--mask="+o.Mask)
	}
	return args
}

// RecordVideoCommand builds the long-running recording command for the
// device. The caller owns the process lifecycle: recording runs until the
// process receives SIGINT, at which point simctl finalizes the file.
func (c *Client) RecordVideoCommand(udid, outputPath string, opts RecordOptions) *exec.Cmd {
	args := []string{"io", udid, "recordVideo"}
	args = append(args, opts.args()...)
	args = append(args, "--force", outputPath)
	return exec.Command(c.binary, c.CommandArgs(args...)...)
}

// OpenSimulatorApp brings the Simulator application to the foreground so
// the booted device is visible. Best effort; callers treat failure as
// non-fatal since headless operation still works.
func (c *Client) OpenSimulatorApp(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "open", "-a", "Simulator")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.NewSimulatorError("failed to open Simulator app", err).
			WithCommand("open -a Simulator").
			WithOutput(strings.TrimSpace(string(output)))
	}
	return nil
}
