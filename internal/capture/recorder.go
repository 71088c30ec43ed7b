package capture

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/Iron-Ham/simdeck/internal/simctl"
)

// DefaultStopTimeout is how long Stop waits for simctl to finalize the
// video after SIGINT before force-killing the recording process.
const DefaultStopTimeout = 5 * time.Second

// Recording is an in-flight screen recording owned by a session.
type Recording struct {
	SessionID  string
	InstanceID string
	Path       string
	StartedAt  time.Time

	cmd    *exec.Cmd
	output bytes.Buffer
	done   chan error
}

// Duration reports how long the recording has been running.
func (r *Recording) Duration() time.Duration {
	return time.Since(r.StartedAt)
}

// Recorder tracks at most one active recording per session.
type Recorder struct {
	mu          sync.Mutex
	simctl      *simctl.Client
	logger      *logging.Logger
	stopTimeout time.Duration
	active      map[string]*Recording
}

// NewRecorder creates a recorder backed by the given simctl client.
func NewRecorder(client *simctl.Client, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Recorder{
		simctl:      client,
		logger:      logger,
		stopTimeout: DefaultStopTimeout,
		active:      make(map[string]*Recording),
	}
}

// Start begins a screen recording for the session. At most one recording
// may be active per session; a second Start fails with ErrRecordingActive
// and names the recording already in flight.
func (r *Recorder) Start(sessionID, instanceID, outputPath string, opts simctl.RecordOptions) (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.active[sessionID]; ok {
		msg := fmt.Sprintf("a recording is already active for this session (writing to %s since %s)",
			rec.Path, rec.StartedAt.Format(time.RFC3339))
		return nil, errors.NewDeviceError(msg, errors.ErrRecordingActive).
			WithSessionID(sessionID).
			WithInstanceID(rec.InstanceID)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating recording output directory for %s", outputPath)
	}

	rec := &Recording{
		SessionID:  sessionID,
		InstanceID: instanceID,
		Path:       outputPath,
		StartedAt:  time.Now(),
		done:       make(chan error, 1),
	}

	// Own process group, so stop signals reach simctl and any children
	// it spawns for the encode pipeline.
	cmd := r.simctl.RecordVideoCommand(instanceID, outputPath, opts)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = &rec.output
	cmd.Stderr = &rec.output
	rec.cmd = cmd

	if err := cmd.Start(); err != nil {
		simErr := errors.NewSimulatorError("failed to start recording", err).
			WithUDID(instanceID).
			WithCommand(strings.Join(cmd.Args, " "))
		if errors.Is(err, exec.ErrNotFound) {
			simErr = simErr.WithHint("ensure Xcode command line tools are installed (xcode-select --install)")
		}
		return nil, simErr
	}

	go func() {
		rec.done <- cmd.Wait()
	}()

	r.active[sessionID] = rec
	r.logger.Info("recording started",
		"session_id", sessionID, "instance_id", instanceID, "path", outputPath)
	return rec, nil
}

// Active returns the recording in flight for the session, if any.
func (r *Recorder) Active(sessionID string) (*Recording, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.active[sessionID]
	return rec, ok
}

// Stop ends the session's recording and waits for simctl to finalize the
// file. The recording is removed from the recorder even when finalization
// fails, so a wedged recording never blocks the session.
func (r *Recorder) Stop(sessionID string) (*Recording, error) {
	r.mu.Lock()
	rec, ok := r.active[sessionID]
	if !ok {
		r.mu.Unlock()
		return nil, errors.NewDeviceError("no active recording for this session", errors.ErrNoActiveRecording).
			WithSessionID(sessionID)
	}
	delete(r.active, sessionID)
	r.mu.Unlock()

	err := r.finish(rec)
	if err == nil {
		r.logger.Info("recording stopped",
			"session_id", sessionID, "path", rec.Path, "duration", rec.Duration().Round(time.Millisecond))
	}
	return rec, err
}

// StopAll stops every active recording in session order. Used on shutdown.
func (r *Recorder) StopAll() []error {
	r.mu.Lock()
	sessions := slices.Sorted(maps.Keys(r.active))
	r.mu.Unlock()

	var errs []error
	for _, sessionID := range sessions {
		if _, err := r.Stop(sessionID); err != nil && !errors.Is(err, errors.ErrNoActiveRecording) {
			errs = append(errs, err)
		}
	}
	return errs
}

// finish drives the recording process to exit: SIGINT to the group so
// simctl finalizes the file, a bounded wait, then SIGKILL.
func (r *Recorder) finish(rec *Recording) error {
	// A recording that exited on its own died before being stopped.
	select {
	case err := <-rec.done:
		if err != nil {
			return errors.NewSimulatorError("recording exited before stop", err).
				WithUDID(rec.InstanceID).
				WithOutput(strings.TrimSpace(rec.output.String()))
		}
		return nil
	default:
	}

	pid := rec.cmd.Process.Pid
	if err := syscall.Kill(-pid, syscall.SIGINT); err != nil {
		// Group may already be gone; fall back to the process itself.
		_ = rec.cmd.Process.Signal(os.Interrupt)
	}

	select {
	case err := <-rec.done:
		if err != nil && !exitedBySignal(err, syscall.SIGINT) {
			return errors.NewSimulatorError("recording failed during finalization", err).
				WithUDID(rec.InstanceID).
				WithOutput(strings.TrimSpace(rec.output.String()))
		}
		return nil
	case <-time.After(r.stopTimeout):
		r.logger.Warn("recording did not stop in time, killing",
			"session_id", rec.SessionID, "pid", pid, "timeout", r.stopTimeout)
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		<-rec.done
		return errors.NewSimulatorError(
			fmt.Sprintf("recording did not stop within %s", r.stopTimeout), errors.ErrTimeout).
			WithUDID(rec.InstanceID).
			WithHint("the output file may be incomplete")
	}
}

// exitedBySignal reports whether err is an exit caused by the given signal.
func exitedBySignal(err error, sig syscall.Signal) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled() && status.Signal() == sig
}
