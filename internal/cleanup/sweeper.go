// Package cleanup tears down session devices when the server exits. The
// sweep is best-effort: every active session is attempted, each destroy
// gets a bounded timeout, and per-session outcomes are collected into a
// summary instead of being swallowed.
package cleanup

import (
	"context"
	"time"

	"github.com/Iron-Ham/simdeck/internal/device"
	"github.com/Iron-Ham/simdeck/internal/logging"
)

// DefaultDestroyTimeout bounds a single destroy attempt during a sweep.
const DefaultDestroyTimeout = 10 * time.Second

// Lifecycle is the session surface the sweeper drives. Satisfied by
// *session.Manager. Destroy must release the session's registry entry
// even when the external teardown fails.
type Lifecycle interface {
	List() []device.Entry
	Destroy(ctx context.Context, sessionID string) (device.Handle, error)
}

// RecordingStopper finalizes any in-flight recordings before devices go
// away. Satisfied by *capture.Recorder.
type RecordingStopper interface {
	StopAll() []error
}

// Result records the outcome of one session's teardown.
type Result struct {
	SessionID   string
	InstanceID  string
	DisplayName string
	Owned       bool
	Err         error
}

// Summary aggregates a sweep.
type Summary struct {
	Destroyed int // owned devices successfully destroyed
	Released  int // registry entries cleared (owned and attached)
	Failed    int // sessions whose teardown reported an error
	Results   []Result
}

// Sweeper walks every active session at shutdown and destroys the owned
// devices. Attached devices are released without being touched.
type Sweeper struct {
	lifecycle Lifecycle
	recorder  RecordingStopper
	timeout   time.Duration
	logger    *logging.Logger
}

// NewSweeper creates a sweeper. recorder may be nil when no capture layer
// is wired; a non-positive timeout falls back to DefaultDestroyTimeout.
func NewSweeper(lifecycle Lifecycle, recorder RecordingStopper, timeout time.Duration, logger *logging.Logger) *Sweeper {
	if timeout <= 0 {
		timeout = DefaultDestroyTimeout
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Sweeper{
		lifecycle: lifecycle,
		recorder:  recorder,
		timeout:   timeout,
		logger:    logger,
	}
}

// Sweep stops recordings, then destroys every session in id order. A hung
// destroy is cut off after the per-attempt timeout and the sweep moves on;
// one wedged device never blocks the rest of shutdown.
func (s *Sweeper) Sweep(ctx context.Context) Summary {
	if s.recorder != nil {
		for _, err := range s.recorder.StopAll() {
			s.logger.Warn("recording not finalized during shutdown", "error", err)
		}
	}

	entries := s.lifecycle.List()
	summary := Summary{Results: make([]Result, 0, len(entries))}

	for _, e := range entries {
		destroyCtx, cancel := context.WithTimeout(ctx, s.timeout)
		_, err := s.lifecycle.Destroy(destroyCtx, e.SessionID)
		cancel()

		res := Result{
			SessionID:   e.SessionID,
			InstanceID:  e.Handle.InstanceID,
			DisplayName: e.Handle.DisplayName,
			Owned:       e.Handle.Owned,
			Err:         err,
		}
		summary.Results = append(summary.Results, res)
		summary.Released++

		switch {
		case err != nil:
			summary.Failed++
			s.logger.Warn("session teardown failed",
				"session_id", e.SessionID,
				"instance_id", e.Handle.InstanceID,
				"owned", e.Handle.Owned,
				"error", err)
		case e.Handle.Owned:
			summary.Destroyed++
		}
	}

	s.logger.Info("shutdown sweep complete",
		"sessions", summary.Released,
		"destroyed", summary.Destroyed,
		"failed", summary.Failed)
	return summary
}
