// Package session orchestrates the per-session device lifecycle: starting
// owned simulator instances, attaching to already-booted ones, tearing
// them down, and holding the one-device-per-session invariant.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Iron-Ham/simdeck/internal/device"
	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/geometry"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/Iron-Ham/simdeck/internal/simctl"
)

// DefaultTypeKeyword is used when a start request names no device type.
const DefaultTypeKeyword = "iPhone"

// maxSessionIDLen bounds caller-supplied session identifiers. The id is
// otherwise opaque.
const maxSessionIDLen = 128

// Simulator is the slice of the simulator control surface the manager
// drives directly. Provisioning (create/boot) goes through the
// device.Provisioner instead. Satisfied by *simctl.Client.
type Simulator interface {
	List(ctx context.Context) (*simctl.List, error)
	Shutdown(ctx context.Context, udid string) error
	Delete(ctx context.Context, udid string) error
	OpenSimulatorApp(ctx context.Context) error
}

// Manager owns the registry and serializes lifecycle transitions per
// session id, so concurrent start/attach/destroy calls for one session
// cannot provision duplicate devices. Operations on distinct sessions
// run independently.
type Manager struct {
	registry    *device.Registry
	provisioner *device.Provisioner
	sim         Simulator
	defaultType string
	logger      *logging.Logger

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewManager creates a lifecycle manager. An empty defaultType falls back
// to DefaultTypeKeyword; a nil logger is replaced with a no-op logger.
func NewManager(registry *device.Registry, provisioner *device.Provisioner, sim Simulator, defaultType string, logger *logging.Logger) *Manager {
	if defaultType == "" {
		defaultType = DefaultTypeKeyword
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{
		registry:    registry,
		provisioner: provisioner,
		sim:         sim,
		defaultType: defaultType,
		logger:      logger,
		locks:       make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding lifecycle transitions for the
// session. Locks are kept for the life of the process; the map is bounded
// by the number of distinct session ids seen.
func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	mu, ok := m.locks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		m.locks[sessionID] = mu
	}
	return mu
}

func validateSessionID(sessionID string) error {
	if sessionID == "" {
		return errors.NewValidationError("session_id is required").
			WithField("session_id").
			WithCause(errors.ErrInvalidInput)
	}
	if len(sessionID) > maxSessionIDLen {
		return errors.NewValidationError(
			fmt.Sprintf("session_id exceeds %d characters", maxSessionIDLen)).
			WithField("session_id").
			WithCause(errors.ErrInvalidInput)
	}
	return nil
}

// DisplayName synthesizes the simulator name for a session and device-type
// keyword. The name is deterministic, so retried starts reuse it.
func DisplayName(sessionID, keyword string) string {
	return fmt.Sprintf("simdeck-%s-%s", slug(sessionID), slug(keyword))
}

func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// StartResult reports the device a Start call provisioned.
type StartResult struct {
	SessionID  string
	Handle     device.Handle
	DeviceType string
	Runtime    string
}

// Start provisions a new owned device for the session: resolve the type
// keyword (default configured type) and newest runtime, create and boot,
// then bring the Simulator app forward best-effort. The registry entry is
// inserted only after boot succeeds; any earlier failure leaves no state
// behind. A session that already has a device is refused with the existing
// device's name and id so the caller can decide whether to destroy first.
func (m *Manager) Start(ctx context.Context, sessionID, typeKeyword string) (*StartResult, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if existing, err := m.registry.Get(sessionID); err == nil {
		return nil, errors.NewDeviceError(
			fmt.Sprintf("session already has an active device %q (%s); call device_destroy first",
				existing.DisplayName, existing.InstanceID),
			errors.ErrSessionActive).
			WithSessionID(sessionID).
			WithInstanceID(existing.InstanceID)
	}

	keyword := typeKeyword
	if keyword == "" {
		keyword = m.defaultType
	}
	name := DisplayName(sessionID, keyword)

	res, err := m.provisioner.Provision(ctx, name, keyword)
	if err != nil {
		return nil, err
	}

	// Headless operation still works when this fails.
	if err := m.sim.OpenSimulatorApp(ctx); err != nil {
		m.logger.Warn("could not bring Simulator app to the foreground",
			"session_id", sessionID, "error", err)
	}

	h := device.Handle{
		InstanceID:  res.InstanceID,
		DisplayName: name,
		Owned:       true,
		Orientation: geometry.OrientationAuto,
	}
	if err := m.registry.Put(sessionID, h); err != nil {
		m.logger.Error("provisioned device could not be registered; it is left behind",
			"session_id", sessionID, "instance_id", res.InstanceID, "error", err)
		return nil, err
	}

	m.logger.Info("device started",
		"session_id", sessionID,
		"instance_id", res.InstanceID,
		"name", name,
		"device_type", res.DeviceType.Name,
		"runtime", res.Runtime.Name)

	return &StartResult{
		SessionID:  sessionID,
		Handle:     h,
		DeviceType: res.DeviceType.Name,
		Runtime:    res.Runtime.Name,
	}, nil
}

// Attach binds the session to an already-booted instance without taking
// ownership: teardown will release the session but never destroy the
// device. The instance must appear in the live device list and be booted.
func (m *Manager) Attach(ctx context.Context, sessionID, instanceID string) (device.Handle, error) {
	if err := validateSessionID(sessionID); err != nil {
		return device.Handle{}, err
	}
	if instanceID == "" {
		return device.Handle{}, errors.NewValidationError("instance_id is required").
			WithField("instance_id").
			WithCause(errors.ErrInvalidInput)
	}

	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if existing, err := m.registry.Get(sessionID); err == nil {
		return device.Handle{}, errors.NewDeviceError(
			fmt.Sprintf("session already has an active device %q (%s); call device_destroy first",
				existing.DisplayName, existing.InstanceID),
			errors.ErrSessionActive).
			WithSessionID(sessionID).
			WithInstanceID(existing.InstanceID)
	}

	list, err := m.sim.List(ctx)
	if err != nil {
		return device.Handle{}, err
	}
	dev, ok := list.FindDevice(instanceID)
	if !ok {
		return device.Handle{}, errors.NewNotFoundError("simulator instance", instanceID).
			WithCause(errors.ErrInstanceNotFound)
	}
	if !dev.IsBooted() {
		return device.Handle{}, errors.NewDeviceError(
			fmt.Sprintf("simulator instance is not booted (state: %s); boot it before attaching", dev.State),
			errors.ErrInstanceNotBooted).
			WithSessionID(sessionID).
			WithInstanceID(instanceID)
	}

	h := device.Handle{
		InstanceID:  instanceID,
		DisplayName: dev.Name,
		Owned:       false,
		Orientation: geometry.OrientationAuto,
	}
	if err := m.registry.Put(sessionID, h); err != nil {
		return device.Handle{}, err
	}

	m.logger.Info("device attached",
		"session_id", sessionID, "instance_id", instanceID, "name", dev.Name)
	return h, nil
}

// Destroy releases the session's device. Owned devices are shut down and
// deleted; a shutdown failure does not block the delete attempt, since the
// instance may already be off. Attached devices are only forgotten. The
// registry entry is removed even when teardown fails, so a session can
// never get stuck; the teardown error is still returned alongside the
// released handle.
func (m *Manager) Destroy(ctx context.Context, sessionID string) (device.Handle, error) {
	if err := validateSessionID(sessionID); err != nil {
		return device.Handle{}, err
	}

	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	h, err := m.registry.Get(sessionID)
	if err != nil {
		return device.Handle{}, err
	}

	var teardownErr error
	if h.Owned {
		if err := m.sim.Shutdown(ctx, h.InstanceID); err != nil {
			m.logger.Warn("shutdown failed during destroy",
				"session_id", sessionID, "instance_id", h.InstanceID, "error", err)
			teardownErr = errors.Join(teardownErr, err)
		}
		if err := m.sim.Delete(ctx, h.InstanceID); err != nil {
			m.logger.Warn("delete failed during destroy",
				"session_id", sessionID, "instance_id", h.InstanceID, "error", err)
			teardownErr = errors.Join(teardownErr, err)
		}
	}

	m.registry.Remove(sessionID)
	m.logger.Info("device released",
		"session_id", sessionID,
		"instance_id", h.InstanceID,
		"owned", h.Owned,
		"teardown_failed", teardownErr != nil)
	return h, teardownErr
}

// SetOrientation updates the session's rotation setting. No simulator
// call is made; the setting only steers coordinate transforms.
func (m *Manager) SetOrientation(sessionID string, o geometry.Orientation) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if err := m.registry.SetOrientation(sessionID, o); err != nil {
		return err
	}
	m.logger.Info("orientation set", "session_id", sessionID, "orientation", o.String())
	return nil
}

// Resolve returns the session's device handle for UI-facing operations.
func (m *Manager) Resolve(sessionID string) (device.Handle, error) {
	if err := validateSessionID(sessionID); err != nil {
		return device.Handle{}, err
	}
	return m.registry.Get(sessionID)
}

// List returns every active session with its handle, ordered by session id.
func (m *Manager) List() []device.Entry {
	return m.registry.List()
}
