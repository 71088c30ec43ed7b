// Package device holds the session-to-device registry and the provisioning
// logic that turns a device-type keyword and the newest available runtime
// into a created, booted simulator instance.
package device

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/geometry"
)

// Handle describes the device bound to a session.
type Handle struct {
	// InstanceID is the simulator's UDID, owned by simctl's device table
	// and only cached here.
	InstanceID string
	// DisplayName is the name the device was created with, or the name
	// observed at attach time.
	DisplayName string
	// Owned is true when this process created the instance and must
	// destroy it on teardown. Attached instances are never destroyed,
	// only forgotten.
	Owned bool
	// Orientation is the session's rotation setting. OrientationAuto
	// defers to the reported screen dimensions on each query; any other
	// value is a sticky override.
	Orientation geometry.Orientation
}

// Entry pairs a session id with its handle for enumeration.
type Entry struct {
	SessionID string
	Handle    Handle
}

// Registry is the in-process table from session id to device handle.
// Each session holds at most one handle, and no two sessions may share
// an instance id. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

// Put inserts a handle for the session. It fails when the session already
// has a device, or when the instance id is already bound to another
// session. The second case means sequencing went wrong somewhere, so it
// fails closed without touching the existing entry.
func (r *Registry) Put(sessionID string, h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.handles[sessionID]; ok {
		return errors.NewAlreadyExistsError("session", sessionID).
			WithCause(fmt.Errorf("%w: device %q (%s)", errors.ErrSessionActive, existing.DisplayName, existing.InstanceID))
	}
	for sid, other := range r.handles {
		if other.InstanceID == h.InstanceID {
			return errors.NewInternalError(
				fmt.Sprintf("instance %s is already bound to session %s", h.InstanceID, sid)).
				WithCause(errors.ErrInstanceConflict)
		}
	}

	r.handles[sessionID] = h
	return nil
}

// Get returns the session's handle.
func (r *Registry) Get(sessionID string) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[sessionID]
	if !ok {
		return Handle{}, errors.NewDeviceError("no device for session", errors.ErrSessionNotActive).
			WithSessionID(sessionID)
	}
	return h, nil
}

// Remove deletes the session's entry. Removing an absent session is a
// no-op, so teardown paths can call it unconditionally.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, sessionID)
}

// SetOrientation updates the session's orientation in place.
func (r *Registry) SetOrientation(sessionID string, o geometry.Orientation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[sessionID]
	if !ok {
		return errors.NewDeviceError("no device for session", errors.ErrSessionNotActive).
			WithSessionID(sessionID)
	}
	h.Orientation = o
	r.handles[sessionID] = h
	return nil
}

// List returns every entry ordered by session id.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.handles))
	for _, sid := range slices.Sorted(maps.Keys(r.handles)) {
		entries = append(entries, Entry{SessionID: sid, Handle: r.handles[sid]})
	}
	return entries
}

// Owned returns the entries whose devices this process created, ordered by
// session id. The result is a snapshot: callers may mutate the registry
// (including Remove) while walking it.
func (r *Registry) Owned() []Entry {
	var owned []Entry
	for _, e := range r.List() {
		if e.Handle.Owned {
			owned = append(owned, e)
		}
	}
	return owned
}

// Len reports the number of active sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
