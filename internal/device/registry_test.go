package device

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/geometry"
)

func TestRegistryPutGet(t *testing.T) {
	r := NewRegistry()
	h := Handle{
		InstanceID:  "UDID-1",
		DisplayName: "simdeck-agent-1-iphone",
		Owned:       true,
		Orientation: geometry.OrientationAuto,
	}

	if err := r.Put("agent-1", h); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := r.Get("agent-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != h {
		t.Errorf("Get() = %+v, want %+v", got, h)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistryPutDuplicateSession(t *testing.T) {
	r := NewRegistry()
	first := Handle{InstanceID: "UDID-1", DisplayName: "first", Owned: true, Orientation: geometry.OrientationAuto}
	if err := r.Put("agent-1", first); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	err := r.Put("agent-1", Handle{InstanceID: "UDID-2", DisplayName: "second"})
	if err == nil {
		t.Fatal("second Put() for same session should fail")
	}
	if !errors.Is(err, errors.ErrSessionActive) {
		t.Errorf("error should wrap ErrSessionActive, got: %v", err)
	}
	var existsErr *errors.AlreadyExistsError
	if !errors.As(err, &existsErr) {
		t.Errorf("error should be AlreadyExistsError, got %T", err)
	}
	if !strings.Contains(err.Error(), "UDID-1") || !strings.Contains(err.Error(), "first") {
		t.Errorf("error should name the existing device, got: %v", err)
	}

	// The first handle must still be in place.
	got, err := r.Get("agent-1")
	if err != nil || got != first {
		t.Errorf("registry should keep the first handle, got %+v (err %v)", got, err)
	}
}

func TestRegistryPutDuplicateInstance(t *testing.T) {
	r := NewRegistry()
	if err := r.Put("agent-1", Handle{InstanceID: "UDID-1", Owned: true}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	err := r.Put("agent-2", Handle{InstanceID: "UDID-1", Owned: false})
	if err == nil {
		t.Fatal("Put() with aliased instance should fail")
	}
	if !errors.Is(err, errors.ErrInstanceConflict) {
		t.Errorf("error should wrap ErrInstanceConflict, got: %v", err)
	}
	var internalErr *errors.InternalError
	if !errors.As(err, &internalErr) {
		t.Errorf("aliased instance should be an internal error, got %T", err)
	}
	if !strings.Contains(err.Error(), "agent-1") {
		t.Errorf("error should name the session holding the instance, got: %v", err)
	}
	if _, err := r.Get("agent-2"); err == nil {
		t.Error("failed Put() must not insert an entry")
	}
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("ghost")
	if err == nil {
		t.Fatal("Get() on absent session should fail")
	}
	if !errors.Is(err, errors.ErrSessionNotActive) {
		t.Errorf("error should wrap ErrSessionNotActive, got: %v", err)
	}
	if !strings.Contains(err.Error(), "no device for session") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	if err := r.Put("agent-1", Handle{InstanceID: "UDID-1"}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	r.Remove("agent-1")
	if _, err := r.Get("agent-1"); !errors.Is(err, errors.ErrSessionNotActive) {
		t.Errorf("Get() after Remove should report no device, got: %v", err)
	}

	// Removing again is a no-op.
	r.Remove("agent-1")
	r.Remove("never-existed")
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestRegistrySetOrientation(t *testing.T) {
	r := NewRegistry()
	if err := r.Put("agent-1", Handle{InstanceID: "UDID-1", Orientation: geometry.OrientationAuto}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if err := r.SetOrientation("agent-1", geometry.OrientationLandscapeLeft); err != nil {
		t.Fatalf("SetOrientation() failed: %v", err)
	}
	got, _ := r.Get("agent-1")
	if got.Orientation != geometry.OrientationLandscapeLeft {
		t.Errorf("Orientation = %q, want landscape_left", got.Orientation)
	}
	if got.InstanceID != "UDID-1" {
		t.Errorf("SetOrientation must not change identity, got %+v", got)
	}

	if err := r.SetOrientation("ghost", geometry.OrientationPortrait); !errors.Is(err, errors.ErrSessionNotActive) {
		t.Errorf("SetOrientation on absent session should report no device, got: %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	for _, sid := range []string{"charlie", "alpha", "bravo"} {
		if err := r.Put(sid, Handle{InstanceID: "UDID-" + sid}); err != nil {
			t.Fatalf("Put(%s) failed: %v", sid, err)
		}
	}

	entries := r.List()
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	for i, want := range []string{"alpha", "bravo", "charlie"} {
		if entries[i].SessionID != want {
			t.Errorf("entries[%d] = %q, want %q (sorted)", i, entries[i].SessionID, want)
		}
	}
}

func TestRegistryOwned(t *testing.T) {
	r := NewRegistry()
	if err := r.Put("owned-1", Handle{InstanceID: "UDID-1", Owned: true}); err != nil {
		t.Fatal(err)
	}
	if err := r.Put("attached", Handle{InstanceID: "UDID-2", Owned: false}); err != nil {
		t.Fatal(err)
	}
	if err := r.Put("owned-2", Handle{InstanceID: "UDID-3", Owned: true}); err != nil {
		t.Fatal(err)
	}

	owned := r.Owned()
	if len(owned) != 2 {
		t.Fatalf("Owned() returned %d entries, want 2", len(owned))
	}
	if owned[0].SessionID != "owned-1" || owned[1].SessionID != "owned-2" {
		t.Errorf("unexpected owned entries: %+v", owned)
	}

	// The snapshot stays intact while entries are removed mid-walk.
	for _, e := range owned {
		r.Remove(e.SessionID)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after removing owned, want 1", r.Len())
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sid := fmt.Sprintf("agent-%d", i)
			if err := r.Put(sid, Handle{InstanceID: "UDID-" + sid, Owned: i%2 == 0}); err != nil {
				t.Errorf("Put(%s) failed: %v", sid, err)
				return
			}
			if _, err := r.Get(sid); err != nil {
				t.Errorf("Get(%s) failed: %v", sid, err)
			}
			r.List()
		}()
	}
	wg.Wait()

	if r.Len() != 20 {
		t.Errorf("Len() = %d, want 20", r.Len())
	}
}
