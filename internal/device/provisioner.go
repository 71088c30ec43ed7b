package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/Iron-Ham/simdeck/internal/simctl"
)

// Controller is the slice of the simulator control surface the provisioner
// drives. Satisfied by *simctl.Client.
type Controller interface {
	List(ctx context.Context) (*simctl.List, error)
	Create(ctx context.Context, name, deviceTypeID, runtimeID string) (string, error)
	Boot(ctx context.Context, udid string) error
}

// Provisioner resolves device-type keywords and runtimes against the
// simulator catalog and creates booted instances.
type Provisioner struct {
	ctrl   Controller
	logger *logging.Logger
}

// NewProvisioner creates a provisioner over the given controller.
func NewProvisioner(ctrl Controller, logger *logging.Logger) *Provisioner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Provisioner{ctrl: ctrl, logger: logger}
}

// ProvisionResult reports what a Provision call created.
type ProvisionResult struct {
	InstanceID string
	DeviceType simctl.DeviceType
	Runtime    simctl.Runtime
}

// Provision resolves the keyword and the newest available iOS runtime,
// then creates and boots a device named displayName. The catalog is
// fetched once and used for both resolutions. A created instance is not
// rolled back when boot fails; the error surfaces what simctl reported.
func (p *Provisioner) Provision(ctx context.Context, displayName, keyword string) (*ProvisionResult, error) {
	list, err := p.ctrl.List(ctx)
	if err != nil {
		return nil, err
	}

	deviceType, err := ResolveDeviceType(list, keyword)
	if err != nil {
		return nil, err
	}
	runtime, err := ResolveLatestRuntime(list)
	if err != nil {
		return nil, err
	}

	p.logger.Info("provisioning device",
		"name", displayName,
		"device_type", deviceType.Name,
		"runtime", runtime.Name)

	udid, err := p.ctrl.Create(ctx, displayName, deviceType.Identifier, runtime.Identifier)
	if err != nil {
		return nil, err
	}
	if err := p.ctrl.Boot(ctx, udid); err != nil {
		return nil, err
	}

	return &ProvisionResult{InstanceID: udid, DeviceType: deviceType, Runtime: runtime}, nil
}

// ResolveDeviceType returns the first catalog device type whose name
// contains the keyword, case-insensitively. The catalog's native ordering
// is assumed newest-first, so the first match is the newest model. A miss
// enumerates every catalog name so the caller can correct the keyword.
func ResolveDeviceType(list *simctl.List, keyword string) (simctl.DeviceType, error) {
	needle := strings.ToLower(keyword)
	for _, dt := range list.DeviceTypes {
		if strings.Contains(strings.ToLower(dt.Name), needle) {
			return dt, nil
		}
	}

	names := make([]string, 0, len(list.DeviceTypes))
	for _, dt := range list.DeviceTypes {
		names = append(names, dt.Name)
	}
	msg := fmt.Sprintf("no simulator device type matches %q (available: %s)",
		keyword, strings.Join(names, ", "))
	return simctl.DeviceType{}, errors.NewValidationError(msg).
		WithField("device_type").
		WithValue(keyword).
		WithCause(errors.ErrNoMatchingDeviceType)
}

// ResolveLatestRuntime returns the newest available iOS runtime. The
// runtime catalog's native ordering is assumed oldest-first, so this takes
// the last available entry. Note the opposite ordering assumption from
// ResolveDeviceType; both follow the catalog as simctl emits it.
func ResolveLatestRuntime(list *simctl.List) (simctl.Runtime, error) {
	var (
		found  bool
		newest simctl.Runtime
	)
	for _, rt := range list.Runtimes {
		if rt.IsAvailable && rt.IsIOS() {
			newest = rt
			found = true
		}
	}
	if !found {
		names := make([]string, 0, len(list.Runtimes))
		for _, rt := range list.Runtimes {
			names = append(names, fmt.Sprintf("%s (available=%t)", rt.Name, rt.IsAvailable))
		}
		detail := "none installed"
		if len(names) > 0 {
			detail = strings.Join(names, ", ")
		}
		msg := fmt.Sprintf("no available iOS runtime (runtimes: %s)", detail)
		return simctl.Runtime{}, errors.NewValidationError(msg).
			WithField("runtime").
			WithCause(errors.ErrNoAvailableRuntime)
	}
	return newest, nil
}
