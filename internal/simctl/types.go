package simctl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Device states as reported by simctl.
const (
	StateBooted       = "Booted"
	StateShutdown     = "Shutdown"
	StateBooting      = "Booting"
	StateShuttingDown = "Shutting Down"
	StateCreating     = "Creating"
)

// DeviceType is a simulator device type from the catalog,
// e.g. "iPhone 16 Pro" / "com.apple.CoreSimulator.SimDeviceType.iPhone-16-Pro".
type DeviceType struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// Runtime is an installed simulator runtime,
// e.g. "iOS 18.2" / "com.apple.CoreSimulator.SimRuntime.iOS-18-2".
type Runtime struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Platform    string `json:"platform"`
	Version     string `json:"version"`
	IsAvailable bool   `json:"isAvailable"`
}

// IsIOS reports whether the runtime is an iOS runtime. Older Xcode versions
// omit the platform field, so the identifier is checked as a fallback.
func (r Runtime) IsIOS() bool {
	if r.Platform != "" {
		return r.Platform == "iOS"
	}
	return strings.Contains(r.Identifier, ".iOS-")
}

// Device is a single simulator device.
type Device struct {
	UDID                 string `json:"udid"`
	Name                 string `json:"name"`
	State                string `json:"state"`
	DeviceTypeIdentifier string `json:"deviceTypeIdentifier"`
	IsAvailable          bool   `json:"isAvailable"`

	// RuntimeIdentifier is the runtime the device was created under.
	// It is derived from the device list's grouping, not the device record.
	RuntimeIdentifier string `json:"-"`
}

// IsBooted reports whether the device is in the Booted state.
func (d Device) IsBooted() bool {
	return d.State == StateBooted
}

// List is the parsed output of "simctl list -j".
type List struct {
	DeviceTypes []DeviceType        `json:"devicetypes"`
	Runtimes    []Runtime           `json:"runtimes"`
	Devices     map[string][]Device `json:"devices"`
}

// AllDevices returns every device across all runtimes, with each device's
// RuntimeIdentifier filled in from its runtime grouping.
func (l *List) AllDevices() []Device {
	var devices []Device
	for runtimeID, group := range l.Devices {
		for _, d := range group {
			d.RuntimeIdentifier = runtimeID
			devices = append(devices, d)
		}
	}
	return devices
}

// FindDevice returns the device with the given UDID, or false if absent.
func (l *List) FindDevice(udid string) (Device, bool) {
	for runtimeID, group := range l.Devices {
		for _, d := range group {
			if d.UDID == udid {
				d.RuntimeIdentifier = runtimeID
				return d, true
			}
		}
	}
	return Device{}, false
}

// parseList decodes "simctl list -j" output.
func parseList(data []byte) (*List, error) {
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing simctl list output: %w", err)
	}
	return &list, nil
}
