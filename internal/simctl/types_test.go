package simctl

import (
	"sort"
	"testing"
)

const sampleListJSON = `{
  "devicetypes": [
    {"name": "iPhone SE (3rd generation)", "identifier": "com.apple.CoreSimulator.SimDeviceType.iPhone-SE-3rd-generation", "productFamily": "iPhone"},
    {"name": "iPhone 16 Pro", "identifier": "com.apple.CoreSimulator.SimDeviceType.iPhone-16-Pro", "productFamily": "iPhone"},
    {"name": "iPad Pro 11-inch (M4)", "identifier": "com.apple.CoreSimulator.SimDeviceType.iPad-Pro-11-inch-M4", "productFamily": "iPad"}
  ],
  "runtimes": [
    {"name": "iOS 17.5", "identifier": "com.apple.CoreSimulator.SimRuntime.iOS-17-5", "platform": "iOS", "version": "17.5", "isAvailable": true},
    {"name": "watchOS 11.2", "identifier": "com.apple.CoreSimulator.SimRuntime.watchOS-11-2", "platform": "watchOS", "version": "11.2", "isAvailable": true},
    {"name": "iOS 18.2", "identifier": "com.apple.CoreSimulator.SimRuntime.iOS-18-2", "platform": "iOS", "version": "18.2", "isAvailable": true}
  ],
  "devices": {
    "com.apple.CoreSimulator.SimRuntime.iOS-18-2": [
      {"udid": "AAAA-1111", "name": "iPhone 16 Pro", "state": "Booted", "deviceTypeIdentifier": "com.apple.CoreSimulator.SimDeviceType.iPhone-16-Pro", "isAvailable": true},
      {"udid": "BBBB-2222", "name": "iPad Pro 11-inch (M4)", "state": "Shutdown", "deviceTypeIdentifier": "com.apple.CoreSimulator.SimDeviceType.iPad-Pro-11-inch-M4", "isAvailable": true}
    ],
    "com.apple.CoreSimulator.SimRuntime.iOS-17-5": [
      {"udid": "CCCC-3333", "name": "iPhone SE (3rd generation)", "state": "Shutdown", "deviceTypeIdentifier": "com.apple.CoreSimulator.SimDeviceType.iPhone-SE-3rd-generation", "isAvailable": false, "availabilityError": "runtime profile not found"}
    ]
  }
}`

func TestParseList(t *testing.T) {
	list, err := parseList([]byte(sampleListJSON))
	if err != nil {
		t.Fatalf("parseList failed: %v", err)
	}

	if len(list.DeviceTypes) != 3 {
		t.Errorf("expected 3 device types, got %d", len(list.DeviceTypes))
	}
	if len(list.Runtimes) != 3 {
		t.Errorf("expected 3 runtimes, got %d", len(list.Runtimes))
	}
	if len(list.Devices) != 2 {
		t.Errorf("expected devices under 2 runtimes, got %d", len(list.Devices))
	}

	// Catalog order must be preserved as simctl printed it
	if list.DeviceTypes[0].Name != "iPhone SE (3rd generation)" {
		t.Errorf("first device type = %q, want the SE", list.DeviceTypes[0].Name)
	}
	if list.Runtimes[2].Identifier != "com.apple.CoreSimulator.SimRuntime.iOS-18-2" {
		t.Errorf("last runtime = %q, want iOS 18.2", list.Runtimes[2].Identifier)
	}
}

func TestParseListInvalid(t *testing.T) {
	if _, err := parseList([]byte("{not json")); err == nil {
		t.Error("parseList should fail on invalid JSON")
	}
}

func TestListAllDevices(t *testing.T) {
	list, err := parseList([]byte(sampleListJSON))
	if err != nil {
		t.Fatalf("parseList failed: %v", err)
	}

	devices := list.AllDevices()
	if len(devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(devices))
	}

	// Every device carries the runtime it was grouped under
	byUDID := make(map[string]Device)
	for _, d := range devices {
		byUDID[d.UDID] = d
	}

	if byUDID["AAAA-1111"].RuntimeIdentifier != "com.apple.CoreSimulator.SimRuntime.iOS-18-2" {
		t.Errorf("AAAA-1111 runtime = %q, want iOS 18.2", byUDID["AAAA-1111"].RuntimeIdentifier)
	}
	if byUDID["CCCC-3333"].RuntimeIdentifier != "com.apple.CoreSimulator.SimRuntime.iOS-17-5" {
		t.Errorf("CCCC-3333 runtime = %q, want iOS 17.5", byUDID["CCCC-3333"].RuntimeIdentifier)
	}

	udids := []string{devices[0].UDID, devices[1].UDID, devices[2].UDID}
	sort.Strings(udids)
	want := []string{"AAAA-1111", "BBBB-2222", "CCCC-3333"}
	for i := range want {
		if udids[i] != want[i] {
			t.Errorf("udids[%d] = %q, want %q", i, udids[i], want[i])
		}
	}
}

func TestListFindDevice(t *testing.T) {
	list, err := parseList([]byte(sampleListJSON))
	if err != nil {
		t.Fatalf("parseList failed: %v", err)
	}

	t.Run("present", func(t *testing.T) {
		d, ok := list.FindDevice("BBBB-2222")
		if !ok {
			t.Fatal("FindDevice should locate BBBB-2222")
		}
		if d.Name != "iPad Pro 11-inch (M4)" {
			t.Errorf("name = %q, want iPad Pro", d.Name)
		}
		if d.RuntimeIdentifier != "com.apple.CoreSimulator.SimRuntime.iOS-18-2" {
			t.Errorf("runtime = %q, want iOS 18.2", d.RuntimeIdentifier)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if _, ok := list.FindDevice("ZZZZ-9999"); ok {
			t.Error("FindDevice should not locate ZZZZ-9999")
		}
	})
}

func TestRuntimeIsIOS(t *testing.T) {
	tests := []struct {
		name    string
		runtime Runtime
		want    bool
	}{
		{"iOS by platform", Runtime{Platform: "iOS"}, true},
		{"watchOS by platform", Runtime{Platform: "watchOS"}, false},
		{"tvOS by platform", Runtime{Platform: "tvOS"}, false},
		{"iOS by identifier fallback", Runtime{Identifier: "com.apple.CoreSimulator.SimRuntime.iOS-16-4"}, true},
		{"watchOS by identifier fallback", Runtime{Identifier: "com.apple.CoreSimulator.SimRuntime.watchOS-10-0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.runtime.IsIOS(); got != tt.want {
				t.Errorf("IsIOS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeviceIsBooted(t *testing.T) {
	if !(Device{State: StateBooted}).IsBooted() {
		t.Error("Booted device should report IsBooted")
	}
	if (Device{State: StateShutdown}).IsBooted() {
		t.Error("Shutdown device should not report IsBooted")
	}
	if (Device{State: StateBooting}).IsBooted() {
		t.Error("Booting device should not report IsBooted")
	}
}
