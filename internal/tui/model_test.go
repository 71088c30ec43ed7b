package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/simdeck/internal/simctl"
)

func testCatalog() *simctl.List {
	return &simctl.List{
		Runtimes: []simctl.Runtime{
			{Name: "iOS 18.2", Identifier: "com.apple.CoreSimulator.SimRuntime.iOS-18-2", Platform: "iOS", IsAvailable: true},
		},
		Devices: map[string][]simctl.Device{
			"com.apple.CoreSimulator.SimRuntime.iOS-18-2": {
				{UDID: "AAA-1", Name: "iPhone 16 Pro", State: simctl.StateShutdown, IsAvailable: true},
				{UDID: "BBB-2", Name: "iPad Air", State: simctl.StateBooted, IsAvailable: true},
				{UDID: "CCC-3", Name: "Broken", State: simctl.StateShutdown, IsAvailable: false},
			},
		},
	}
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := New(nil)
	updated, _ := m.Update(devicesLoadedMsg{list: testCatalog()})
	return updated.(Model)
}

func keyPress(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestDevicesLoaded(t *testing.T) {
	m := loadedModel(t)

	if m.state != stateBrowse {
		t.Fatalf("state = %d, want browse", m.state)
	}
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want 2 (unavailable devices hidden)", len(m.rows))
	}
	// Booted devices sort first.
	if m.rows[0].Device.UDID != "BBB-2" {
		t.Errorf("rows[0] = %s, want booted device first", m.rows[0].Device.UDID)
	}
	if m.rows[0].Runtime != "iOS 18.2" {
		t.Errorf("runtime = %q, want display name resolved", m.rows[0].Runtime)
	}
}

func TestLoadFailure(t *testing.T) {
	m := New(nil)
	updated, _ := m.Update(loadFailedMsg{err: errors.New("xcrun exploded")})
	m = updated.(Model)

	if m.state != stateError {
		t.Fatalf("state = %d, want error", m.state)
	}
	if !strings.Contains(m.View(), "xcrun exploded") {
		t.Errorf("view does not surface the failure:\n%s", m.View())
	}
}

func TestNavigationBounds(t *testing.T) {
	m := loadedModel(t)

	m, _ = keyPress(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.cursor)
	}

	m, _ = keyPress(t, m, "j")
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down", m.cursor)
	}
	m, _ = keyPress(t, m, "j")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, must clamp at last row", m.cursor)
	}

	m, _ = keyPress(t, m, "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up", m.cursor)
	}
}

func TestEnterSelectsDevice(t *testing.T) {
	m := loadedModel(t)
	m, _ = keyPress(t, m, "down")

	m, cmd := keyPress(t, m, "enter")
	if m.SelectedUDID() != "AAA-1" {
		t.Errorf("selected = %q, want AAA-1", m.SelectedUDID())
	}
	if cmd == nil {
		t.Fatal("enter must quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("cmd returned %T, want QuitMsg", msg)
	}
}

func TestQuitWithoutSelection(t *testing.T) {
	m := loadedModel(t)
	m, cmd := keyPress(t, m, "q")

	if m.SelectedUDID() != "" {
		t.Errorf("selected = %q, want empty", m.SelectedUDID())
	}
	if cmd == nil {
		t.Fatal("q must quit")
	}
}

func TestBootKeyOnBootedDevice(t *testing.T) {
	m := loadedModel(t)

	// Cursor starts on the booted iPad.
	m, cmd := keyPress(t, m, "b")
	if cmd != nil {
		t.Error("boot on a booted device must not issue a command")
	}
	if !strings.Contains(m.status, "already booted") {
		t.Errorf("status = %q", m.status)
	}
}

func TestBootKeyOnShutdownDevice(t *testing.T) {
	m := loadedModel(t)
	m, _ = keyPress(t, m, "down")

	m, cmd := keyPress(t, m, "b")
	if cmd == nil {
		t.Fatal("boot on a shutdown device must issue a command")
	}
	if !strings.Contains(m.status, "booting") {
		t.Errorf("status = %q", m.status)
	}
}

func TestShutdownKeyOnShutdownDevice(t *testing.T) {
	m := loadedModel(t)
	m, _ = keyPress(t, m, "down")

	m, cmd := keyPress(t, m, "s")
	if cmd != nil {
		t.Error("shutdown on a stopped device must not issue a command")
	}
	if !strings.Contains(m.status, "not booted") {
		t.Errorf("status = %q", m.status)
	}
}

func TestActionFailureShowsStatus(t *testing.T) {
	m := loadedModel(t)
	updated, cmd := m.Update(actionDoneMsg{verb: "boot", udid: "AAA-1", err: errors.New("boot wedged")})
	m = updated.(Model)

	if cmd != nil {
		t.Error("failed action must not trigger a reload")
	}
	if m.state != stateBrowse {
		t.Errorf("state = %d, want browse", m.state)
	}
	if !strings.Contains(m.status, "boot wedged") {
		t.Errorf("status = %q", m.status)
	}
}

func TestActionSuccessReloads(t *testing.T) {
	m := loadedModel(t)
	updated, cmd := m.Update(actionDoneMsg{verb: "boot", udid: "AAA-1"})
	m = updated.(Model)

	if m.state != stateLoading {
		t.Errorf("state = %d, want loading", m.state)
	}
	if cmd == nil {
		t.Error("successful action must reload the catalog")
	}
}

func TestViewListsDevices(t *testing.T) {
	m := loadedModel(t)
	view := m.View()

	for _, want := range []string{"iPhone 16 Pro", "iPad Air", "AAA-1", "BBB-2", "iOS 18.2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "CCC-3") {
		t.Errorf("view lists unavailable device:\n%s", view)
	}
}

func TestViewClipsLongNamesAndRows(t *testing.T) {
	catalog := testCatalog()
	catalog.Devices["com.apple.CoreSimulator.SimRuntime.iOS-18-2"] = append(
		catalog.Devices["com.apple.CoreSimulator.SimRuntime.iOS-18-2"],
		simctl.Device{
			UDID:        "DDD-4",
			Name:        "iPad Pro 13-inch (M4) Cellular Eng Build",
			State:       simctl.StateShutdown,
			IsAvailable: true,
		},
	)

	m := New(nil)
	updated, _ := m.Update(devicesLoadedMsg{list: catalog})
	m = updated.(Model)
	updated, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "iPad Pro 13-inch (M4) Cel...") {
		t.Errorf("long device name not clipped to the name column:\n%s", view)
	}
	if strings.Contains(view, "Eng Build") {
		t.Errorf("clipped name still shows its tail:\n%s", view)
	}
}

func TestErrorStateRetry(t *testing.T) {
	m := New(nil)
	updated, _ := m.Update(loadFailedMsg{err: errors.New("no xcode")})
	m = updated.(Model)

	m, cmd := keyPress(t, m, "r")
	if m.state != stateLoading {
		t.Errorf("state = %d, want loading after retry", m.state)
	}
	if cmd == nil {
		t.Error("retry must reload the catalog")
	}
}

func TestPlainTable(t *testing.T) {
	out := PlainTable(testCatalog())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header plus 2 devices:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("missing header: %q", lines[0])
	}
	// Booted devices sort first, same order as the browser.
	if !strings.Contains(lines[1], "iPad Air") || !strings.Contains(lines[1], "BBB-2") {
		t.Errorf("row 1 = %q, want the booted iPad Air first", lines[1])
	}
	if !strings.Contains(lines[2], "AAA-1") {
		t.Errorf("row 2 = %q, want the shutdown iPhone", lines[2])
	}
	if strings.Contains(out, "CCC-3") {
		t.Errorf("unavailable device must be hidden:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain table must carry no ANSI escapes:\n%s", out)
	}
}

func TestPlainTableEmpty(t *testing.T) {
	out := PlainTable(&simctl.List{})
	if !strings.Contains(out, "no simulator devices") {
		t.Errorf("empty catalog message missing: %q", out)
	}
}
