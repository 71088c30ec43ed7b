// Package tui provides an interactive browser over the simulator device
// catalog: navigate devices, boot or shut them down, and pick a UDID to
// attach a session to.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/simdeck/internal/simctl"
	"github.com/Iron-Ham/simdeck/internal/util"
)

// catalogTimeout bounds each simctl invocation issued from the browser.
const catalogTimeout = 30 * time.Second

type state int

const (
	stateLoading state = iota
	stateBrowse
	stateError
)

// row is one device line in the browser.
type row struct {
	Device  simctl.Device
	Runtime string
}

// Model is the bubbletea model for the device browser.
type Model struct {
	client  *simctl.Client
	state   state
	rows    []row
	cursor  int
	spinner spinner.Model
	status  string
	err     error
	width   int

	selected string
}

type devicesLoadedMsg struct{ list *simctl.List }

type loadFailedMsg struct{ err error }

type actionDoneMsg struct {
	verb string
	udid string
	err  error
}

// New builds a browser over the given simulator client.
func New(client *simctl.Client) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = Spinner

	return Model{
		client:  client,
		state:   stateLoading,
		spinner: s,
	}
}

// SelectedUDID returns the UDID picked with enter, or "" if the browser
// was quit without a selection.
func (m Model) SelectedUDID() string {
	return m.selected
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadDevices(m.client))
}

func loadDevices(client *simctl.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()

		list, err := client.List(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return devicesLoadedMsg{list: list}
	}
}

func bootDevice(client *simctl.Client, udid string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()
		return actionDoneMsg{verb: "boot", udid: udid, err: client.Boot(ctx, udid)}
	}
}

func shutdownDevice(client *simctl.Client, udid string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), catalogTimeout)
		defer cancel()
		return actionDoneMsg{verb: "shutdown", udid: udid, err: client.Shutdown(ctx, udid)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case devicesLoadedMsg:
		m.rows = buildRows(msg.list)
		m.state = stateBrowse
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case loadFailedMsg:
		m.state = stateError
		m.err = msg.err
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s %s failed: %v", msg.verb, msg.udid, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s %s done", msg.verb, msg.udid)
		m.state = stateLoading
		return m, loadDevices(m.client)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state == stateError {
		switch msg.String() {
		case "r":
			m.state = stateLoading
			m.err = nil
			return m, loadDevices(m.client)
		default:
			return m, tea.Quit
		}
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "r":
		m.state = stateLoading
		m.status = ""
		return m, loadDevices(m.client)

	case "enter":
		if m.state == stateBrowse && len(m.rows) > 0 {
			m.selected = m.rows[m.cursor].Device.UDID
			return m, tea.Quit
		}

	case "b":
		if r, ok := m.current(); ok {
			if r.Device.IsBooted() {
				m.status = fmt.Sprintf("%s is already booted", r.Device.Name)
				return m, nil
			}
			m.status = fmt.Sprintf("booting %s...", r.Device.Name)
			return m, bootDevice(m.client, r.Device.UDID)
		}

	case "s":
		if r, ok := m.current(); ok {
			if !r.Device.IsBooted() {
				m.status = fmt.Sprintf("%s is not booted", r.Device.Name)
				return m, nil
			}
			m.status = fmt.Sprintf("shutting down %s...", r.Device.Name)
			return m, shutdownDevice(m.client, r.Device.UDID)
		}
	}

	return m, nil
}

func (m Model) current() (row, bool) {
	if m.state != stateBrowse || len(m.rows) == 0 {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// buildRows flattens the catalog into display rows: booted devices first,
// then by runtime and name so the list is stable across refreshes.
func buildRows(list *simctl.List) []row {
	runtimeNames := make(map[string]string, len(list.Runtimes))
	for _, rt := range list.Runtimes {
		runtimeNames[rt.Identifier] = rt.Name
	}

	var rows []row
	for _, d := range list.AllDevices() {
		if !d.IsAvailable {
			continue
		}
		name := runtimeNames[d.RuntimeIdentifier]
		if name == "" {
			name = d.RuntimeIdentifier
		}
		rows = append(rows, row{Device: d, Runtime: name})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Device.IsBooted() != rows[j].Device.IsBooted() {
			return rows[i].Device.IsBooted()
		}
		if rows[i].Runtime != rows[j].Runtime {
			return rows[i].Runtime < rows[j].Runtime
		}
		return rows[i].Device.Name < rows[j].Device.Name
	})
	return rows
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(Title.Render("simdeck devices"))
	b.WriteString("\n")
	b.WriteString(Subtitle.Render("simulator devices on this machine"))
	b.WriteString("\n\n")

	switch m.state {
	case stateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" loading simulator devices...\n")

	case stateError:
		b.WriteString(ErrorText.Render("could not load devices"))
		b.WriteString("\n")
		b.WriteString(Muted.Render(m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(helpBar([][2]string{{"r", "retry"}, {"q", "quit"}}))
		return b.String()

	case stateBrowse:
		if len(m.rows) == 0 {
			b.WriteString(Muted.Render("no simulator devices available"))
			b.WriteString("\n")
		}
		for i, r := range m.rows {
			prefix := "  "
			style := Item
			if i == m.cursor {
				prefix = cursorMarker()
				style = Selected
			}
			line := stateIndicator(r.Device.State) + " " + style.Render(padName(r.Device.Name))
			detail := Muted.Render(fmt.Sprintf("%s  %s", r.Runtime, r.Device.UDID))
			row := prefix + line + "  " + detail
			if m.width > 0 {
				row = util.TruncateANSI(row, m.width)
			}
			b.WriteString(row + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StatusText.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpBar([][2]string{
		{"↑/k", "up"}, {"↓/j", "down"}, {"enter", "select"},
		{"b", "boot"}, {"s", "shutdown"}, {"r", "refresh"}, {"q", "quit"},
	}))
	return b.String()
}

// padName clips and pads a device name into a fixed column so runtimes
// and UDIDs line up regardless of name length.
func padName(name string) string {
	const width = 28
	return util.PadRight(util.TruncateString(name, width), width)
}

func helpBar(bindings [][2]string) string {
	parts := make([]string, 0, len(bindings))
	for _, kv := range bindings {
		parts = append(parts, HelpKey.Render(kv[0])+" "+Help.Render(kv[1]))
	}
	return Help.Render(strings.Join(parts, "  "))
}

// stateIndicator renders a device state as a fixed-width colored badge.
// Padding happens before styling so ANSI escapes do not skew columns.
func stateIndicator(state string) string {
	switch state {
	case simctl.StateBooted:
		return statusBooted.Render(padBadge("● booted"))
	case simctl.StateShutdown:
		return statusShutdown.Render(padBadge("○ shutdown"))
	default:
		return statusTransitional.Render(padBadge("◐ " + strings.ToLower(state)))
	}
}

func padBadge(label string) string {
	return util.PadRight(label, 14)
}

// PlainTable renders the catalog as an unstyled fixed-width table, for the
// --plain flag and any caller without a terminal. Same rows and order as
// the interactive browser.
func PlainTable(list *simctl.List) string {
	rows := buildRows(list)
	if len(rows) == 0 {
		return "no simulator devices available\n"
	}

	var b strings.Builder
	line := func(name, state, runtime, udid string) {
		b.WriteString(padName(name))
		b.WriteString("  ")
		b.WriteString(util.PadRight(state, 10))
		b.WriteString("  ")
		b.WriteString(util.PadRight(runtime, 18))
		b.WriteString("  ")
		b.WriteString(udid)
		b.WriteString("\n")
	}

	line("NAME", "STATE", "RUNTIME", "UDID")
	for _, r := range rows {
		line(r.Device.Name, r.Device.State, r.Runtime, r.Device.UDID)
	}
	return b.String()
}
