package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/Iron-Ham/simdeck/internal/errors"
	"github.com/Iron-Ham/simdeck/internal/simctl"
	"github.com/Iron-Ham/simdeck/internal/tui"
	"github.com/spf13/cobra"
)

// catalogTimeout bounds the one-shot catalog fetch of --plain.
const catalogTimeout = 30 * time.Second

var devicesPlain bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Browse simulator devices",
	Long: `Browse the simulator device catalog interactively.

Devices can be booted (b) and shut down (s) from the list. Selecting a
device with enter prints its UDID to stdout, ready to paste into a
device_attach call. With --plain the catalog is printed as a table
instead, for scripts and terminals without TTY support.

Colors can be customized by placing a theme.yaml next to the config file
(run 'simdeck config path' to locate it).`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesPlain, "plain", false, "print the device table and exit")
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	// No logger here: stderr belongs to the TUI while the browser runs.
	client := simctl.NewClient(cfg.Simctl.Binary, nil)

	if devicesPlain {
		ctx, cancel := context.WithTimeout(cmd.Context(), catalogTimeout)
		defer cancel()

		list, err := client.List(ctx)
		if err != nil {
			return err
		}
		fmt.Print(tui.PlainTable(list))
		return nil
	}

	if err := applyCustomTheme(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.New(client), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("device browser: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		if udid := m.SelectedUDID(); udid != "" {
			fmt.Println(udid)
		}
	}
	return nil
}

// applyCustomTheme installs theme.yaml from the config directory when one
// exists. A missing file means the default palette; a present but invalid
// file is an error, because silently ignoring it would hide the typo.
func applyCustomTheme() error {
	path := filepath.Join(config.ConfigDir(), "theme.yaml")
	theme, err := tui.LoadTheme(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	theme.Apply()
	return nil
}
