package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify simdeck configuration",
	Long: `View or modify simdeck configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  simdeck config set device.default_type "iPhone 16 Pro"
  simdeck config set server.listen 127.0.0.1:8130
  simdeck config set sweeper.destroy_timeout 45s

Valid keys:
  output_dir              - Directory for screenshots and recordings
  automation.binary       - UI automation binary (axe)
  simctl.binary           - Simulator control binary (xcrun)
  device.default_type     - Device type used when device_start gives none
  server.listen           - HTTP listen address (empty disables HTTP)
  server.filtered_tools   - Comma-separated tool names to hide
  sweeper.destroy_timeout - Per-device teardown budget at shutdown
  log.level               - Log level (debug/info/warn/error)
  log.file                - Log file path (empty logs to stderr)
  log.max_size_mb         - Log size before rotation
  log.max_backups         - Rotated log files to keep`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/simdeck/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Printf("output_dir: %s\n", cfg.ResolveOutputDir())

	fmt.Println("automation:")
	fmt.Printf("  binary: %s\n", cfg.Automation.Binary)

	fmt.Println("simctl:")
	fmt.Printf("  binary: %s\n", cfg.Simctl.Binary)

	fmt.Println("device:")
	fmt.Printf("  default_type: %s\n", cfg.Device.DefaultType)

	fmt.Println("server:")
	if cfg.Server.Listen != "" {
		fmt.Printf("  listen: %s\n", cfg.Server.Listen)
	} else {
		fmt.Printf("  listen: (stdio only)\n")
	}
	if len(cfg.Server.FilteredTools) > 0 {
		fmt.Printf("  filtered_tools: %s\n", strings.Join(cfg.Server.FilteredTools, ", "))
	} else {
		fmt.Printf("  filtered_tools: (none)\n")
	}

	fmt.Println("sweeper:")
	fmt.Printf("  destroy_timeout: %s\n", cfg.Sweeper.DestroyTimeout)

	fmt.Println("log:")
	fmt.Printf("  level: %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Printf("  file: %s\n", cfg.Log.File)
	} else {
		fmt.Printf("  file: (stderr)\n")
	}
	fmt.Printf("  max_size_mb: %d\n", cfg.Log.MaxSizeMB)
	fmt.Printf("  max_backups: %d\n", cfg.Log.MaxBackups)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"output_dir":              "string",
		"automation.binary":       "string",
		"simctl.binary":           "string",
		"device.default_type":     "string",
		"server.listen":           "string",
		"server.filtered_tools":   "list",
		"sweeper.destroy_timeout": "duration",
		"log.level":               "string",
		"log.file":                "string",
		"log.max_size_mb":         "int",
		"log.max_backups":         "int",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'simdeck config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue any
	switch keyType {
	case "string":
		if key == "log.level" && logging.ParseLevel(value) != strings.ToUpper(value) {
			return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(logging.ValidLevels(), ", "))
		}
		typedValue = value
	case "list":
		parts := strings.Split(value, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		typedValue = list
	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected a duration like 30s or 1m", key)
		}
		if d < 0 {
			return fmt.Errorf("invalid value for %s: must not be negative", key)
		}
		typedValue = d.String()
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'simdeck config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Generate a commented config file
	configContent := `# Simdeck Configuration
# See: https://github.com/Iron-Ham/simdeck

# Directory for screenshots and recordings. Empty uses the system temp
# directory. A leading ~ expands to the home directory.
output_dir: ""

# UI automation settings
automation:
  # Binary used for describe/tap/type/swipe (AXe)
  binary: axe

# Simulator control settings
simctl:
  # Binary used for device lifecycle and capture; invoked as "<binary> simctl ..."
  binary: xcrun

# Device settings
device:
  # Device type keyword used when device_start names none, matched against
  # the catalog case-insensitively (e.g. iPhone 16 Pro, iPad)
  default_type: iPhone

# Server settings
server:
  # HTTP listen address, e.g. 127.0.0.1:8130. Empty serves stdio only.
  listen: ""
  # Tool names to hide from clients, e.g. [record_video, stop_recording]
  filtered_tools: []

# Shutdown sweeper settings
sweeper:
  # Budget for tearing down a single device at shutdown
  destroy_timeout: 10s

# Logging settings
log:
  # debug, info, warn, or error
  level: info
  # Log file path. Empty logs to stderr.
  file: ""
  # Log size in megabytes before rotation (0 disables rotation)
  max_size_mb: 10
  # Rotated log files to keep
  max_backups: 3
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize simdeck's behavior.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/simdeck/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: SIMDECK_* (e.g., SIMDECK_SERVER_LISTEN)")

	return nil
}
