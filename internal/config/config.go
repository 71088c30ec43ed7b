package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete simdeck configuration
type Config struct {
	// OutputDir is the directory where screenshots and recordings are saved.
	// If empty, the system temporary directory is used.
	// Supports ~ for home directory expansion.
	OutputDir  string           `mapstructure:"output_dir"`
	Automation AutomationConfig `mapstructure:"automation"`
	Simctl     SimctlConfig     `mapstructure:"simctl"`
	Device     DeviceConfig     `mapstructure:"device"`
	Server     ServerConfig     `mapstructure:"server"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Log        LogConfig        `mapstructure:"log"`
}

// AutomationConfig controls how the UI automation binary is invoked
type AutomationConfig struct {
	// Binary is the name or path of the UI automation executable (default: "axe").
	// Can be an absolute path to use a binary outside of PATH.
	Binary string `mapstructure:"binary"`
}

// SimctlConfig controls how simulator control commands are invoked
type SimctlConfig struct {
	// Binary is the name or path of the Xcode command runner (default: "xcrun").
	// Simulator commands are invoked as "<binary> simctl ...".
	// Overridable mainly for testing against a fake binary.
	Binary string `mapstructure:"binary"`
}

// DeviceConfig controls device provisioning behavior
type DeviceConfig struct {
	// DefaultType is the device type keyword used when a session starts a
	// device without naming one (default: "iPhone"). Matching is a
	// case-insensitive substring search over the device type catalog.
	DefaultType string `mapstructure:"default_type"`
}

// ServerConfig controls the MCP server surface
type ServerConfig struct {
	// FilteredTools lists tool names to hide from clients. Filtered tools are
	// omitted from tools/list and rejected by tools/call.
	// From the environment this is a comma-separated list.
	FilteredTools []string `mapstructure:"filtered_tools"`
	// Listen is the address for the optional HTTP transport (e.g. "127.0.0.1:8787").
	// Empty (the default) serves over stdio only.
	Listen string `mapstructure:"listen"`
}

// SweeperConfig controls shutdown cleanup behavior
type SweeperConfig struct {
	// DestroyTimeout bounds each device destroy attempt during the shutdown
	// sweep (default: 10s). Accepts Go duration strings like "30s" or "2m".
	DestroyTimeout time.Duration `mapstructure:"destroy_timeout"`
}

// LogConfig controls server logging behavior
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// File is the log file path. Empty (the default) logs to stderr.
	// Stdout is never used for logs; it carries the protocol stream.
	File string `mapstructure:"file"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// HTTPEnabled reports whether the HTTP transport should be started.
func (s *ServerConfig) HTTPEnabled() bool {
	return s.Listen != ""
}

// IsFiltered reports whether the given tool name is hidden by configuration.
// Comparison trims surrounding whitespace so comma lists with spaces work.
func (s *ServerConfig) IsFiltered(tool string) bool {
	for _, t := range s.FilteredTools {
		if strings.TrimSpace(t) == tool {
			return true
		}
	}
	return false
}

// ResolveOutputDir returns the resolved output directory path.
// If OutputDir is empty, it returns the system temporary directory.
// If OutputDir starts with ~, it expands to the user's home directory.
// Relative paths are returned as-is and resolve against the working directory.
func (c *Config) ResolveOutputDir() string {
	if c.OutputDir == "" {
		return os.TempDir()
	}

	path := c.OutputDir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return path
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		OutputDir: "", // Empty means use the system temp directory
		Automation: AutomationConfig{
			Binary: "axe",
		},
		Simctl: SimctlConfig{
			Binary: "xcrun",
		},
		Device: DeviceConfig{
			DefaultType: "iPhone",
		},
		Server: ServerConfig{
			FilteredTools: []string{},
			Listen:        "", // Empty means stdio only
		},
		Sweeper: SweeperConfig{
			DestroyTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "", // Empty means stderr
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("output_dir", defaults.OutputDir)

	// Automation defaults
	viper.SetDefault("automation.binary", defaults.Automation.Binary)

	// Simctl defaults
	viper.SetDefault("simctl.binary", defaults.Simctl.Binary)

	// Device defaults
	viper.SetDefault("device.default_type", defaults.Device.DefaultType)

	// Server defaults
	viper.SetDefault("server.filtered_tools", defaults.Server.FilteredTools)
	viper.SetDefault("server.listen", defaults.Server.Listen)

	// Sweeper defaults
	viper.SetDefault("sweeper.destroy_timeout", defaults.Sweeper.DestroyTimeout)

	// Log defaults
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.max_size_mb", defaults.Log.MaxSizeMB)
	viper.SetDefault("log.max_backups", defaults.Log.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "simdeck")
	}
	// Fall back to ~/.config/simdeck
	home, err := os.UserHomeDir()
	if err != nil {
		return ".simdeck"
	}
	return filepath.Join(home, ".config", "simdeck")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
