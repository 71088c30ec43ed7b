package config

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sweeper.destroy_timeout")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// toolNameRegex validates filtered tool name entries.
// Tool names are lowercase snake_case identifiers like "ui_tap" or "device_start".
var toolNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate output directory
	errors = append(errors, c.validateOutputDir()...)

	// Validate automation config
	errors = append(errors, c.validateAutomation()...)

	// Validate simctl config
	errors = append(errors, c.validateSimctl()...)

	// Validate device config
	errors = append(errors, c.validateDevice()...)

	// Validate server config
	errors = append(errors, c.validateServer()...)

	// Validate sweeper config
	errors = append(errors, c.validateSweeper()...)

	// Validate log config
	errors = append(errors, c.validateLog()...)

	return errors
}

// validateOutputDir validates the output directory path
func (c *Config) validateOutputDir() []ValidationError {
	var errors []ValidationError

	if c.OutputDir != "" {
		path := c.OutputDir

		// Check for null bytes which are invalid in paths
		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "output_dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "output_dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}

// validateAutomation validates the AutomationConfig
func (c *Config) validateAutomation() []ValidationError {
	return validateBinary(c.Automation.Binary, "automation.binary")
}

// validateSimctl validates the SimctlConfig
func (c *Config) validateSimctl() []ValidationError {
	return validateBinary(c.Simctl.Binary, "simctl.binary")
}

// validateBinary validates an executable name or path
func validateBinary(binary, field string) []ValidationError {
	var errors []ValidationError

	if binary == "" {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   binary,
			Message: "cannot be empty",
		})
		return errors
	}

	if strings.ContainsRune(binary, '\x00') {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   binary,
			Message: "contains invalid null character",
		})
	}

	return errors
}

// validateDevice validates the DeviceConfig
func (c *Config) validateDevice() []ValidationError {
	var errors []ValidationError

	if c.Device.DefaultType == "" {
		errors = append(errors, ValidationError{
			Field:   "device.default_type",
			Value:   c.Device.DefaultType,
			Message: "cannot be empty",
		})
	}

	// Device type names in the catalog are short; anything longer is a mistake
	const maxDeviceTypeLength = 100
	if len(c.Device.DefaultType) > maxDeviceTypeLength {
		errors = append(errors, ValidationError{
			Field:   "device.default_type",
			Value:   c.Device.DefaultType,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", maxDeviceTypeLength),
		})
	}

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	// Validate filtered tool entries
	seen := make(map[string]bool)
	for i, tool := range c.Server.FilteredTools {
		fieldName := fmt.Sprintf("server.filtered_tools[%d]", i)
		trimmed := strings.TrimSpace(tool)

		if trimmed == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   tool,
				Message: "tool name cannot be empty",
			})
			continue
		}

		if !toolNameRegex.MatchString(trimmed) {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   tool,
				Message: "must be a lowercase identifier like 'ui_tap'",
			})
		}

		if seen[trimmed] {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   tool,
				Message: "duplicate tool name",
			})
		}
		seen[trimmed] = true
	}

	// Validate listen address if HTTP transport is enabled
	if c.Server.Listen != "" {
		host, port, err := net.SplitHostPort(c.Server.Listen)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   "server.listen",
				Value:   c.Server.Listen,
				Message: "must be a host:port address like '127.0.0.1:8787'",
			})
		} else if port == "" {
			errors = append(errors, ValidationError{
				Field:   "server.listen",
				Value:   c.Server.Listen,
				Message: "port cannot be empty",
			})
		}
		_ = host // empty host binds all interfaces, which is valid
	}

	return errors
}

// validateSweeper validates the SweeperConfig
func (c *Config) validateSweeper() []ValidationError {
	var errors []ValidationError

	if c.Sweeper.DestroyTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sweeper.destroy_timeout",
			Value:   c.Sweeper.DestroyTimeout,
			Message: "must be positive",
		})
	}

	// Shutdown should never hang for long; cap the per-device budget
	const maxDestroyTimeout = 10 * time.Minute
	if c.Sweeper.DestroyTimeout > maxDestroyTimeout {
		errors = append(errors, ValidationError{
			Field:   "sweeper.destroy_timeout",
			Value:   c.Sweeper.DestroyTimeout,
			Message: fmt.Sprintf("exceeds maximum of %s", maxDestroyTimeout),
		})
	}

	return errors
}

// validateLog validates the LogConfig
func (c *Config) validateLog() []ValidationError {
	var errors []ValidationError

	// Validate log level (case insensitive, to match the logging package)
	if c.Log.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Log.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "log.max_size_mb",
			Value:   c.Log.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Log.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "log.max_size_mb",
			Value:   c.Log.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Log.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "log.max_backups",
			Value:   c.Log.MaxBackups,
			Message: "must be non-negative",
		})
	}

	// Validate log file path if specified
	if c.Log.File != "" {
		if strings.ContainsRune(c.Log.File, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "log.file",
				Value:   c.Log.File,
				Message: "path contains invalid null character",
			})
		}
	}

	return errors
}
