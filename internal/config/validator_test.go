package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

// hasFieldError reports whether errs contains an error for the given field.
func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

// hasFieldPrefixError reports whether errs contains an error whose field
// starts with the given prefix (for indexed fields like filtered_tools[0]).
func hasFieldPrefixError(errs []ValidationError, prefix string) bool {
	for _, err := range errs {
		if strings.HasPrefix(err.Field, prefix) {
			return true
		}
	}
	return false
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate_OutputDir(t *testing.T) {
	t.Run("empty is valid", func(t *testing.T) {
		cfg := Default()
		cfg.OutputDir = ""
		errs := cfg.Validate()
		if hasFieldError(errs, "output_dir") {
			t.Error("empty output_dir should be valid")
		}
	})

	t.Run("normal path is valid", func(t *testing.T) {
		cfg := Default()
		cfg.OutputDir = "/var/captures"
		errs := cfg.Validate()
		if hasFieldError(errs, "output_dir") {
			t.Error("normal path should be valid")
		}
	})

	t.Run("null byte is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.OutputDir = "/var/cap\x00tures"
		errs := cfg.Validate()
		if !hasFieldError(errs, "output_dir") {
			t.Error("expected error for path with null byte")
		}
	})

	t.Run("excessive length is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.OutputDir = "/" + strings.Repeat("a", 5000)
		errs := cfg.Validate()
		if !hasFieldError(errs, "output_dir") {
			t.Error("expected error for excessively long path")
		}
	})
}

func TestConfig_Validate_Binaries(t *testing.T) {
	t.Run("empty automation binary", func(t *testing.T) {
		cfg := Default()
		cfg.Automation.Binary = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "automation.binary") {
			t.Error("expected error for empty automation binary")
		}
	})

	t.Run("empty simctl binary", func(t *testing.T) {
		cfg := Default()
		cfg.Simctl.Binary = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "simctl.binary") {
			t.Error("expected error for empty simctl binary")
		}
	})

	t.Run("absolute path is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Automation.Binary = "/usr/local/bin/axe"
		errs := cfg.Validate()
		if hasFieldError(errs, "automation.binary") {
			t.Error("absolute binary path should be valid")
		}
	})

	t.Run("null byte is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Simctl.Binary = "xc\x00run"
		errs := cfg.Validate()
		if !hasFieldError(errs, "simctl.binary") {
			t.Error("expected error for binary with null byte")
		}
	})
}

func TestConfig_Validate_Device(t *testing.T) {
	t.Run("empty default type", func(t *testing.T) {
		cfg := Default()
		cfg.Device.DefaultType = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "device.default_type") {
			t.Error("expected error for empty default type")
		}
	})

	t.Run("normal keyword is valid", func(t *testing.T) {
		for _, keyword := range []string{"iPhone", "iPad Pro", "iPhone 16 Pro Max"} {
			cfg := Default()
			cfg.Device.DefaultType = keyword
			errs := cfg.Validate()
			if hasFieldError(errs, "device.default_type") {
				t.Errorf("keyword %q should be valid", keyword)
			}
		}
	})

	t.Run("excessive length is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Device.DefaultType = strings.Repeat("x", 150)
		errs := cfg.Validate()
		if !hasFieldError(errs, "device.default_type") {
			t.Error("expected error for excessively long default type")
		}
	})
}

func TestConfig_Validate_Server(t *testing.T) {
	t.Run("valid filtered tools", func(t *testing.T) {
		cfg := Default()
		cfg.Server.FilteredTools = []string{"ui_tap", "record_video", " screenshot "}
		errs := cfg.Validate()
		if hasFieldPrefixError(errs, "server.filtered_tools") {
			t.Errorf("valid tool names should pass, got: %v", errs)
		}
	})

	t.Run("empty tool name", func(t *testing.T) {
		cfg := Default()
		cfg.Server.FilteredTools = []string{"ui_tap", "  "}
		errs := cfg.Validate()
		if !hasFieldPrefixError(errs, "server.filtered_tools") {
			t.Error("expected error for empty tool name")
		}
	})

	t.Run("malformed tool name", func(t *testing.T) {
		tests := []string{"UI_TAP", "ui-tap", "9tap", "ui tap"}
		for _, name := range tests {
			cfg := Default()
			cfg.Server.FilteredTools = []string{name}
			errs := cfg.Validate()
			if !hasFieldPrefixError(errs, "server.filtered_tools") {
				t.Errorf("expected error for malformed tool name %q", name)
			}
		}
	})

	t.Run("duplicate tool name", func(t *testing.T) {
		cfg := Default()
		cfg.Server.FilteredTools = []string{"ui_tap", "ui_tap"}
		errs := cfg.Validate()
		if !hasFieldPrefixError(errs, "server.filtered_tools") {
			t.Error("expected error for duplicate tool name")
		}
	})

	t.Run("valid listen addresses", func(t *testing.T) {
		for _, addr := range []string{"", "127.0.0.1:8787", ":8787", "localhost:9000"} {
			cfg := Default()
			cfg.Server.Listen = addr
			errs := cfg.Validate()
			if hasFieldError(errs, "server.listen") {
				t.Errorf("listen address %q should be valid", addr)
			}
		}
	})

	t.Run("invalid listen addresses", func(t *testing.T) {
		for _, addr := range []string{"127.0.0.1", "8787", "localhost:"} {
			cfg := Default()
			cfg.Server.Listen = addr
			errs := cfg.Validate()
			if !hasFieldError(errs, "server.listen") {
				t.Errorf("expected error for listen address %q", addr)
			}
		}
	})
}

func TestConfig_Validate_Sweeper(t *testing.T) {
	t.Run("positive timeout is valid", func(t *testing.T) {
		for _, d := range []time.Duration{time.Second, 10 * time.Second, time.Minute} {
			cfg := Default()
			cfg.Sweeper.DestroyTimeout = d
			errs := cfg.Validate()
			if hasFieldError(errs, "sweeper.destroy_timeout") {
				t.Errorf("timeout %v should be valid", d)
			}
		}
	})

	t.Run("zero timeout is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Sweeper.DestroyTimeout = 0
		errs := cfg.Validate()
		if !hasFieldError(errs, "sweeper.destroy_timeout") {
			t.Error("expected error for zero timeout")
		}
	})

	t.Run("negative timeout is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Sweeper.DestroyTimeout = -time.Second
		errs := cfg.Validate()
		if !hasFieldError(errs, "sweeper.destroy_timeout") {
			t.Error("expected error for negative timeout")
		}
	})

	t.Run("excessive timeout is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Sweeper.DestroyTimeout = time.Hour
		errs := cfg.Validate()
		if !hasFieldError(errs, "sweeper.destroy_timeout") {
			t.Error("expected error for excessive timeout")
		}
	})
}

func TestConfig_Validate_Log(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO", "Debug", ""} {
			cfg := Default()
			cfg.Log.Level = level
			errs := cfg.Validate()
			if hasFieldError(errs, "log.level") {
				t.Errorf("level %q should be valid", level)
			}
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := Default()
		cfg.Log.Level = "verbose"
		errs := cfg.Validate()
		if !hasFieldError(errs, "log.level") {
			t.Error("expected error for invalid log level")
		}
	})

	t.Run("zero max size is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Log.MaxSizeMB = 0
		errs := cfg.Validate()
		if !hasFieldError(errs, "log.max_size_mb") {
			t.Error("expected error for zero max size")
		}
	})

	t.Run("excessive max size is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Log.MaxSizeMB = 2000
		errs := cfg.Validate()
		if !hasFieldError(errs, "log.max_size_mb") {
			t.Error("expected error for excessive max size")
		}
	})

	t.Run("negative max backups is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Log.MaxBackups = -1
		errs := cfg.Validate()
		if !hasFieldError(errs, "log.max_backups") {
			t.Error("expected error for negative max backups")
		}
	})

	t.Run("zero max backups is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Log.MaxBackups = 0
		errs := cfg.Validate()
		if hasFieldError(errs, "log.max_backups") {
			t.Error("zero max backups should be valid")
		}
	})

	t.Run("log file with null byte is invalid", func(t *testing.T) {
		cfg := Default()
		cfg.Log.File = "/var/log/sim\x00deck.log"
		errs := cfg.Validate()
		if !hasFieldError(errs, "log.file") {
			t.Error("expected error for log file with null byte")
		}
	})
}

func TestValidLogLevels(t *testing.T) {
	levels := ValidLogLevels()

	expected := []string{"debug", "info", "warn", "error"}
	if len(levels) != len(expected) {
		t.Fatalf("ValidLogLevels() length = %d, want %d", len(levels), len(expected))
	}

	for i, level := range expected {
		if levels[i] != level {
			t.Errorf("ValidLogLevels()[%d] = %q, want %q", i, levels[i], level)
		}
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Automation.Binary = ""
	cfg.Device.DefaultType = ""
	cfg.Sweeper.DestroyTimeout = 0
	cfg.Log.Level = "verbose"

	errs := cfg.Validate()
	if len(errs) < 4 {
		t.Errorf("expected at least 4 errors, got %d: %v", len(errs), errs)
	}
}
