package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/Iron-Ham/simdeck/internal/tui"
	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// isolateConfig points the config machinery at throwaway directories so
// tests never read or write the developer's real config.
func isolateConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Chdir(dir)
	return dir
}

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}

	if rootCmd.Use != "simdeck" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "simdeck")
	}

	// Check for expected subcommands (compare by Name(), not Use which includes args)
	expectedCmds := []string{"serve", "devices", "config", "logs", "version"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}

	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestConfigSetUnknownKey(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(rootCmd, "config", "set", "bogus.key", "1")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown configuration key") {
		t.Errorf("error = %q, want mention of unknown configuration key", err)
	}
}

func TestConfigSetValidation(t *testing.T) {
	isolateConfig(t)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"bad level", []string{"config", "set", "log.level", "verbose"}, "Valid options"},
		{"bad duration", []string{"config", "set", "sweeper.destroy_timeout", "soon"}, "duration"},
		{"negative duration", []string{"config", "set", "sweeper.destroy_timeout", "-5s"}, "negative"},
		{"bad int", []string{"config", "set", "log.max_backups", "many"}, "integer"},
		{"negative int", []string{"config", "set", "log.max_size_mb", "-1"}, "non-negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executeCommand(rootCmd, tc.args...)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want substring %q", err, tc.want)
			}
		})
	}
}

func TestConfigSetWritesFile(t *testing.T) {
	dir := isolateConfig(t)

	if _, err := executeCommand(rootCmd, "config", "set", "device.default_type", "iPad Air"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	configFile := filepath.Join(dir, "xdg", "simdeck", "config.yaml")
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "iPad Air") {
		t.Errorf("config file missing value:\n%s", data)
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolateConfig(t)

	if _, err := executeCommand(rootCmd, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	configFile := filepath.Join(dir, "xdg", "simdeck", "config.yaml")
	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	for _, key := range []string{"output_dir", "default_type", "destroy_timeout", "filtered_tools"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("generated config missing %q", key)
		}
	}

	// A second init must refuse to clobber the existing file.
	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("expected error when config file already exists")
	}
}

func TestApplyCustomTheme(t *testing.T) {
	t.Cleanup(func() { tui.DefaultTheme().Apply() })

	t.Run("missing file uses defaults", func(t *testing.T) {
		isolateConfig(t)

		if err := applyCustomTheme(); err != nil {
			t.Errorf("applyCustomTheme() = %v, want nil for absent theme", err)
		}
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		isolateConfig(t)

		path := filepath.Join(config.ConfigDir(), "theme.yaml")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("name: Broken\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		err := applyCustomTheme()
		if err == nil {
			t.Fatal("expected error for invalid theme file")
		}
		if !strings.Contains(err.Error(), "invalid theme") {
			t.Errorf("error = %q, want mention of invalid theme", err)
		}
	})
}

func TestLogsRequiresLogFile(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(rootCmd, "logs")
	if err == nil {
		t.Fatal("expected error without a configured log file")
	}
	if !strings.Contains(err.Error(), "log.file") {
		t.Errorf("error = %q, want mention of log.file", err)
	}
}

func writeLogFile(t *testing.T, dir string) string {
	t.Helper()

	logPath := filepath.Join(dir, "simdeck.log")
	lines := strings.Join([]string{
		`{"time":"2026-08-23T10:00:00.000Z","level":"INFO","msg":"session started","session_id":"agent-1","instance_id":"UDID-1"}`,
		`{"time":"2026-08-23T10:00:01.000Z","level":"WARN","msg":"tool call failed","session_id":"agent-2","tool":"ui_tap"}`,
		`{"time":"2026-08-23T10:00:02.000Z","level":"INFO","msg":"session destroyed","session_id":"agent-1"}`,
	}, "\n") + "\n"
	if err := os.WriteFile(logPath, []byte(lines), 0o644); err != nil {
		t.Fatalf("writing log file: %v", err)
	}
	return logPath
}

func TestCollectLogEntriesFilters(t *testing.T) {
	logPath := writeLogFile(t, t.TempDir())

	entries, err := collectLogEntries(logPath, logging.LogFilter{SessionID: "agent-1"}, nil)
	if err != nil {
		t.Fatalf("collectLogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries for agent-1, want 2", len(entries))
	}
	for _, e := range entries {
		if e.SessionID != "agent-1" {
			t.Errorf("entry leaked through session filter: %+v", e)
		}
	}
}

func TestCollectLogEntriesGrep(t *testing.T) {
	logPath := writeLogFile(t, t.TempDir())

	re := regexp.MustCompile("failed|destroyed")
	entries, err := collectLogEntries(logPath, logging.LogFilter{}, re)
	if err != nil {
		t.Fatalf("collectLogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d grep matches, want 2", len(entries))
	}
}

func TestBuildLogFilter(t *testing.T) {
	logsLevel = "warn"
	logsSince = "30m"
	logsSessionID = "agent-9"
	defer func() {
		logsLevel, logsSince, logsSessionID = "", "", ""
	}()

	filter, re, err := buildLogFilter()
	if err != nil {
		t.Fatalf("buildLogFilter: %v", err)
	}
	if filter.Level != logging.LevelWarn {
		t.Errorf("Level = %q, want %q", filter.Level, logging.LevelWarn)
	}
	if filter.SessionID != "agent-9" {
		t.Errorf("SessionID = %q, want agent-9", filter.SessionID)
	}
	if time.Since(filter.StartTime) < 29*time.Minute || time.Since(filter.StartTime) > 31*time.Minute {
		t.Errorf("StartTime = %v, want about 30m ago", filter.StartTime)
	}
	if re != nil {
		t.Error("expected nil regex when --grep is unset")
	}
}

func TestBuildLogFilterBadInputs(t *testing.T) {
	logsSince = "eventually"
	defer func() { logsSince = "" }()
	if _, _, err := buildLogFilter(); err == nil {
		t.Error("expected error for bad --since duration")
	}
	logsSince = ""

	logsGrep = "("
	defer func() { logsGrep = "" }()
	if _, _, err := buildLogFilter(); err == nil {
		t.Error("expected error for bad --grep pattern")
	}
}

func TestFormatLogEntry(t *testing.T) {
	entry := logging.LogEntry{
		Timestamp:  time.Date(2026, 8, 23, 10, 4, 5, 0, time.UTC),
		Level:      logging.LevelWarn,
		Message:    "tool call failed",
		SessionID:  "agent-1",
		InstanceID: "UDID-1",
		Tool:       "ui_tap",
		Attrs:      map[string]any{"error": "boom"},
	}

	out := formatLogEntry(&entry)
	for _, want := range []string{"[WARN]", "tool call failed", "session_id=agent-1", "instance_id=UDID-1", "tool=ui_tap", "error="} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted entry missing %q:\n%s", want, out)
		}
	}
}

func TestLogsExport(t *testing.T) {
	dir := isolateConfig(t)
	logPath := writeLogFile(t, dir)

	configYAML := "log:\n  file: " + logPath + "\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	outPath := filepath.Join(dir, "out.json")
	logsSessionID = "agent-1"
	defer func() { logsSessionID = "" }()

	if _, err := executeCommand(rootCmd, "logs", "export", outPath, "-s", "agent-1"); err != nil {
		t.Fatalf("logs export failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("export file not written: %v", err)
	}
	if !strings.Contains(string(data), "session started") {
		t.Errorf("export missing expected entry:\n%s", data)
	}
	if strings.Contains(string(data), "agent-2") {
		t.Errorf("export leaked filtered session:\n%s", data)
	}
}
