package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Iron-Ham/simdeck/internal/config"
	"github.com/Iron-Ham/simdeck/internal/logging"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View server logs",
	Long: `View and filter the server's log file.

Requires log.file to be set; without it the server logs to stderr and
there is nothing to read back.

Examples:
  # Show the last 50 entries
  simdeck logs

  # All entries for one agent session
  simdeck logs -s agent-7 -n 0

  # Follow new entries in real time
  simdeck logs -f

  # Warnings and errors from the last hour
  simdeck logs --level warn --since 1h

  # Entries about a single tool
  simdeck logs --tool ui_tap

  # Search for specific patterns
  simdeck logs --grep "teardown|destroy"`,
	RunE: runLogs,
}

var logsExportCmd = &cobra.Command{
	Use:   "export <output-file>",
	Short: "Export logs to a file",
	Long: `Export filtered log entries to a file as json, text, or csv.

The filter flags of 'simdeck logs' apply here too.

Examples:
  simdeck logs export session.json -s agent-7
  simdeck logs export report.csv --format csv --level warn`,
	Args: cobra.ExactArgs(1),
	RunE: runLogsExport,
}

var (
	logsSessionID    string
	logsInstanceID   string
	logsTool         string
	logsTail         int
	logsFollow       bool
	logsLevel        string
	logsSince        string
	logsGrep         string
	logsExportFormat string
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsExportCmd)

	// Filter flags are persistent so that export shares them.
	logsCmd.PersistentFlags().StringVarP(&logsSessionID, "session", "s", "", "Filter by session ID")
	logsCmd.PersistentFlags().StringVar(&logsInstanceID, "instance", "", "Filter by simulator UDID")
	logsCmd.PersistentFlags().StringVar(&logsTool, "tool", "", "Filter by tool name")
	logsCmd.PersistentFlags().StringVar(&logsLevel, "level", "", "Filter by minimum level (debug/info/warn/error)")
	logsCmd.PersistentFlags().StringVar(&logsSince, "since", "", "Show logs since duration ago (e.g., 1h, 30m)")
	logsCmd.PersistentFlags().StringVar(&logsGrep, "grep", "", "Filter logs matching pattern (regex)")

	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output (like tail -f)")

	logsExportCmd.Flags().StringVar(&logsExportFormat, "format", "json", "Export format (json/text/csv)")
}

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// levelColor returns the ANSI color code for a log level
func levelColor(level string) string {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return colorGray
	case logging.LevelInfo:
		return colorBlue
	case logging.LevelWarn:
		return colorYellow
	case logging.LevelError:
		return colorRed
	default:
		return colorReset
	}
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(entry *logging.LogEntry) string {
	var sb strings.Builder

	// Timestamp
	sb.WriteString(colorGray)
	sb.WriteString("[")
	sb.WriteString(entry.Timestamp.Format("15:04:05.000"))
	sb.WriteString("]")
	sb.WriteString(colorReset)

	// Level with color
	sb.WriteString(" ")
	sb.WriteString(levelColor(entry.Level))
	sb.WriteString("[")
	sb.WriteString(strings.ToUpper(entry.Level))
	sb.WriteString("]")
	sb.WriteString(colorReset)

	// Message
	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	// Context fields (session_id, instance_id, tool)
	if entry.SessionID != "" {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		sb.WriteString("session_id=")
		sb.WriteString(entry.SessionID)
		sb.WriteString(colorReset)
	}
	if entry.InstanceID != "" {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		sb.WriteString("instance_id=")
		sb.WriteString(entry.InstanceID)
		sb.WriteString(colorReset)
	}
	if entry.Tool != "" {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		sb.WriteString("tool=")
		sb.WriteString(entry.Tool)
		sb.WriteString(colorReset)
	}

	// Extra fields
	for key, value := range entry.Attrs {
		sb.WriteString(" ")
		sb.WriteString(colorCyan)
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(colorReset)
		sb.WriteString(fmt.Sprintf("%v", value))
	}

	return sb.String()
}

func runLogs(cmd *cobra.Command, args []string) error {
	logPath, err := serverLogPath()
	if err != nil {
		return err
	}

	filter, grepRegex, err := buildLogFilter()
	if err != nil {
		return err
	}

	// Follow mode
	if logsFollow {
		return followLogs(logPath, filter, grepRegex)
	}

	entries, err := collectLogEntries(logPath, filter, grepRegex)
	if err != nil {
		return err
	}

	// Apply tail limit
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	for i := range entries {
		fmt.Println(formatLogEntry(&entries[i]))
	}

	if len(entries) == 0 {
		fmt.Println("No matching log entries found.")
	}

	return nil
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	logPath, err := serverLogPath()
	if err != nil {
		return err
	}

	filter, grepRegex, err := buildLogFilter()
	if err != nil {
		return err
	}

	entries, err := collectLogEntries(logPath, filter, grepRegex)
	if err != nil {
		return err
	}

	outputPath := args[0]
	if err := logging.ExportLogEntries(entries, outputPath, logsExportFormat); err != nil {
		return err
	}

	fmt.Printf("Exported %d entries to %s\n", len(entries), outputPath)
	return nil
}

// serverLogPath returns the configured log file path, or an error when
// logging goes to stderr and there is no file to read.
func serverLogPath() (string, error) {
	cfg := config.Get()
	if cfg.Log.File == "" {
		return "", fmt.Errorf("no log file configured: set log.file in the config (logs currently go to stderr)")
	}
	return cfg.Log.File, nil
}

// buildLogFilter translates the command flags into a LogFilter plus an
// optional grep regex, which is applied separately because it searches
// attribute values as well as the message.
func buildLogFilter() (logging.LogFilter, *regexp.Regexp, error) {
	filter := logging.LogFilter{
		SessionID:  logsSessionID,
		InstanceID: logsInstanceID,
		Tool:       logsTool,
	}

	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}

	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return filter, nil, fmt.Errorf("invalid duration format: %w", err)
		}
		filter.StartTime = time.Now().Add(-duration)
	}

	var grepRegex *regexp.Regexp
	if logsGrep != "" {
		var err error
		grepRegex, err = regexp.Compile(logsGrep)
		if err != nil {
			return filter, nil, fmt.Errorf("invalid grep pattern: %w", err)
		}
	}

	return filter, grepRegex, nil
}

// collectLogEntries reads the log file and applies the filter and grep.
func collectLogEntries(logPath string, filter logging.LogFilter, grepRegex *regexp.Regexp) ([]logging.LogEntry, error) {
	entries, err := logging.AggregateLogs(logPath)
	if err != nil {
		return nil, err
	}

	entries = logging.FilterLogs(entries, filter)
	if grepRegex == nil {
		return entries, nil
	}

	var matched []logging.LogEntry
	for _, entry := range entries {
		if grepMatches(grepRegex, entry) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// grepMatches searches the message and attribute values for the pattern.
func grepMatches(re *regexp.Regexp, entry logging.LogEntry) bool {
	searchText := entry.Message
	for _, v := range entry.Attrs {
		searchText += " " + fmt.Sprintf("%v", v)
	}
	return re.MatchString(searchText)
}

// followLogs implements tail -f behavior for the log file
func followLogs(logPath string, filter logging.LogFilter, grepRegex *regexp.Regexp) error {
	file, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Seek to end of file
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	fmt.Printf("Following logs... (Ctrl+C to stop)\n\n")

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// No new data, wait briefly and try again
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return fmt.Errorf("error reading log file: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		entry, parseErr := logging.ParseEntry(line)
		if parseErr != nil {
			// If we can't parse as JSON, display raw line
			fmt.Println(line)
			continue
		}

		if len(logging.FilterLogs([]logging.LogEntry{entry}, filter)) == 0 {
			continue
		}
		if grepRegex != nil && !grepMatches(grepRegex, entry) {
			continue
		}

		fmt.Println(formatLogEntry(&entry))
	}
}
