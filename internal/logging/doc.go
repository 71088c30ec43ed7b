// Package logging provides structured logging for the simdeck server.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support for debugging and post-hoc analysis. The
// server multiplexes many agent sessions over one process, so every log
// entry carries enough context (session, simulator instance, tool) to be
// filtered after the fact.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (session ID, instance ID, tool name)
//   - Log rotation with configurable size limits
//   - Log aggregation and filtering utilities
//   - Export to JSON, text, or CSV formats
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally which is designed for concurrent access. The
// [RotatingWriter] type uses a mutex to protect file operations during
// rotation. Child loggers created via With* methods share the underlying
// writer safely.
//
// # Basic Usage
//
// Create a logger for the server:
//
//	logger, err := logging.NewLogger("/path/to/simdeck.log", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	// Log messages at various levels
//	logger.Debug("detailed info", "key", "value")
//	logger.Info("operation completed", "duration_ms", 150)
//	logger.Warn("potential issue", "threshold", 100)
//	logger.Error("operation failed", "error", err.Error())
//
// Pass an empty path to log to stderr. stdout is never used for logging:
// when the server speaks its protocol over stdio, stdout carries protocol
// frames only.
//
// # Context Propagation
//
// Create child loggers with persistent context attributes:
//
//	// Add session context
//	sessionLogger := logger.WithSession("agent-abc123")
//
//	// Add simulator instance context
//	instanceLogger := sessionLogger.WithInstance("E6BFA184-0496-4BF9-A022-118BB296DC1F")
//
//	// Add tool context
//	toolLogger := instanceLogger.WithTool("device_start")
//
//	// All logs from toolLogger include session_id, instance_id, and tool
//	toolLogger.Info("device booted", "device_type", "iPhone 16 Pro")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"device booted","session_id":"agent-abc123","instance_id":"E6BFA184-...","tool":"device_start","device_type":"iPhone 16 Pro"}
//
// # Log Rotation
//
// For long-running servers, use log rotation to prevent unbounded growth:
//
//	config := logging.RotationConfig{
//	    MaxSizeMB:  10, // Rotate when file exceeds 10MB
//	    MaxBackups: 3,  // Keep 3 backup files
//	}
//
//	logger, err := logging.NewLoggerWithRotation("/path/to/simdeck.log", "INFO", config)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
// Rotated files are named: simdeck.log.1, simdeck.log.2, etc., where .1 is
// the most recent backup.
//
// # Testing
//
// For testing, use [NopLogger] to discard all log output:
//
//	func TestSomething(t *testing.T) {
//	    logger := logging.NopLogger()
//	    // Use logger in tests without creating files
//	}
//
// # Log Aggregation and Filtering
//
// Read and analyze logs after a run:
//
//	// Load all logs from the server log file
//	entries, err := logging.AggregateLogs("/path/to/simdeck.log")
//	if err != nil {
//	    return err
//	}
//
//	// Filter logs by various criteria
//	filter := logging.LogFilter{
//	    Level:     "WARN",         // Minimum level
//	    SessionID: "agent-abc123", // Specific session
//	    Tool:      "device_start", // Specific tool
//	    StartTime: time.Now().Add(-1 * time.Hour), // Last hour
//	}
//	filtered := logging.FilterLogs(entries, filter)
//
//	// Export to various formats
//	logging.ExportLogEntries(filtered, "errors.json", "json")
//	logging.ExportLogEntries(filtered, "errors.txt", "text")
//	logging.ExportLogEntries(filtered, "errors.csv", "csv")
//
// # Log Levels
//
// The package defines four log levels:
//
//   - [LevelDebug]: Detailed information for debugging
//   - [LevelInfo]: General operational information (default)
//   - [LevelWarn]: Warning conditions that may need attention
//   - [LevelError]: Error conditions that affect functionality
//
// Use [ValidLevels] to get the list of valid level strings, and [ParseLevel]
// to normalize user-provided level strings.
//
// # Configuration
//
// The logging system is typically configured via simdeck's config file:
//
//	log:
//	  level: info
//	  file: ~/.config/simdeck/simdeck.log
//	  max_size_mb: 10
//	  max_backups: 3
//
// See the simdeck README for complete configuration documentation.
package logging
