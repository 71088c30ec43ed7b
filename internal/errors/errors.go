// Package errors provides centralized error definitions and error handling utilities
// for the simdeck codebase. It defines domain-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent errors from specific subsystems:
//   - DeviceError: errors related to session/device lifecycle management
//   - SimulatorError: errors surfaced by the simulator control CLI
//   - AutomationError: errors surfaced by the UI automation CLI
//   - ServerError: errors related to the tool server and its transports
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found
//   - AlreadyExistsError: resource already exists
//   - ValidationError: invalid input or state
//   - TimeoutError: operation timed out
//   - InternalError: a broken invariant that must fail closed
//
// # Usage
//
// Creating errors:
//
//	// Domain-specific error
//	err := errors.NewDeviceError("no device to destroy", errors.ErrSessionNotActive)
//
//	// Semantic error
//	err := errors.NewNotFoundError("session", "abc123")
//
//	// With context wrapping
//	err := errors.NewSimulatorError("boot failed", baseErr).WithUDID("ABCD-1234")
//
// Checking errors:
//
//	// Check for specific sentinel errors
//	if errors.Is(err, errors.ErrSessionNotActive) { ... }
//
//	// Check for error types
//	var devErr *errors.DeviceError
//	if errors.As(err, &devErr) { ... }
//
//	// Use classification helpers
//	if errors.IsRetryable(err) { ... }
//	if errors.IsUserFacing(err) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Session-related sentinel errors
var (
	// ErrSessionActive indicates that a session already has an active device.
	ErrSessionActive = New("session already has an active device")
	// ErrSessionNotActive indicates that a session has no active device.
	// Sessions have no existence apart from their device, so this also
	// covers "session not found".
	ErrSessionNotActive = New("session has no active device")
)

// Instance-related sentinel errors
var (
	// ErrInstanceNotFound indicates that a simulator instance does not exist.
	ErrInstanceNotFound = New("simulator instance not found")
	// ErrInstanceNotBooted indicates that a simulator instance is not booted.
	ErrInstanceNotBooted = New("simulator instance not booted")
	// ErrInstanceConflict indicates that an instance is already bound to
	// another session. Two sessions must never share one instance.
	ErrInstanceConflict = New("simulator instance already bound to another session")
)

// Provisioning-related sentinel errors
var (
	// ErrNoMatchingDeviceType indicates that no installed device type matched
	// the requested keyword.
	ErrNoMatchingDeviceType = New("no matching device type")
	// ErrNoAvailableRuntime indicates that no usable runtime is installed.
	ErrNoAvailableRuntime = New("no available runtime")
)

// Capture-related sentinel errors
var (
	// ErrRecordingActive indicates that a video recording is already running.
	ErrRecordingActive = New("recording already in progress")
	// ErrNoActiveRecording indicates that no video recording is running.
	ErrNoActiveRecording = New("no recording in progress")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
	// ErrInternal indicates a broken internal invariant.
	ErrInternal = New("internal invariant violated")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// SimdeckError is the base interface for all simdeck errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type SimdeckError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	// This is used by errors.Is() for error comparison.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// DeviceError represents errors related to session/device lifecycle management.
//
// Example:
//
//	err := errors.NewDeviceError("no device to destroy", errors.ErrSessionNotActive)
//	err = err.WithSessionID("abc123")
//	fmt.Println(err) // "device error [session=abc123]: no device to destroy: session has no active device"
type DeviceError struct {
	baseError
	SessionID  string
	InstanceID string
}

// NewDeviceError creates a new DeviceError.
func NewDeviceError(message string, cause error) *DeviceError {
	return &DeviceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSessionID adds a session ID to the error context.
func (e *DeviceError) WithSessionID(id string) *DeviceError {
	e.SessionID = id
	return e
}

// WithInstanceID adds a simulator instance ID to the error context.
func (e *DeviceError) WithInstanceID(id string) *DeviceError {
	e.InstanceID = id
	return e
}

// WithSeverity sets the error severity.
func (e *DeviceError) WithSeverity(s Severity) *DeviceError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *DeviceError) WithRetryable(r bool) *DeviceError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *DeviceError) Error() string {
	var parts []string
	if e.SessionID != "" {
		parts = append(parts, fmt.Sprintf("session=%s", e.SessionID))
	}
	if e.InstanceID != "" {
		parts = append(parts, fmt.Sprintf("instance=%s", e.InstanceID))
	}

	prefix := "device error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("device error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *DeviceError) Is(target error) bool {
	if _, ok := target.(*DeviceError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SimulatorError represents errors surfaced by the simulator control CLI.
// The captured command output is preserved verbatim so callers can relay
// exactly what the tool reported.
//
// Example:
//
//	err := errors.NewSimulatorError("failed to boot device", baseErr)
//	err = err.WithUDID("ABCD-1234").WithOutput("Unable to boot device in current state: Booted")
type SimulatorError struct {
	baseError
	UDID    string
	Command string
	Output  string // Captured simctl command output
	Hint    string // Troubleshooting pointer for the operator
}

// NewSimulatorError creates a new SimulatorError.
func NewSimulatorError(message string, cause error) *SimulatorError {
	return &SimulatorError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithUDID adds a simulator UDID to the error context.
func (e *SimulatorError) WithUDID(udid string) *SimulatorError {
	e.UDID = udid
	return e
}

// WithCommand adds the invoked command line to the error context.
func (e *SimulatorError) WithCommand(command string) *SimulatorError {
	e.Command = command
	return e
}

// WithOutput adds captured simctl output to the error context.
func (e *SimulatorError) WithOutput(output string) *SimulatorError {
	e.Output = output
	return e
}

// WithHint adds a troubleshooting pointer to the error context.
func (e *SimulatorError) WithHint(hint string) *SimulatorError {
	e.Hint = hint
	return e
}

// WithSeverity sets the error severity.
func (e *SimulatorError) WithSeverity(s Severity) *SimulatorError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *SimulatorError) WithRetryable(r bool) *SimulatorError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *SimulatorError) Error() string {
	var parts []string
	if e.UDID != "" {
		parts = append(parts, fmt.Sprintf("udid=%s", e.UDID))
	}
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("command=%s", e.Command))
	}

	prefix := "simulator error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("simulator error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s\nsimctl output: %s", msg, e.Output)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s\nhint: %s", msg, e.Hint)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *SimulatorError) Is(target error) bool {
	if _, ok := target.(*SimulatorError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AutomationError represents errors surfaced by the UI automation CLI.
// Like SimulatorError it carries the tool's output verbatim.
//
// Example:
//
//	err := errors.NewAutomationError("describe-ui failed", baseErr)
//	err = err.WithUDID("ABCD-1234").WithOutput("No running application found")
type AutomationError struct {
	baseError
	UDID    string
	Command string
	Output  string // Captured automation command output
	Hint    string // Troubleshooting pointer for the operator
}

// NewAutomationError creates a new AutomationError.
func NewAutomationError(message string, cause error) *AutomationError {
	return &AutomationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithUDID adds a simulator UDID to the error context.
func (e *AutomationError) WithUDID(udid string) *AutomationError {
	e.UDID = udid
	return e
}

// WithCommand adds the invoked command line to the error context.
func (e *AutomationError) WithCommand(command string) *AutomationError {
	e.Command = command
	return e
}

// WithOutput adds captured automation output to the error context.
func (e *AutomationError) WithOutput(output string) *AutomationError {
	e.Output = output
	return e
}

// WithHint adds a troubleshooting pointer to the error context.
func (e *AutomationError) WithHint(hint string) *AutomationError {
	e.Hint = hint
	return e
}

// WithSeverity sets the error severity.
func (e *AutomationError) WithSeverity(s Severity) *AutomationError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *AutomationError) WithRetryable(r bool) *AutomationError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *AutomationError) Error() string {
	var parts []string
	if e.UDID != "" {
		parts = append(parts, fmt.Sprintf("udid=%s", e.UDID))
	}
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("command=%s", e.Command))
	}

	prefix := "automation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("automation error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s\nautomation output: %s", msg, e.Output)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s\nhint: %s", msg, e.Hint)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *AutomationError) Is(target error) bool {
	if _, ok := target.(*AutomationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ServerError represents errors related to the tool server and its transports.
//
// Example:
//
//	err := errors.NewServerError("tool execution failed", baseErr)
//	err = err.WithTool("device_start").WithMethod("tools/call")
type ServerError struct {
	baseError
	Tool   string
	Method string
}

// NewServerError creates a new ServerError.
func NewServerError(message string, cause error) *ServerError {
	return &ServerError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithTool adds a tool name to the error context.
func (e *ServerError) WithTool(tool string) *ServerError {
	e.Tool = tool
	return e
}

// WithMethod adds a protocol method to the error context.
func (e *ServerError) WithMethod(method string) *ServerError {
	e.Method = method
	return e
}

// WithSeverity sets the error severity.
func (e *ServerError) WithSeverity(s Severity) *ServerError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ServerError) WithRetryable(r bool) *ServerError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ServerError) Error() string {
	var parts []string
	if e.Tool != "" {
		parts = append(parts, fmt.Sprintf("tool=%s", e.Tool))
	}
	if e.Method != "" {
		parts = append(parts, fmt.Sprintf("method=%s", e.Method))
	}

	prefix := "server error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("server error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ServerError) Is(target error) bool {
	if _, ok := target.(*ServerError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("session", "abc123")
//	fmt.Println(err) // "session 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError represents a resource that already exists.
//
// Example:
//
//	err := errors.NewAlreadyExistsError("device", "session abc123")
//	fmt.Println(err) // "device 'session abc123' already exists"
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *AlreadyExistsError) WithCause(cause error) *AlreadyExistsError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *AlreadyExistsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' already exists: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' already exists", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("session ID cannot be empty")
//	err = err.WithField("sessionId").WithValue("")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for device to boot", 30*time.Second)
//	fmt.Println(err) // "timeout error: waiting for device to boot (timeout: 30s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// WithRetryable sets whether the error is retryable (default true for timeouts).
func (e *TimeoutError) WithRetryable(r bool) *TimeoutError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// InternalError represents a broken internal invariant. The registry fails
// closed on these: the operation is refused rather than completed in a
// state that would corrupt the session/instance mapping.
//
// Example:
//
//	err := errors.NewInternalError("instance bound to two sessions")
//	fmt.Println(err) // "internal error: instance bound to two sessions"
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError.
func NewInternalError(message string) *InternalError {
	return &InternalError{
		baseError: baseError{
			message:    message,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: false,
		},
	}
}

// WithCause adds a cause to the error.
func (e *InternalError) WithCause(cause error) *InternalError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *InternalError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.message, e.cause)
	}
	return fmt.Sprintf("internal error: %s", e.message)
}

// Is checks if this error matches the target.
func (e *InternalError) Is(target error) bool {
	if _, ok := target.(*InternalError); ok {
		return true
	}
	if errors.Is(target, ErrInternal) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing SimdeckError with IsRetryable() returning true
//   - TimeoutError instances
//   - Errors wrapping ErrTimeout
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements SimdeckError
	var simdeckErr SimdeckError
	if As(err, &simdeckErr) {
		return simdeckErr.IsRetryable()
	}

	// Check for known retryable sentinel errors
	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
// This checks for:
//   - Errors implementing SimdeckError with IsUserFacing() returning true
//   - Semantic errors (NotFoundError, AlreadyExistsError, ValidationError, TimeoutError)
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    displayToUser(err.Error())
//	} else {
//	    displayToUser("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	// Check if error implements SimdeckError
	var simdeckErr SimdeckError
	if As(err, &simdeckErr) {
		return simdeckErr.IsUserFacing()
	}

	// Semantic errors are always user-facing
	var notFound *NotFoundError
	var alreadyExists *AlreadyExistsError
	var validation *ValidationError
	var timeout *TimeoutError

	if As(err, &notFound) || As(err, &alreadyExists) ||
		As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement SimdeckError.
//
// Example:
//
//	switch errors.GetSeverity(err) {
//	case errors.SeverityCritical:
//	    alertOnCall(err)
//	case errors.SeverityError:
//	    log.Error("error occurred", "err", err)
//	case errors.SeverityWarning:
//	    log.Warn("warning", "err", err)
//	}
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	// Check if error implements SimdeckError
	var simdeckErr SimdeckError
	if As(err, &simdeckErr) {
		return simdeckErr.Severity()
	}

	// Default to Error severity for unknown errors
	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (DeviceError, SimulatorError, AutomationError, or ServerError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var devErr *DeviceError
	var simErr *SimulatorError
	var autoErr *AutomationError
	var srvErr *ServerError

	return As(err, &devErr) || As(err, &simErr) ||
		As(err, &autoErr) || As(err, &srvErr)
}

// IsSemanticError returns true if the error is a semantic error
// (NotFoundError, AlreadyExistsError, ValidationError, TimeoutError, or
// InternalError).
func IsSemanticError(err error) bool {
	if err == nil {
		return false
	}

	var notFound *NotFoundError
	var alreadyExists *AlreadyExistsError
	var validation *ValidationError
	var timeout *TimeoutError
	var internal *InternalError

	return As(err, &notFound) || As(err, &alreadyExists) ||
		As(err, &validation) || As(err, &timeout) || As(err, &internal)
}

// IsCollaboratorError returns true if the error came back from one of the
// external command line tools (SimulatorError or AutomationError). These
// carry the tool's raw output and should be relayed rather than retried.
func IsCollaboratorError(err error) bool {
	if err == nil {
		return false
	}

	var simErr *SimulatorError
	var autoErr *AutomationError

	return As(err, &simErr) || As(err, &autoErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
// Unlike fmt.Errorf with %w, this preserves the SimdeckError interface.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to process request")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to start device for session %s", sessionID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
