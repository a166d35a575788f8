package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Scheduling errors
const (
	// ErrCodeSchedulerStopped indicates a unit of work was submitted to a pool that is not running.
	ErrCodeSchedulerStopped ErrorCode = "SCHEDULER_STOPPED"
	// ErrCodeTimeout indicates a caller-imposed deadline expired.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Stream errors
const (
	// ErrCodePanic indicates user code (emission logic, operator function, scheduled unit) panicked.
	ErrCodePanic ErrorCode = "PANIC"
	// ErrCodeInvalidSource indicates an operator produced a nil source.
	ErrCodeInvalidSource ErrorCode = "INVALID_SOURCE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidConfig indicates a configuration section failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSchedulerStopped: false,
	ErrCodeTimeout:          true,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
