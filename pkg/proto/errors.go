package proto

import "fmt"

// ErrorCode identifies a protocol-level failure reported on the wire as
// "ERROR:<CODE>".
type ErrorCode string

// Error codes reported by the device dispatcher.
const (
	ErrInvalidCommand        ErrorCode = "INVALID_COMMAND"
	ErrInvalidRelayNumber    ErrorCode = "INVALID_RELAY_NUMBER"
	ErrInvalidParameter      ErrorCode = "INVALID_PARAMETER"
	ErrInvalidParameterCount ErrorCode = "INVALID_PARAMETER_COUNT"
	ErrHardware              ErrorCode = "HARDWARE_ERROR"

	// ErrRelayBusy is reserved and never emitted by the current dispatcher.
	ErrRelayBusy ErrorCode = "RELAY_BUSY"
	// ErrTimeout is host-local and never sent by the device.
	ErrTimeout ErrorCode = "TIMEOUT"
)

// Persistence-specific codes emitted literally by the SAVE/LOAD/CLEAR handlers.
const (
	ErrSaveFailed   ErrorCode = "SAVE_FAILED"
	ErrLoadFailed   ErrorCode = "LOAD_FAILED"
	ErrNoSavedState ErrorCode = "NO_SAVED_STATE"
	ErrClearFailed  ErrorCode = "CLEAR_FAILED"
)

// Response formats the code as a wire response line without terminator.
func (c ErrorCode) Response() string {
	return "ERROR:" + string(c)
}

// ValidationError reports a command rejected by the host-side encoder
// before reaching the wire.
type ValidationError struct {
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "invalid command: " + e.Reason
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
