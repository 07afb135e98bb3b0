package host

import (
	"errors"
	"fmt"

	"github.com/picorelay/relay.go/pkg/proto"
)

// ErrTimeout indicates the board did not respond within the deadline.
var ErrTimeout = errors.New("timeout waiting for response")

// ErrNotConnected indicates Connect has not completed on this controller.
var ErrNotConnected = errors.New("not connected")

// ConnError wraps a transport failure. The connection should be
// considered broken once one is returned.
type ConnError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *ConnError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Op, e.Err)
}

// Unwrap exposes the transport error.
func (e *ConnError) Unwrap() error {
	return e.Err
}

// CommandError carries an error code reported by the board.
type CommandError struct {
	Code proto.ErrorCode
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("board error: %s", e.Code)
}

// ErrorCodeOf extracts the board error code from err, or "" if err is
// not a CommandError.
func ErrorCodeOf(err error) proto.ErrorCode {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
