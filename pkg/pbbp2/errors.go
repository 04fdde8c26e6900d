package pbbp2

import (
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrMissingRequired = errors.New("missing required field")
	ErrMalformed       = errors.New("malformed message")
	ErrWireType        = errors.New("invalid wire type")
	ErrFrameTooLarge   = errors.New("frame exceeds maximum size")
)

// ProtocolError is returned when a byte stream cannot be decoded into a
// message. Instance holds the partially decoded message.
type ProtocolError struct {
	Message  string
	Field    string
	Instance interface{}
	Err      error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %v", e.Message, e.Field, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// VerifyError describes the first schema violation found by VerifyFrame or
// VerifyHeader. Reason is the human readable description.
type VerifyError struct {
	Reason string
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	return e.Reason
}

// ConversionError is returned by FrameFromObject and HeaderFromObject when a
// value has an unsupported shape.
type ConversionError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return e.Path + ": " + e.Reason
}
