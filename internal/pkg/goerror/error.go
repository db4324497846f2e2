package goerror

import (
	"fmt"
	"strings"
)

// Type classifies errors into the high-level buckets the refresh job cares
// about. The bucket decides whether a failure is retried and how it is worded
// in the operator notification.
type Type int

const (
	// TypeServer represents unexpected internal failures.
	TypeServer Type = iota
	// TypeConfig represents missing or invalid configuration.
	TypeConfig
	// TypeTransient represents connectivity failures that are retried.
	TypeTransient
	// TypeProvider represents failures reported by the brokerage itself
	// (authentication rejected, malformed token response).
	TypeProvider
	// TypePersistence represents database write failures.
	TypePersistence
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeConfig:
		return "ERROR_TYPE_CONFIG"
	case TypeTransient:
		return "ERROR_TYPE_TRANSIENT"
	case TypeProvider:
		return "ERROR_TYPE_PROVIDER"
	case TypePersistence:
		return "ERROR_TYPE_PERSISTENCE"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Error is a structured error used across the job.
//
// It can wrap an underlying error while also carrying an operator-facing
// message, a high-level type, and for configuration errors the enumerated
// list of missing fields.
type Error struct {
	err     error
	msg     string
	errType Type
	fields  []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.msg != "" && e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}

	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	return "unknown error"
}

// Msg returns the operator-facing message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Fields returns the enumerated missing configuration fields, if any.
func (e *Error) Fields() []string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Message: %s, Fields: [%s], Underlying Error: %v",
		e.errType.String(),
		e.msg,
		strings.Join(e.fields, ", "),
		e.err,
	)
}

// NewServer creates a server-type error wrapping err.
func NewServer(err error) error {
	return &Error{err: err, msg: "internal error", errType: TypeServer}
}

// NewConfig creates a configuration error. fields enumerates the missing
// configuration variables by name.
func NewConfig(msg string, fields ...string) error {
	return &Error{msg: msg, errType: TypeConfig, fields: fields}
}

// NewTransient creates a transient connectivity error wrapping err.
func NewTransient(err error, msg string) error {
	return &Error{err: err, msg: msg, errType: TypeTransient}
}

// NewProvider creates a provider error with the brokerage-supplied message.
func NewProvider(msg string, err error) error {
	return &Error{err: err, msg: msg, errType: TypeProvider}
}

// NewPersistence creates a persistence error wrapping err.
func NewPersistence(err error, msg string) error {
	return &Error{err: err, msg: msg, errType: TypePersistence}
}
