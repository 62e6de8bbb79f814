package common

import (
	"fmt"
)

// ValidationError reports missing or malformed command arguments. Message
// is meant to be shown to the chat user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError is returned when the caller is not allowed to run a
// command that mutates state or moves funds.
type AuthorizationError struct {
	User   string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s is not authorized to %s", e.User, e.Action)
}

// TransportError covers every failure to talk to an external service:
// network errors, unexpected statuses and bodies that don't parse.
type TransportError struct {
	Service string
	Op      string
	Status  int
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %v", e.Service, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransferError is an explicit rejection from the asset server. Message is
// whatever the server said and is relayed to the caller.
type TransferError struct {
	Status  int
	Message string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer rejected (status %d): %s", e.Status, e.Message)
}

// QuantityExceededError is the local policy rejection made before any
// transfer request leaves the process.
type QuantityExceededError struct {
	Quantity int64
	Max      int64
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("quantity %d exceeds maximum %d", e.Quantity, e.Max)
}
