package domain

import (
	"fmt"
	"strings"
)

// Error codes for domain errors. Handlers map these to HTTP statuses.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodePrematureStart      = "PREMATURE_START"
	CodeMissingReason       = "MISSING_REASON"
	CodeAlreadyTerminal     = "ALREADY_TERMINAL"
	CodeInvalidAddon        = "INVALID_ADDON"
	CodeInvalidAddress      = "INVALID_ADDRESS"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeRefundFailed        = "REFUND_FAILED"
	CodePersistence         = "PERSISTENCE_FAILURE"
)

// Error is a domain error carrying a machine-readable code and a human-readable message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsCode reports whether err is a domain Error with the given code.
func IsCode(err error, code string) bool {
	de, ok := err.(*Error)
	return ok && de.Code == code
}

// NewValidationError creates an error for invalid input.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError creates an error for an actor lacking permission on a resource.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewUnauthorizedError creates an error for an identity mismatch.
func NewUnauthorizedError(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// NewConflictError creates an error for a lost concurrent-write race.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewInvalidTransitionError creates an error for an illegal status change,
// listing the legal successors of the current state.
func NewInvalidTransitionError(current, requested string, allowed []string) *Error {
	next := "none (terminal state)"
	if len(allowed) > 0 {
		next = strings.Join(allowed, ", ")
	}
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s; legal next states: %s", current, requested, next),
	}
}

// NewPrematureStartError creates an error for starting a job before its scheduled day.
func NewPrematureStartError(scheduledDate string) *Error {
	return &Error{
		Code:    CodePrematureStart,
		Message: fmt.Sprintf("job cannot start before its scheduled date %s", scheduledDate),
	}
}

// NewMissingReasonError creates an error for a decline or cancel without a reason.
func NewMissingReasonError() *Error {
	return &Error{Code: CodeMissingReason, Message: "a reason is required"}
}

// NewAlreadyTerminalError creates an error for cancelling a finished booking.
func NewAlreadyTerminalError(status string) *Error {
	return &Error{
		Code:    CodeAlreadyTerminal,
		Message: fmt.Sprintf("booking is already in terminal state %s", status),
	}
}

// NewInvalidAddonError creates an error for an unknown addon reference.
func NewInvalidAddonError(id string) *Error {
	return &Error{Code: CodeInvalidAddon, Message: fmt.Sprintf("unknown addon: %s", id)}
}

// NewInvalidAddressError creates an error for an address not owned by the caller.
func NewInvalidAddressError(message string) *Error {
	return &Error{Code: CodeInvalidAddress, Message: message}
}

// NewProviderUnavailableError creates an error for a provider with no availability on a date.
func NewProviderUnavailableError(date string) *Error {
	return &Error{
		Code:    CodeProviderUnavailable,
		Message: fmt.Sprintf("provider is not available on %s", date),
	}
}

// NewRefundFailedError creates an error for a failed refund gateway call.
func NewRefundFailedError(cause error) *Error {
	return &Error{Code: CodeRefundFailed, Message: fmt.Sprintf("refund failed: %v", cause)}
}

// NewPersistenceError creates an error for a generic storage failure.
func NewPersistenceError(cause error) *Error {
	return &Error{Code: CodePersistence, Message: fmt.Sprintf("storage failure: %v", cause)}
}
