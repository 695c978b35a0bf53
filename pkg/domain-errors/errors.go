// Package domainerrors carries failure information across component
// boundaries as data. No service in this codebase panics or lets a raw
// driver error escape; everything is wrapped with a Code from the taxonomy
// below so transports and callers can branch without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure. The set is closed; new codes are added here,
// never inline at call sites.
type Code string

const (
	// CodeNotAuthenticated means no acting staff member could be resolved
	// for the request (missing, invalid, or revoked token).
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"

	// CodePermissionDenied means the actor's role does not allow the
	// operation. Denial happens before any write.
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// CodeInsertFailed means a store rejected a row creation.
	CodeInsertFailed Code = "INSERT_FAILED"

	// CodeFetchFailed means a store read could not be completed.
	CodeFetchFailed Code = "FETCH_FAILED"

	// CodeDependentCleanupFailed means a dependent record could not be
	// removed mid-cleanup. Details carry how many records were removed
	// before the failure.
	CodeDependentCleanupFailed Code = "DEPENDENT_CLEANUP_FAILED"

	// CodeProfileDeleteFailed means the profile row removal failed after
	// dependent cleanup already ran.
	CodeProfileDeleteFailed Code = "PROFILE_DELETE_FAILED"

	// CodeIdentityDeleteFailed means the identity store refused to remove
	// the credentialed principal.
	CodeIdentityDeleteFailed Code = "IDENTITY_DELETE_FAILED"

	// CodeInconsistent means a last-resort compensation itself failed and
	// the resource graph is in an undefined split state. Highest severity;
	// must not be silently retried.
	CodeInconsistent Code = "INCONSISTENT"

	// CodeValidation and CodeNotFound are transport-facing refinements used
	// before any saga starts.
	CodeValidation Code = "VALIDATION"
	CodeNotFound   Code = "NOT_FOUND"

	// CodeUnexpected is the catch-all for failures outside the taxonomy.
	CodeUnexpected Code = "UNEXPECTED"
)

// Error is the single error shape that crosses component boundaries.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails returns a copy of the error carrying the given detail map.
// Callers use it for partial-progress reporting ("removed": 2).
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeUnexpected when
// err is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeUnexpected
}

// DetailsOf returns the outermost detail map carried by err, or nil.
func DetailsOf(err error) map[string]any {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
