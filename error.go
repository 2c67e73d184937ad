package praxis

import (
	"errors"
	"fmt"
)

// Application error codes. These map errors to behavior: callers branch on
// the code, never on the message text.
const (
	ECONFLICT    = "conflict"     // action cannot be performed
	EINVALID     = "invalid"      // validation failed
	EINTERNAL    = "internal"     // internal error
	ENOTFOUND    = "not_found"    // entity does not exist
	EUNAVAILABLE = "unavailable"  // upstream source or provider unreachable
	ERATELIMITED = "rate_limited" // provider asked us to slow down
	ETIMEOUT     = "timeout"      // request exceeded its deadline
	EMALFORMED   = "malformed"    // provider returned undecodable output
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code and message.
//
// Any non-application error (such as a disk error) should be reported as an
// EINTERNAL error; the end user should only see "internal error" for those.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string

	// Raw carries the offending payload for EMALFORMED errors: the provider
	// output that failed schema validation even after the repair pass.
	Raw string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("praxis error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// MalformedErrorf returns an EMALFORMED error carrying the raw provider
// output that could not be decoded.
func MalformedErrorf(raw string, format string, args ...any) *Error {
	return &Error{
		Code:    EMALFORMED,
		Message: fmt.Sprintf(format, args...),
		Raw:     raw,
	}
}

// MalformedRaw returns the raw provider output attached to an EMALFORMED
// error, or "" if err is not one.
func MalformedRaw(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code == EMALFORMED {
		return e.Raw
	}
	return ""
}
