package granola

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EAUTH      = "auth"      // missing or rejected credentials
	ETRANSIENT = "transient" // network or rate-limit failure after retries
	EWRITE     = "write"     // a single meeting could not be written
	ENOTFOUND  = "not_found"
	EAMBIGUOUS = "ambiguous"
	EMISSING   = "missing" // requested transcript or notes file is absent
	ECORRUPT   = "corrupt" // index file cannot be parsed
	EINVALID   = "invalid"
	EINTERNAL  = "internal"
)

// Error represents an application-specific error. Errors carrying a code
// are safe to show to the user; anything else is reported as internal.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
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
// Non-application errors return the error text as-is.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
