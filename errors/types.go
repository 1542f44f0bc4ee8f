package errors

import "net/http"

// Codec error codes. Parse paths only ever surface CodeInvalidCode;
// the finer codes are used for construction, range and internal diagnostics.
const (
	CodeInvalidCode   = 1000
	CodeInvalidConfig = 1001
	CodeOutOfRange    = 1002
	CodeMalformed     = 1003
	CodeExpired       = 1004
	CodeTampered      = 1005
	CodeValueTooWide  = 1006
)

// ErrInvalidCode is the single result every failed parse or validation reports.
var ErrInvalidCode = New(CodeInvalidCode, "invalid code")

func InvalidConfig(format string, args ...any) *Error {
	return New(CodeInvalidConfig, format, args...)
}

func OutOfRange(format string, args ...any) *Error {
	return New(CodeOutOfRange, format, args...)
}

func Malformed(format string, args ...any) *Error {
	return New(CodeMalformed, format, args...)
}

func Expired(format string, args ...any) *Error {
	return New(CodeExpired, format, args...)
}

func Tampered(format string, args ...any) *Error {
	return New(CodeTampered, format, args...)
}

func ValueTooWide(format string, args ...any) *Error {
	return New(CodeValueTooWide, format, args...)
}

// HTTP errors used by the service layer

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func TooManyRequests(format string, args ...any) *Error {
	return New(http.StatusTooManyRequests, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(http.StatusServiceUnavailable, format, args...)
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	e := FromError(err)
	switch {
	case e.Code >= 400 && e.Code < 600:
		return e.Code
	case e.Code > CodeInvalidConfig && e.Code <= CodeValueTooWide, e.Code == CodeInvalidCode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
