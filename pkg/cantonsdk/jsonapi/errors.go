package jsonapi

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a response body cannot be decoded
// into the expected shape.
var ErrMalformedResponse = errors.New("malformed ledger response")

// maxErrBodyBytes limits how much of an error body is kept on StatusError.
const maxErrBodyBytes = 4096

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func truncateBody(b []byte) string {
	if len(b) > maxErrBodyBytes {
		return string(b[:maxErrBodyBytes])
	}
	return string(b)
}
