package matcher

import (
	"errors"
	"fmt"
)

// Operation names carried by Error.
const (
	OpUpload    = "upload"
	OpMatch     = "match"
	OpGetResume = "get_resume"
	OpCleanup   = "cleanup"
)

var (
	// ErrStatus reports a non-2xx response.
	ErrStatus = errors.New("unexpected response status")
	// ErrBreakerOpen reports that the circuit breaker rejected the call.
	ErrBreakerOpen = errors.New("backend unavailable, circuit open")
	// ErrNoFiles is returned when an upload has no entries.
	ErrNoFiles = errors.New("no files to upload")
)

// Error wraps a failed backend call with the operation it belongs to.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %v (HTTP %d)", e.Op, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// statusError carries the status code of a rejected response until it is
// wrapped into an Error.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v %d", ErrStatus, e.code)
}

func (e *statusError) Unwrap() error {
	return ErrStatus
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Op: op, Err: err}
	var se *statusError
	if errors.As(err, &se) {
		e.StatusCode = se.code
		e.Err = ErrStatus
	}
	return e
}
