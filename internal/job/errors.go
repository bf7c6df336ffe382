package job

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes lifecycle failures.
type ErrorCode string

const (
	// ErrCodeBackendExecution indicates the Backend reported ERROR.
	ErrCodeBackendExecution ErrorCode = "BACKEND_EXECUTION"

	// ErrCodeCancelled indicates the Backend reported CANCELLED or the
	// caller's context ended while polling.
	ErrCodeCancelled ErrorCode = "CANCELLED"

	// ErrCodePollTimeout indicates the configured wait cap elapsed.
	ErrCodePollTimeout ErrorCode = "POLL_TIMEOUT"
)

// Error is a terminal lifecycle failure for one job.
type Error struct {
	Code    ErrorCode
	JobID   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("%s: %s (job=%s)", e.Code, e.Message, e.JobID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewBackendExecutionError carries the Backend message verbatim.
func NewBackendExecutionError(jobID, message string) *Error {
	return &Error{Code: ErrCodeBackendExecution, JobID: jobID, Message: message}
}

// NewCancelledError reports a job abandoned by either side.
func NewCancelledError(jobID string, cause error) *Error {
	msg := "job cancelled by backend"
	if cause != nil {
		msg = "polling interrupted"
	}
	return &Error{Code: ErrCodeCancelled, JobID: jobID, Message: msg, Err: cause}
}

// NewPollTimeoutError reports that the wait cap elapsed before a terminal status.
func NewPollTimeoutError(jobID string, polls int) *Error {
	return &Error{
		Code:    ErrCodePollTimeout,
		JobID:   jobID,
		Message: fmt.Sprintf("no terminal status after %d polls", polls),
	}
}

func hasCode(err error, code ErrorCode) bool {
	var je *Error
	if errors.As(err, &je) {
		return je.Code == code
	}
	return false
}

// IsBackendExecution reports whether err is a BACKEND_EXECUTION failure.
func IsBackendExecution(err error) bool { return hasCode(err, ErrCodeBackendExecution) }

// IsCancelled reports whether err is a CANCELLED failure.
func IsCancelled(err error) bool { return hasCode(err, ErrCodeCancelled) }

// IsPollTimeout reports whether err is a POLL_TIMEOUT failure.
func IsPollTimeout(err error) bool { return hasCode(err, ErrCodePollTimeout) }
