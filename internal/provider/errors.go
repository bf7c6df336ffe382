package provider

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes provider resolution failures.
type ErrorCode string

const (
	// ErrCodeMissingToken indicates a remote provider without any token.
	ErrCodeMissingToken ErrorCode = "MISSING_TOKEN"

	// ErrCodeUnknownProvider indicates a provider name that is not known.
	ErrCodeUnknownProvider ErrorCode = "UNKNOWN_PROVIDER"

	// ErrCodeUnknownBackend indicates a backend the provider cannot serve.
	ErrCodeUnknownBackend ErrorCode = "UNKNOWN_BACKEND"
)

// Error is a provider resolution failure.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewMissingTokenError reports that neither a token nor a stored account was found.
func NewMissingTokenError(credentialsPath string) *Error {
	msg := "remote provider needs a token: pass --token or run 'qsearch account save'"
	if credentialsPath != "" {
		msg += fmt.Sprintf(" (looked in %s)", credentialsPath)
	}
	return &Error{Code: ErrCodeMissingToken, Message: msg}
}

// NewUnknownProviderError reports a provider name outside Names().
func NewUnknownProviderError(name string) *Error {
	return &Error{
		Code:    ErrCodeUnknownProvider,
		Message: fmt.Sprintf("unknown provider %q (available: local, aer, remote, ibmq)", name),
	}
}

// NewUnknownBackendError wraps a backend construction failure.
func NewUnknownBackendError(provider, backend string, cause error) *Error {
	return &Error{
		Code:    ErrCodeUnknownBackend,
		Message: fmt.Sprintf("provider %s has no backend %q", provider, backend),
		Err:     cause,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsMissingToken reports whether err is a MISSING_TOKEN error.
func IsMissingToken(err error) bool { return hasCode(err, ErrCodeMissingToken) }

// IsUnknownProvider reports whether err is an UNKNOWN_PROVIDER error.
func IsUnknownProvider(err error) bool { return hasCode(err, ErrCodeUnknownProvider) }

// IsUnknownBackend reports whether err is an UNKNOWN_BACKEND error.
func IsUnknownBackend(err error) bool { return hasCode(err, ErrCodeUnknownBackend) }
