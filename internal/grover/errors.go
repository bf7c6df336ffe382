package grover

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes search input and result failures.
type ErrorCode string

const (
	// ErrCodeInvalidOracle indicates oracle < 0 or oracle >= N.
	ErrCodeInvalidOracle ErrorCode = "INVALID_ORACLE"

	// ErrCodeInvalidSize indicates N cannot form a control register (N < 2).
	ErrCodeInvalidSize ErrorCode = "INVALID_SIZE"

	// ErrCodeInvalidShots indicates a non-positive shot count.
	ErrCodeInvalidShots ErrorCode = "INVALID_SHOTS"

	// ErrCodeEmptyHistogram indicates no usable measurement data.
	ErrCodeEmptyHistogram ErrorCode = "EMPTY_HISTOGRAM"
)

// Error reports invalid search input or an unusable result.
// All of them are detected before or after, never during, backend execution.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidOracleError reports an oracle outside [0, n).
func NewInvalidOracleError(n, oracle int) *Error {
	return &Error{
		Code:    ErrCodeInvalidOracle,
		Message: fmt.Sprintf("oracle %d is outside the search space [0, %d)", oracle, n),
	}
}

// NewInvalidSizeError reports a search space too small for a control register.
func NewInvalidSizeError(n int) *Error {
	return &Error{
		Code:    ErrCodeInvalidSize,
		Message: fmt.Sprintf("search space size %d is below 2", n),
	}
}

// NewInvalidShotsError reports a non-positive shot count.
func NewInvalidShotsError(shots int) *Error {
	return &Error{
		Code:    ErrCodeInvalidShots,
		Message: fmt.Sprintf("shot count %d must be positive", shots),
	}
}

// NewEmptyHistogramError reports a histogram without any positive count.
func NewEmptyHistogramError(entries int) *Error {
	return &Error{
		Code:    ErrCodeEmptyHistogram,
		Message: fmt.Sprintf("histogram has no positive counts (%d entries)", entries),
	}
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code == code
	}
	return false
}

// IsInvalidOracle reports whether err is an INVALID_ORACLE error.
func IsInvalidOracle(err error) bool { return hasCode(err, ErrCodeInvalidOracle) }

// IsInvalidSize reports whether err is an INVALID_SIZE error.
func IsInvalidSize(err error) bool { return hasCode(err, ErrCodeInvalidSize) }

// IsInvalidShots reports whether err is an INVALID_SHOTS error.
func IsInvalidShots(err error) bool { return hasCode(err, ErrCodeInvalidShots) }

// IsEmptyHistogram reports whether err is an EMPTY_HISTOGRAM error.
func IsEmptyHistogram(err error) bool { return hasCode(err, ErrCodeEmptyHistogram) }

// IsInputError reports whether err was caused by user input rather than by
// the backend or its result.
func IsInputError(err error) bool {
	return IsInvalidOracle(err) || IsInvalidSize(err) || IsInvalidShots(err)
}
