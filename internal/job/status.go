package job

import (
	"fmt"
	"strings"
)

// Status is the Backend-reported state of a job.
type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusDone      Status = "DONE"
	StatusError     Status = "ERROR"
	StatusCancelled Status = "CANCELLED"
)

var allStatuses = []Status{
	StatusSubmitted,
	StatusQueued,
	StatusRunning,
	StatusDone,
	StatusError,
	StatusCancelled,
}

// Terminal reports whether no further transition can follow s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusError, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a wire value into a Status. Matching is case-insensitive.
func ParseStatus(v string) (Status, error) {
	upper := Status(strings.ToUpper(strings.TrimSpace(v)))
	for _, s := range allStatuses {
		if s == upper {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", v)
}
