package domain

import "strings"

// Status describes the party lifecycle label used by domain decisions.
type Status string

const (
	StatusUnspecified Status = ""
	StatusRecruiting  Status = "RECRUITING"
	StatusActive      Status = "ACTIVE"
	StatusClosed      Status = "CLOSED"
)

// ParseStatus canonicalizes a stored status label.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(StatusRecruiting):
		return StatusRecruiting, true
	case string(StatusActive):
		return StatusActive, true
	case string(StatusClosed):
		return StatusClosed, true
	default:
		return StatusUnspecified, false
	}
}

// isStatusTransitionAllowed enforces the one-way party lifecycle. Closed is
// terminal; recruiting may close directly without ever becoming active.
func isStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusRecruiting:
		return to == StatusActive || to == StatusClosed
	case StatusActive:
		return to == StatusClosed
	default:
		return false
	}
}

// IsStatusTransitionAllowed reports whether a status transition is permitted.
func IsStatusTransitionAllowed(from, to Status) bool {
	return isStatusTransitionAllowed(from, to)
}
