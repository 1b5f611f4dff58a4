package models

import "strings"

// Status is a listing lifecycle value.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusWaitlist  Status = "waitlist"
	StatusFilled    Status = "filled"
	StatusDemo      Status = "demo"
	StatusUnknown   Status = "unknown"
)

// ManagerActions are the transitions a manager can request.
var ManagerActions = []Status{StatusAvailable, StatusPending, StatusFilled}

// ParseStatus maps free text onto the closed enumeration. Anything
// unrecognized, including blank, resolves to StatusUnknown.
func ParseStatus(s string) Status {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAvailable, StatusPending, StatusWaitlist, StatusFilled, StatusDemo:
		return st
	default:
		return StatusUnknown
	}
}

// Label is the display text for a status.
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusPending:
		return "Pending"
	case StatusWaitlist:
		return "Waitlist"
	case StatusFilled:
		return "Filled"
	case StatusDemo:
		return "Demo"
	default:
		return "—"
	}
}

// Rank orders statuses for display; lower sorts first.
func (s Status) Rank() int {
	switch s {
	case StatusAvailable:
		return 0
	case StatusPending, StatusWaitlist:
		return 1
	case StatusFilled:
		return 2
	default:
		return 3
	}
}

// IsManagerAction reports whether s can be requested through the action endpoint.
func IsManagerAction(s Status) bool {
	for _, a := range ManagerActions {
		if s == a {
			return true
		}
	}
	return false
}
