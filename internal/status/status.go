package status

// Agent status constants for a thread's current run.
const (
	StatusIdle       = "idle"
	StatusConnecting = "connecting"
	StatusRunning    = "running"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// validStatuses is the set of allowed status values.
var validStatuses = map[string]bool{
	StatusIdle:       true,
	StatusConnecting: true,
	StatusRunning:    true,
	StatusCompleted:  true,
	StatusError:      true,
}

// ValidStatus reports whether s is an allowed status value.
func ValidStatus(s string) bool { return validStatuses[s] }

// active reports whether s counts as an in-flight run.
func active(s string) bool {
	return s == StatusRunning || s == StatusConnecting
}
