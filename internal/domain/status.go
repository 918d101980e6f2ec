// Package domain provides domain models used across the application.
package domain

// Status represents the lifecycle state shared by source configs and runs.
type Status string

const (
	// StatusIdle means the config has never run or its last run finished long ago.
	StatusIdle Status = "idle"
	// StatusRunning means an ingestion run is currently in flight.
	StatusRunning Status = "running"
	// StatusFailed means the last run aborted with a fatal error.
	StatusFailed Status = "failed"
	// StatusDone means the last run completed.
	StatusDone Status = "done"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Terminal reports whether the status is a terminal run state.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusDone
}
