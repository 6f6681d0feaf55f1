package process

import "time"

// State represents the current state of a supervised process.
type State string

// Process states.
const (
	StateIdle     State = "idle"     // Not running
	StateStarting State = "starting" // Being started
	StateRunning  State = "running"  // Active
	StateStopping State = "stopping" // Being stopped
	StateError    State = "error"    // Failed to start/crashed
)

// Info contains information about a supervised process.
type Info struct {
	ID        string
	State     State
	PID       int
	StartedAt time.Time
	// ExitCode is nil until the process has exited.
	ExitCode  *int
	LastError error
}
