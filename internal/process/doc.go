// Package process provides subprocess lifecycle management.
//
// The package offers two levels of abstraction:
//
// Process wraps os/exec for a single child:
//   - Stdin kept open for the lifetime of the child (stdio servers exit on EOF)
//   - Graceful shutdown with SIGTERM and a configurable timeout
//   - Force kill of the whole process group if the timeout expires
//   - Line-oriented output forwarding with pluggable log parsing
//   - Non-blocking liveness polling via Exited
//
// Supervisor owns one named Process as a scoped resource:
//   - Start spawns the child; launch failures are reported, not retried
//   - Alive reports liveness for health checks
//   - State tracking (idle, starting, running, stopping, error)
//   - OnStateChange hook for events and metrics
//   - Stop is idempotent and safe to call from every shutdown path
//
// Example usage:
//
//	sup := process.NewSupervisor(&process.SupervisorOptions{
//	    ID:   "mcp",
//	    Args: []string{"/usr/local/bin/ledmcp", "mcp"},
//	    OnStateChange: func(id string, old, new process.State, err error) {
//	        log.Printf("Process %s: %s -> %s", id, old, new)
//	    },
//	})
//	if err := sup.Start(); err != nil {
//	    log.Printf("child not running: %v", err)
//	}
//	defer sup.Stop()
package process
