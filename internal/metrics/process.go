// Package metrics provides Prometheus metrics for the supervised MCP process
// and the HTTP demo endpoints.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exit reasons recorded on ledmcp_mcp_process_exits_total.
const (
	ExitReasonStopped      = "stopped"
	ExitReasonExited       = "exited"
	ExitReasonCrashed      = "crashed"
	ExitReasonLaunchFailed = "launch_failed"
)

var (
	processUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ledmcp",
		Subsystem: "mcp",
		Name:      "process_up",
		Help:      "Whether the supervised MCP process is running (1) or not (0)",
	})

	processStarts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ledmcp",
		Subsystem: "mcp",
		Name:      "process_starts_total",
		Help:      "Number of successful MCP process launches",
	})

	processExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledmcp",
		Subsystem: "mcp",
		Name:      "process_exits_total",
		Help:      "Number of MCP process exits by reason",
	}, []string{"reason"})

	// Local mirror for API access without scraping.
	snapshotMu sync.RWMutex
	snapshot   ProcessMetrics
)

// ProcessMetrics holds current values of the process metrics.
type ProcessMetrics struct {
	Up     bool
	Starts uint64
	Exits  map[string]uint64
}

// RecordProcessTransition updates process metrics for a state change.
// States are the lowercase names used by the process supervisor.
func RecordProcessTransition(oldState, newState string) {
	switch {
	case newState == "running":
		processUp.Set(1)
		processStarts.Inc()
		updateSnapshot(func(m *ProcessMetrics) {
			m.Up = true
			m.Starts++
		})
	case oldState == "starting" && newState == "error":
		recordExit(ExitReasonLaunchFailed)
	case newState == "idle" && oldState == "stopping":
		recordExit(ExitReasonStopped)
	case newState == "idle" && oldState == "running":
		recordExit(ExitReasonExited)
	case newState == "error" && oldState == "running":
		recordExit(ExitReasonCrashed)
	}
}

func recordExit(reason string) {
	processUp.Set(0)
	processExits.WithLabelValues(reason).Inc()
	updateSnapshot(func(m *ProcessMetrics) {
		m.Up = false
		m.Exits[reason]++
	})
}

// GetProcessMetrics returns a copy of the current process metrics.
func GetProcessMetrics() ProcessMetrics {
	snapshotMu.RLock()
	defer snapshotMu.RUnlock()
	out := ProcessMetrics{Up: snapshot.Up, Starts: snapshot.Starts, Exits: make(map[string]uint64, len(snapshot.Exits))}
	for k, v := range snapshot.Exits {
		out.Exits[k] = v
	}
	return out
}

func updateSnapshot(update func(*ProcessMetrics)) {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()
	if snapshot.Exits == nil {
		snapshot.Exits = make(map[string]uint64)
	}
	update(&snapshot)
}
