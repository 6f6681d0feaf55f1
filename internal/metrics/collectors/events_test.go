package collectors

import (
	"testing"
	"time"

	"github.com/smazurov/ledmcp/internal/events"
	"github.com/smazurov/ledmcp/internal/metrics"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timeout waiting for condition")
}

func TestEventCollectorRecordsTransitions(t *testing.T) {
	bus := events.New()
	c := NewEventCollector(bus)
	c.Start()
	defer c.Stop()

	before := metrics.GetProcessMetrics()

	bus.Publish(events.ProcessStateChangedEvent{ProcessID: "mcp", OldState: "starting", NewState: "running"})
	waitFor(t, func() bool { return metrics.GetProcessMetrics().Starts == before.Starts+1 })

	if !metrics.GetProcessMetrics().Up {
		t.Error("expected process up")
	}

	bus.Publish(events.ProcessStateChangedEvent{ProcessID: "mcp", OldState: "running", NewState: "error"})
	waitFor(t, func() bool {
		return metrics.GetProcessMetrics().Exits[metrics.ExitReasonCrashed] == before.Exits[metrics.ExitReasonCrashed]+1
	})
}

func TestEventCollectorStop(t *testing.T) {
	bus := events.New()
	c := NewEventCollector(bus)
	c.Start()
	c.Stop()
	c.Stop() // idempotent

	before := metrics.GetProcessMetrics().Starts
	bus.Publish(events.ProcessStateChangedEvent{OldState: "starting", NewState: "running"})
	time.Sleep(20 * time.Millisecond)

	if got := metrics.GetProcessMetrics().Starts; got != before {
		t.Errorf("starts changed after stop: %d -> %d", before, got)
	}
}
