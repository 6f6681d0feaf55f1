// Package collectors feeds Prometheus metrics from the event bus.
package collectors

import (
	"log/slog"
	"sync"

	"github.com/smazurov/ledmcp/internal/events"
	"github.com/smazurov/ledmcp/internal/logging"
	"github.com/smazurov/ledmcp/internal/metrics"
)

// EventSubscriber is the part of the event bus the collector needs.
type EventSubscriber interface {
	Subscribe(handler any) func()
}

// EventCollector turns bus events into metric updates.
type EventCollector struct {
	logger   *slog.Logger
	bus      EventSubscriber
	unsubs   []func()
	stopOnce sync.Once
}

// NewEventCollector creates a collector for the given bus.
func NewEventCollector(bus EventSubscriber) *EventCollector {
	return &EventCollector{
		logger: logging.GetLogger("metrics").With("component", "event_collector"),
		bus:    bus,
	}
}

// Start subscribes to process and demo events.
func (c *EventCollector) Start() {
	c.unsubs = append(c.unsubs,
		c.bus.Subscribe(func(e events.ProcessStateChangedEvent) {
			c.logger.Debug("Process transition", "process_id", e.ProcessID, "old", e.OldState, "new", e.NewState)
			metrics.RecordProcessTransition(e.OldState, e.NewState)
		}),
		c.bus.Subscribe(func(e events.DemoLEDRequestEvent) {
			metrics.RecordDemoLEDRequest(e.Action, e.Outcome)
		}),
	)
}

// Stop unsubscribes from the bus.
func (c *EventCollector) Stop() {
	c.stopOnce.Do(func() {
		for _, unsub := range c.unsubs {
			unsub()
		}
		c.unsubs = nil
	})
}
