package events

// Event type constants for kelindar/event.
const (
	TypeProcessStateChanged uint32 = iota + 1
	TypeLogEntry
	TypeDemoLEDRequest
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProcessStateChangedEvent is published when the supervised MCP process changes state.
type ProcessStateChangedEvent struct {
	ProcessID string `json:"process_id" example:"mcp" doc:"Supervised process identifier"`
	OldState  string `json:"old_state" example:"starting" doc:"Previous state"`
	NewState  string `json:"new_state" example:"running" doc:"Current state"`
	Error     string `json:"error,omitempty" doc:"Launch or exit error, if any"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProcessStateChangedEvent.
func (e ProcessStateChangedEvent) Type() uint32 { return TypeProcessStateChanged }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"api" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// DemoLEDRequestEvent is published for every call to the HTTP demo LED endpoints.
type DemoLEDRequestEvent struct {
	Action    string `json:"action" example:"on" doc:"Demo action: status, on, off"`
	Outcome   string `json:"outcome" example:"ok" doc:"ok or rejected"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DemoLEDRequestEvent.
func (e DemoLEDRequestEvent) Type() uint32 { return TypeDemoLEDRequest }
