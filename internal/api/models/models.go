package models

import (
	"time"

	"github.com/smazurov/ledmcp/internal/events"
	"github.com/smazurov/ledmcp/internal/version"
)

// DemoNote is attached to every demo LED response.
const DemoNote = "This is a demo endpoint. The MCP server communicates over stdio."

// MCP process status values reported by the root endpoint.
const (
	MCPStatusRunning = "running"
	MCPStatusStopped = "stopped"
)

// Root models
type RootData struct {
	Status    string `json:"status" example:"ok" doc:"Wrapper status"`
	Service   string `json:"service" example:"LED MCP Server" doc:"Service name"`
	Version   string `json:"version" example:"1.0.0" doc:"Service version"`
	MCPStatus string `json:"mcp_status" example:"running" enum:"running,stopped" doc:"Whether the MCP child process is alive"`
	MCPPID    int    `json:"mcp_pid,omitempty" example:"4242" doc:"PID of the MCP child process while running"`
}

type RootResponse struct {
	Body RootData
}

// Health check models
type HealthData struct {
	Status string `json:"status" example:"healthy" enum:"healthy,unhealthy" doc:"Health status"`
}

// HealthResponse carries a dynamic status code: 200 when the MCP process is alive, 503 otherwise.
type HealthResponse struct {
	Status int
	Body   HealthData
}

// Demo LED models
type DemoLEDStatusData struct {
	IsOn       bool   `json:"is_on" example:"false" doc:"Simulated power state"`
	Brightness int    `json:"brightness" example:"0" doc:"Simulated brightness"`
	Color      string `json:"color" example:"white" doc:"Simulated color"`
	Message    string `json:"message" doc:"Demo notice"`
}

type DemoLEDStatusResponse struct {
	Body DemoLEDStatusData
}

type DemoLEDOnRequest struct {
	Brightness int `query:"brightness" default:"100" example:"75" doc:"Brightness percentage (0-100)"`
}

type DemoLEDActionData struct {
	Status  string `json:"status" example:"ok" doc:"Request status"`
	Message string `json:"message" example:"LED turned on at 75%" doc:"Result message"`
	Note    string `json:"note" doc:"Demo notice"`
}

type DemoLEDActionResponse struct {
	Body DemoLEDActionData
}

// MCP process models
type ProcessData struct {
	ID        string     `json:"id" example:"mcp" doc:"Supervised process identifier"`
	State     string     `json:"state" example:"running" enum:"idle,starting,running,stopping,error" doc:"Supervisor state"`
	Alive     bool       `json:"alive" example:"true" doc:"Whether the child has not exited"`
	PID       int        `json:"pid,omitempty" example:"4242" doc:"Child PID while running"`
	Command   []string   `json:"command" doc:"Child command line"`
	StartedAt *time.Time `json:"started_at,omitempty" doc:"Time of the last successful launch"`
	ExitCode  *int       `json:"exit_code,omitempty" example:"0" doc:"Exit code of the last run"`
	LastError string     `json:"last_error,omitempty" doc:"Launch or exit error"`
}

type ProcessResponse struct {
	Body ProcessData
}

// Version models
type VersionResponse struct {
	Body version.Info
}

// Log models
type LogsRequest struct {
	Limit int `query:"limit" default:"100" minimum:"0" maximum:"1000" doc:"Maximum number of recent entries (0 = all buffered)"`
}

type LogsData struct {
	Entries []events.LogEntryEvent `json:"entries" doc:"Recent log entries, oldest first"`
	Count   int                    `json:"count" example:"100" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
