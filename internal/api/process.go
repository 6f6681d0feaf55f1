package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ledmcp/internal/api/models"
)

// registerProcessRoutes registers endpoints for inspecting and restarting the MCP child.
func (s *Server) registerProcessRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-mcp-process",
		Method:      http.MethodGet,
		Path:        "/api/mcp/process",
		Summary:     "MCP process",
		Description: "Supervisor state of the MCP child process",
		Tags:        []string{"mcp"},
		Errors:      []int{503},
	}, func(_ context.Context, _ *struct{}) (*models.ProcessResponse, error) {
		if s.supervisor == nil {
			return nil, huma.Error503ServiceUnavailable("MCP supervisor not configured")
		}
		return &models.ProcessResponse{Body: s.processData()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-mcp-process",
		Method:      http.MethodPost,
		Path:        "/api/mcp/process/restart",
		Summary:     "Restart MCP process",
		Description: "Stops the MCP child process and launches a fresh one",
		Tags:        []string{"mcp"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*models.ProcessResponse, error) {
		if s.supervisor == nil {
			return nil, huma.Error503ServiceUnavailable("MCP supervisor not configured")
		}
		if err := s.supervisor.Restart(); err != nil {
			s.logger.Error("MCP process restart failed", "error", err)
			return nil, huma.Error503ServiceUnavailable("Failed to restart MCP process", err)
		}
		s.logger.Info("MCP process restarted via API", "pid", s.supervisor.Info().PID)
		return &models.ProcessResponse{Body: s.processData()}, nil
	})
}

func (s *Server) processData() models.ProcessData {
	info := s.supervisor.Info()
	data := models.ProcessData{
		ID:       info.ID,
		State:    string(info.State),
		Alive:    s.supervisor.Alive(),
		PID:      info.PID,
		Command:  s.supervisor.Args(),
		ExitCode: info.ExitCode,
	}
	if !info.StartedAt.IsZero() {
		startedAt := info.StartedAt
		data.StartedAt = &startedAt
	}
	if info.LastError != nil {
		data.LastError = info.LastError.Error()
	}
	return data
}
