// Package mcpserver exposes the LED tool dispatcher over the Model Context
// Protocol. Framing and transport are handled by mcp-go; this package only
// translates tool definitions and results at the protocol boundary.
package mcpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/smazurov/ledmcp/internal/tools"
)

// ServerName is advertised to MCP clients during initialization.
const ServerName = "led-mcp-server"

// Server binds a tools.Dispatcher to an MCP server.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
	logger     *slog.Logger
}

// New creates an MCP server with one tool per dispatcher definition.
func New(dispatcher *tools.Dispatcher, version string, logger *slog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(ServerName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		dispatcher: dispatcher,
		logger:     logger,
	}

	for _, def := range tools.Definitions() {
		s.mcp.AddTool(toMCPTool(def), s.handleCall)
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve runs the stdio transport until the input closes or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("MCP server listening on stdio", "tools", len(tools.Definitions()))
	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		s.logger.Info("MCP server stopped")
		return nil
	}
	return err
}

func (s *Server) handleCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Debug("Tool call received", "tool", req.Params.Name)
	res := s.dispatcher.Call(ctx, req.Params.Name, req.GetArguments())
	return toCallToolResult(res), nil
}

// toCallToolResult renders a Result as a single text block. Failures are
// flagged with isError so clients need not parse the marker.
func toCallToolResult(res tools.Result) *mcp.CallToolResult {
	if !res.OK {
		return mcp.NewToolResultError(res.Text())
	}
	return mcp.NewToolResultText(res.Text())
}

// integer narrows a number property to the JSON schema integer type.
func integer() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

func toMCPTool(def tools.Definition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}

	for _, p := range def.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case tools.ParamInteger:
			props = append(props, integer())
			if p.Min != nil {
				props = append(props, mcp.Min(float64(*p.Min)))
			}
			if p.Max != nil {
				props = append(props, mcp.Max(float64(*p.Max)))
			}
			if def, ok := p.Default.(int); ok {
				props = append(props, mcp.DefaultNumber(float64(def)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case tools.ParamString:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}

	return mcp.NewTool(def.Name, opts...)
}
