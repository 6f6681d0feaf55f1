package api

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/ledmcp/internal/api/models"
	"github.com/smazurov/ledmcp/internal/events"
	"github.com/smazurov/ledmcp/internal/logging"
	"github.com/smazurov/ledmcp/internal/process"
	"github.com/smazurov/ledmcp/internal/version"
)

// MCPSupervisor is the view of the MCP child process the API needs.
type MCPSupervisor interface {
	Alive() bool
	Info() process.Info
	Args() []string
	Restart() error
}

// Options configures the API server.
type Options struct {
	Supervisor        MCPSupervisor // nil reports the MCP process as stopped
	EventBus          *events.Bus   // optional; enables log streaming and demo events
	AuthUsername      string
	AuthPassword      string
	PrometheusHandler http.Handler // optional Prometheus metrics handler

	// OnListening is called once the listener is bound, before serving.
	OnListening func(addr net.Addr)
}

// Server is the HTTP wrapper around the MCP process.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	mu         sync.Mutex
	httpServer *http.Server
	options    *Options
	supervisor MCPSupervisor
	eventBus   *events.Bus
	logger     *slog.Logger
}

// basicAuthMiddleware creates middleware for HTTP basic authentication
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		// Skip auth for operations without security requirements
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		credentials, err := requestCredentials(ctx)
		if err != nil {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="ledmcp"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials format", err)
			return
		}
		if credentials == "" {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="ledmcp"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, pass, ok := strings.Cut(credentials, ":")
		if !ok || user != username || pass != password {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="ledmcp"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		next(ctx)
	}
}

// requestCredentials decodes "user:pass" from the Authorization header,
// or from the auth query parameter for SSE clients that cannot set headers.
func requestCredentials(ctx huma.Context) (string, error) {
	encoded := ""
	if authHeader := ctx.Header("Authorization"); authHeader != "" {
		const prefix = "Basic "
		if !strings.HasPrefix(authHeader, prefix) {
			return "", errors.New("unsupported authentication type")
		}
		encoded = authHeader[len(prefix):]
	} else {
		encoded = ctx.Query("auth")
	}
	if encoded == "" {
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// exactRootMiddleware keeps the "/" operation from acting as a catch-all.
func exactRootMiddleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if op := ctx.Operation(); op != nil && op.Path == "/" && ctx.URL().Path != "/" {
			huma.WriteErr(api, ctx, http.StatusNotFound, "Not Found")
			return
		}
		next(ctx)
	}
}

// NewServer creates a new API server with Huma v2 using Go 1.22+ native routing
func NewServer(opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig(version.ServiceName, version.String())
	config.Info.Description = "HTTP wrapper that supervises the LED MCP server and exposes health and demo endpoints"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:        api,
		mux:        mux,
		options:    opts,
		supervisor: opts.Supervisor,
		eventBus:   opts.EventBus,
		logger:     logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	api.UseMiddleware(exactRootMiddleware(api))

	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start serves HTTP on addr until Stop is called.
// Returns nil after a clean Stop.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves HTTP on an existing listener until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("Starting LED MCP HTTP server", "addr", ln.Addr().String())
	s.logger.Info("OpenAPI documentation available", "url", "http://"+ln.Addr().String()+"/docs")
	if s.options.OnListening != nil {
		s.options.OnListening(ln.Addr())
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx expires.
// Open SSE streams are closed when ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("Stopping API server")
	if err := srv.Shutdown(ctx); err != nil {
		return srv.Close()
	}
	return nil
}

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service status",
		Description: "Liveness summary of the wrapper and the MCP child process",
		Tags:        []string{"health"},
	}, func(_ context.Context, _ *struct{}) (*models.RootResponse, error) {
		body := models.RootData{
			Status:    "ok",
			Service:   version.ServiceName,
			Version:   version.String(),
			MCPStatus: models.MCPStatusStopped,
		}
		if s.supervisor != nil && s.supervisor.Alive() {
			body.MCPStatus = models.MCPStatusRunning
			body.MCPPID = s.supervisor.Info().PID
		}
		return &models.RootResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health",
		Description: "200 while the MCP child process is alive, 503 otherwise",
		Tags:        []string{"health"},
		Responses: map[string]*huma.Response{
			"503": {Description: "MCP process is not running"},
		},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		if s.supervisor != nil && s.supervisor.Alive() {
			return &models.HealthResponse{
				Status: http.StatusOK,
				Body:   models.HealthData{Status: "healthy"},
			}, nil
		}
		return &models.HealthResponse{
			Status: http.StatusServiceUnavailable,
			Body:   models.HealthData{Status: "unhealthy"},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		return &models.VersionResponse{Body: version.Get()}, nil
	})

	s.registerDemoLEDRoutes()
	s.registerProcessRoutes()
	s.registerLogRoutes()
}

// withAuth returns security requirement for basic auth
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
