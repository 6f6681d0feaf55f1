package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/ledmcp/cmd"
	"github.com/smazurov/ledmcp/internal/api"
	"github.com/smazurov/ledmcp/internal/config"
	"github.com/smazurov/ledmcp/internal/events"
	"github.com/smazurov/ledmcp/internal/logging"
	"github.com/smazurov/ledmcp/internal/metrics/collectors"
	"github.com/smazurov/ledmcp/internal/metrics/exporters"
	"github.com/smazurov/ledmcp/internal/process"
	"github.com/smazurov/ledmcp/internal/systemd"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `doc:"Path to configuration file" short:"c" default:"ledmcp.toml"`

	// Server settings
	Host string `doc:"Interface to bind" default:"0.0.0.0" toml:"server.host" env:"HOST"`
	Port int    `doc:"Port to listen on" short:"p" default:"8000" toml:"server.port" env:"PORT"`

	// MCP child process settings
	MCPCommand     string `name:"mcp-command" doc:"Command line of the MCP server (default: this binary's mcp command)" toml:"mcp.command" env:"MCP_COMMAND"`
	MCPStopTimeout string `name:"mcp-stop-timeout" doc:"Grace period after SIGTERM before the MCP process is killed" default:"5s" toml:"mcp.stop_timeout" env:"MCP_STOP_TIMEOUT"`
	MCPKillTimeout string `name:"mcp-kill-timeout" doc:"How long to wait for the MCP process after SIGKILL" default:"5s" toml:"mcp.kill_timeout" env:"MCP_KILL_TIMEOUT"`

	// Metrics settings
	MetricsEnabled bool `doc:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Auth settings (protects the MCP restart and log stream endpoints when both are set)
	AuthUsername string `doc:"Basic auth username" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `doc:"Basic auth password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel  string `doc:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `doc:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingAPI    string `doc:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP   string `doc:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingMCP    string `doc:"Forwarded MCP process output logging level" default:"info" toml:"logging.mcp" env:"LOGGING_MCP"`
}

// parseDuration parses a duration option, falling back to def when empty or invalid.
func parseDuration(logger *slog.Logger, name, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.Warn("Invalid duration, using default", "option", name, "value", value, "default", def)
		return def
	}
	return d
}

// mcpArgs returns the child command line: the override when set, else "<self> mcp".
func mcpArgs(opts *Options) ([]string, error) {
	if opts.MCPCommand != "" {
		return process.SplitCommand(opts.MCPCommand)
	}
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return []string{self, "mcp", "--log-level", opts.LoggingMCP}, nil
}

func main() {
	var supervisor *process.Supervisor
	// Covers exits that skip the OnStop hook
	defer func() {
		if supervisor != nil {
			supervisor.Stop()
		}
	}()

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var server *api.Server
		var watcher *config.Watcher[logging.Config]
		var collector *collectors.EventCollector
		var notifier *systemd.Notifier

		// Sub-commands also pass through here, so all wiring waits for OnStart
		hooks.OnStart(func() {
			// Load configuration automatically
			if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
				slog.Warn("Failed to load config", "error", loadErr)
			}

			// Initialize logging system
			logging.Initialize(logging.Config{
				Level:  opts.LoggingLevel,
				Format: opts.LoggingFormat,
				Modules: map[string]string{
					"api":  opts.LoggingAPI,
					"http": opts.LoggingHTTP,
					"mcp":  opts.LoggingMCP,
				},
			})
			logger := logging.GetLogger("main")
			notifier = systemd.NewNotifier(logging.GetLogger("systemd"))

			// Create event bus for in-process event handling
			eventBus := events.New()
			logging.SetLogCallback(func(entry logging.LogEntry) {
				eventBus.Publish(events.LogEntryEvent{
					Seq:        entry.Seq,
					Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
					Level:      entry.Level,
					Module:     entry.Module,
					Message:    entry.Message,
					Attributes: entry.Attributes,
				})
			})

			if opts.MetricsEnabled {
				collector = collectors.NewEventCollector(eventBus)
				collector.Start()
			}

			args, argsErr := mcpArgs(opts)
			if argsErr != nil || len(args) == 0 {
				logger.Error("Invalid MCP command", "command", opts.MCPCommand, "error", argsErr)
				os.Exit(1)
			}

			supervisor = process.NewSupervisor(&process.SupervisorOptions{
				ID:              "mcp",
				Args:            args,
				GracefulTimeout: parseDuration(logger, "mcp-stop-timeout", opts.MCPStopTimeout, process.DefaultGracefulTimeout),
				KillTimeout:     parseDuration(logger, "mcp-kill-timeout", opts.MCPKillTimeout, process.DefaultKillTimeout),
				Logger:          logging.GetLogger("process"),
				OnStateChange: func(id string, oldState, newState process.State, err error) {
					ev := events.ProcessStateChangedEvent{
						ProcessID: id,
						OldState:  string(oldState),
						NewState:  string(newState),
						Timestamp: time.Now().UTC().Format(time.RFC3339),
					}
					if err != nil {
						ev.Error = err.Error()
					}
					eventBus.Publish(ev)
					notifier.Status("MCP process " + string(newState))
				},
				ConfigureProcess: func(p *process.Process) {
					p.SetLogParser(logging.GetLogger("mcp"), logging.ParseTextLine)
				},
			})

			apiOpts := &api.Options{
				Supervisor:   supervisor,
				EventBus:     eventBus,
				AuthUsername: opts.AuthUsername,
				AuthPassword: opts.AuthPassword,
				OnListening: func(addr net.Addr) {
					logger.Info("HTTP server listening", "addr", addr.String())
					notifier.Ready()
				},
			}
			if opts.MetricsEnabled {
				apiOpts.PrometheusHandler = exporters.HTTPHandler()
			}
			server = api.NewServer(apiOpts)

			if w, watchErr := config.WatchLogging(opts.Config, logging.GetLogger("config")); watchErr != nil {
				logger.Warn("Config watcher not started", "path", opts.Config, "error", watchErr)
			} else {
				watcher = w
			}

			// Launch failure leaves /health at 503; the HTTP server still comes up
			if startErr := supervisor.Start(); startErr != nil {
				logger.Error("Failed to start MCP process", "command", args, "error", startErr)
			}

			addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
			if startErr := server.Start(addr); startErr != nil {
				logger.Error("Failed to start HTTP server", "addr", addr, "error", startErr)
				supervisor.Stop()
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger := logging.GetLogger("main")
			logger.Info("Shutting down server")
			if notifier != nil {
				notifier.Stopping()
			}

			if server != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if stopErr := server.Stop(ctx); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
				cancel()
			}

			// Stop the MCP process after the HTTP server stops accepting requests
			if supervisor != nil {
				logger.Info("Stopping MCP process")
				supervisor.Stop()
			}

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}
			if collector != nil {
				collector.Stop()
			}
		})
	})

	cli.Root().Use = "ledmcp"
	cli.Root().Short = "LED MCP server and its HTTP supervisor"

	cli.Root().AddCommand(cmd.CreateMCPCmd())
	cli.Root().AddCommand(cmd.CreateToolsCmd())
	cli.Root().AddCommand(cmd.CreateCallCmd())

	// Run the CLI
	cli.Run()
}
