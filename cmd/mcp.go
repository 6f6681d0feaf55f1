package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/smazurov/ledmcp/internal/led"
	"github.com/smazurov/ledmcp/internal/logging"
	"github.com/smazurov/ledmcp/internal/mcpserver"
	"github.com/smazurov/ledmcp/internal/tools"
	"github.com/smazurov/ledmcp/internal/version"
	"github.com/spf13/cobra"
)

// CreateMCPCmd creates the mcp command, the process the HTTP wrapper supervises.
func CreateMCPCmd() *cobra.Command {
	var logLevel string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the LED MCP server over stdio",
		Long: `Serves the LED tools over the Model Context Protocol on stdin/stdout. ` +
			`Logs go to stderr so stdout stays a clean protocol channel. ` +
			`Exits on stdin EOF, SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The wrapper forwards our stderr into its own logs and journal
			logging.Initialize(logging.Config{
				Level:     logLevel,
				Format:    logFormat,
				Output:    logging.OutputStderr,
				NoJournal: true,
			})
			logger := logging.GetLogger("mcp")

			device := led.NewDevice(logging.GetLogger("led"))
			dispatcher := tools.NewDispatcher(device, logging.GetLogger("tools"))
			srv := mcpserver.New(dispatcher, version.String(), logger)

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Logging format (text, json)")
	return cmd
}

// contextOrBackground guards against commands executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
