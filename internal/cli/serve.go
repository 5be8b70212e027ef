package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kicadmcp/internal/config"
	"kicadmcp/internal/logging"
	"kicadmcp/internal/mcp"
)

var serveHTTPAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Runs the MCP server. By default it speaks the protocol on
stdin/stdout, which is how desktop hosts launch it; logs go to stderr
so they never corrupt the protocol stream.

Hosts register the server in claude_desktop_config.json (or run
"kicadmcp install" to do it for you):

  {
    "mcpServers": {
      "kicad": {
        "command": "kicadmcp",
        "args": ["serve"]
      }
    }
  }

A missing config file is not an error: the server starts with defaults
so hosts can launch it before setup has run.`,
	Example: `  kicadmcp serve                    # Stdio, for desktop hosts
  kicadmcp serve --http :8765       # Streamable HTTP for remote clients`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.NewAppLogger()
	cfg := config.LoadOrDefault()
	srv := mcp.NewServer(cfg, logger)

	if serveHTTPAddr != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.StartHTTP(serveHTTPAddr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return srv.Stop()
		}
	}

	// Stdio serving returns when the host closes the stream.
	err := srv.Start()
	if stopErr := srv.Stop(); stopErr != nil {
		logger.Warn("Shutdown cleanup failed", "error", stopErr)
	}
	return err
}
