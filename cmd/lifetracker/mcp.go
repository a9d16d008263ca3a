// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server over the restored stores.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/lifetracker/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:         "mcp",
	Annotations: map[string]string{annotationStdinProtocol: "true"},
	Short:       "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and record body stats and browse
progress photos through a standardized protocol. The server communicates via
stdin/stdout. Changes are saved as they happen.

Health access cannot be granted from inside a session because stdin carries
the protocol. Run 'lifetracker health authorize' once beforehand.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "lifetracker": {
        "command": "lifetracker",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_entry       Record a body stat
  list_entries    List entries, newest first
  delete_entry    Delete an entry by ID or prefix
  clear_entries   Delete every entry from one source
  list_photos     List progress photos
  latest_photos   Latest photo per category
  photo_history   Photos for a category grouped by day
  health_status   Health import state and imported counts
  import_health   Import (or refresh) from the health export

AVAILABLE RESOURCES:

  lifetracker://history/latest   Latest value per stat type
  lifetracker://photos/latest    Latest photo per category`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(mcp.Deps{
			History:  app.history,
			Photos:   app.photos,
			Importer: app.importer,
			Log:      app.log,
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
