// Package cli implements the kicadmcp command tree.
package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kicadmcp",
	Short: "MCP server connecting AI assistants to KiCad",
	Long: `kicadmcp lets MCP-speaking AI assistants read and edit the schematic
and board open in KiCad. The assistant calls tools over the Model
Context Protocol; kicadmcp validates each call and forwards it to the
KiCad agent plugin over HTTP.

Run "kicadmcp setup" once to configure the backend URL and netlist
extraction model, then "kicadmcp install" to register the server with
Claude Desktop.`,
	Example: `  kicadmcp setup              # Interactive configuration wizard
  kicadmcp install            # Register with Claude Desktop
  kicadmcp netlist --summary  # Check the KiCad connection
  kicadmcp docs               # Browse the built-in guides`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// Execute runs the command tree. Errors are returned to the caller
// rather than printed, so main controls the exit path.
func Execute() error {
	rootCmd.Version = versionString()
	return rootCmd.Execute()
}

func versionString() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
