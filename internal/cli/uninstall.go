package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kicadmcp/internal/hostcfg"
)

var (
	uninstallName string
	uninstallPath string
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the server from Claude Desktop",
	Long: `Removes a kicadmcp registration from Claude Desktop's configuration.
Entries for other servers are untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUninstall(cmd.OutOrStdout())
	},
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallName, "name", hostcfg.DefaultServerName, "Server name to remove")
	uninstallCmd.Flags().StringVar(&uninstallPath, "path", "", "Host config file (default: the platform's Claude Desktop location)")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(out io.Writer) error {
	path, err := hostConfigPath(uninstallPath)
	if err != nil {
		return err
	}
	if err := hostcfg.Uninstall(path, uninstallName); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %q from %s\n", uninstallName, path)
	return nil
}
