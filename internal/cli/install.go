package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kicadmcp/internal/hostcfg"
	"kicadmcp/internal/validation"
)

var (
	installName string
	installPath string
	installEnv  []string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the server with Claude Desktop",
	Long: `Adds a kicadmcp entry to Claude Desktop's configuration so the host
can launch "kicadmcp serve" on demand. Entries for other servers are
preserved, and the previous file is backed up next to it.

Variables passed with --env end up in the server's process
environment, e.g. --env OPENAI_API_KEY=sk-... for setups that avoid
the OS keyring.`,
	Example: `  kicadmcp install
  kicadmcp install --name kicad-lab --env KICAD_API_URL=http://10.0.0.5:9234
  kicadmcp install --path /tmp/claude_desktop_config.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(cmd.OutOrStdout())
	},
}

func init() {
	installCmd.Flags().StringVar(&installName, "name", hostcfg.DefaultServerName, "Server name to register under")
	installCmd.Flags().StringVar(&installPath, "path", "", "Host config file (default: the platform's Claude Desktop location)")
	installCmd.Flags().StringArrayVar(&installEnv, "env", nil, "KEY=VALUE for the server environment (repeatable)")
	rootCmd.AddCommand(installCmd)
}

func runInstall(out io.Writer) error {
	if err := validation.ValidateServerName(installName); err != nil {
		return err
	}

	var env map[string]string
	for _, pair := range installEnv {
		if err := validation.ValidateEnvPair(pair); err != nil {
			return err
		}
		key, value, _ := strings.Cut(pair, "=")
		if env == nil {
			env = make(map[string]string)
		}
		env[key] = value
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	path, err := hostConfigPath(installPath)
	if err != nil {
		return err
	}

	entry := hostcfg.NewServeEntry(exe, env)
	if err := hostcfg.Install(path, installName, entry); err != nil {
		return err
	}
	fmt.Fprintf(out, "Registered %q in %s\n", installName, path)

	snippet, err := hostcfg.Snippet(installName, entry)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nRestart Claude Desktop to pick up the change. Other MCP hosts accept the same entry:\n\n%s\n", snippet)
	return nil
}

// hostConfigPath resolves the host config location, honoring an
// explicit --path override.
func hostConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return hostcfg.DefaultPath()
}
