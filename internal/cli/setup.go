package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"kicadmcp/internal/config"
	"kicadmcp/internal/logging"
	"kicadmcp/internal/tui/helpers"
	"kicadmcp/internal/tui/setupmenu"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: `Walks through configuring kicadmcp: the KiCad backend URL, the model
used for netlist extraction, an optional LLM API key (stored in the OS
keyring), and registration with Claude Desktop.

Nothing is written until the final confirmation step. Re-running setup
edits the existing configuration.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	logger := logging.NewAppLogger()

	// Pre-fill the wizard when a config already exists.
	var cfg *config.Config
	if !config.IsFirstRun() {
		cfg = config.LoadOrDefault()
	}

	// Zero dimensions here; the tea program sends the real window size.
	ctx := helpers.NewUIContext(0, 0, cfg, logger)
	model := setupmenu.NewSetupModel(ctx)
	program := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("running setup wizard: %w", err)
	}
	if m, ok := finalModel.(*setupmenu.SetupModel); ok && m.Cancelled {
		return fmt.Errorf("setup cancelled")
	}
	return nil
}
