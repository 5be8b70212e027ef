package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kicadmcp/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently dispatched editing actions",
	Long: `Lists the most recent actions the MCP server dispatched to KiCad,
newest first, with the backend endpoint, outcome, and request payload.
Netlist fetches are reads and stay out of the log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context, out io.Writer) error {
	store, err := history.Open(history.DefaultPath())
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recorded actions yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-18s %-22s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Tool, e.Endpoint, e.Status)
		if e.Message != "" {
			fmt.Fprintf(out, "    %s\n", e.Message)
		}
		if e.Request != "" && e.Request != "{}" {
			fmt.Fprintf(out, "    %s\n", e.Request)
		}
	}
	return nil
}
