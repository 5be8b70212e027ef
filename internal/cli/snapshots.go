package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kicadmcp/internal/snapshot"
)

var (
	snapshotsLimit int
	snapshotsShow  string
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List or show pre-edit netlist snapshots",
	Long: `Lists the netlist snapshots taken automatically before schematic
edits, newest first. --show prints the full netlist XML of one
snapshot, identified by any unique prefix of its hash.`,
	Example: `  kicadmcp snapshots
  kicadmcp snapshots -n 5
  kicadmcp snapshots --show 4f2a91c`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshots(cmd.OutOrStdout())
	},
}

func init() {
	snapshotsCmd.Flags().IntVarP(&snapshotsLimit, "limit", "n", 20, "Maximum snapshots to list")
	snapshotsCmd.Flags().StringVar(&snapshotsShow, "show", "", "Print the netlist recorded in this snapshot")
	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(out io.Writer) error {
	store, err := snapshot.Open(snapshot.DefaultPath())
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}

	if snapshotsShow != "" {
		content, err := store.Show(snapshotsShow)
		if err != nil {
			return err
		}
		fmt.Fprint(out, content)
		if !strings.HasSuffix(content, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	snaps, err := store.List(snapshotsLimit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No snapshots yet. They are taken automatically before schematic edits.")
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintf(out, "%s  %s  %s\n", shortHash(s.Hash), s.When.Format("2006-01-02 15:04:05"), s.Label)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
