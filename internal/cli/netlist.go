package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kicadmcp/internal/config"
	"kicadmcp/internal/kicad"
	"kicadmcp/internal/netlist"
	"kicadmcp/pkg/fileops"
)

var (
	netlistSummary bool
	netlistOut     string
)

var netlistCmd = &cobra.Command{
	Use:   "netlist",
	Short: "Fetch the netlist of the open schematic",
	Long: `Fetches the netlist of the schematic currently open in KiCad and
prints it as KiCad XML. This doubles as a connectivity check: if it
works, the assistant's tools will too.`,
	Example: `  kicadmcp netlist                  # Print the raw XML
  kicadmcp netlist --summary        # Component and net counts
  kicadmcp netlist --out board.xml  # Write the XML to a file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNetlist(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	netlistCmd.Flags().BoolVar(&netlistSummary, "summary", false, "Print a parsed overview instead of the raw XML")
	netlistCmd.Flags().StringVar(&netlistOut, "out", "", "Write the netlist XML to this file")
	rootCmd.AddCommand(netlistCmd)
}

func runNetlist(ctx context.Context, out io.Writer) error {
	cfg := config.LoadOrDefault()
	client := kicad.NewClient(cfg.KiCadAPIURL, cfg.RequestTimeout())

	xmlText, err := client.GetNetlist(ctx)
	if err != nil {
		return err
	}

	if netlistOut != "" {
		path, err := fileops.ValidateOutputPath(netlistOut)
		if err != nil {
			return err
		}
		if err := fileops.AtomicWriteFile(path, []byte(xmlText), 0o644); err != nil {
			return fmt.Errorf("writing netlist: %w", err)
		}
		fmt.Fprintf(out, "Netlist written to %s\n", path)
	}

	if netlistSummary {
		doc, err := netlist.ParseString(xmlText)
		if err != nil {
			return fmt.Errorf("parsing netlist: %w", err)
		}
		printNetlistSummary(out, doc.Summary())
		return nil
	}

	if netlistOut == "" {
		fmt.Fprint(out, xmlText)
		if !strings.HasSuffix(xmlText, "\n") {
			fmt.Fprintln(out)
		}
	}
	return nil
}

func printNetlistSummary(out io.Writer, s netlist.Summary) {
	if s.Source != "" {
		fmt.Fprintf(out, "Source: %s\n", s.Source)
	}
	if s.Tool != "" {
		fmt.Fprintf(out, "Tool:   %s\n", s.Tool)
	}
	fmt.Fprintf(out, "%d components, %d nets\n", s.Components, s.Nets)
	if len(s.Largest) > 0 {
		fmt.Fprintln(out, "Largest nets:")
		for _, n := range s.Largest {
			fmt.Fprintf(out, "  %-24s %d pins\n", n.Name, n.Pins)
		}
	}
}
