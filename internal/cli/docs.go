package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kicadmcp/internal/docs"
)

var docsPlain bool

var docsCmd = &cobra.Command{
	Use:   "docs [page]",
	Short: "Browse the built-in guides",
	Long: `Without arguments, lists the built-in guides. With a page name,
renders that guide for the terminal. Use --plain for raw markdown,
e.g. when piping to another program.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDocs(cmd.OutOrStdout(), args)
	},
}

func init() {
	docsCmd.Flags().BoolVar(&docsPlain, "plain", false, "Print raw markdown without terminal styling")
	rootCmd.AddCommand(docsCmd)
}

func runDocs(out io.Writer, args []string) error {
	if len(args) == 0 {
		pages, err := docs.Pages()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Available guides:")
		for _, page := range pages {
			fmt.Fprintf(out, "  %-18s %s\n", page.Slug, page.Description)
		}
		fmt.Fprintln(out, "\nRead one with: kicadmcp docs <name>")
		return nil
	}

	page, err := docs.Lookup(args[0])
	if err != nil {
		return err
	}
	rendered, err := docs.Render(page.Body, docsPlain)
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}
