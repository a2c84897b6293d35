package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/markup"
	"github.com/hlop3z/tzstamp/internal/render"
	"github.com/hlop3z/tzstamp/internal/ui"
)

// inspectCmd lists every holder in a page with its rendering.
func inspectCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show every timestamp holder in a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			refresher, err := newRefresher(cfg)
			if err != nil {
				return err
			}

			rows, stats, err := inspectFile(render.New(refresher), args[0])
			if err != nil {
				return err
			}

			if interactive && cli.IsInteractive() {
				return ui.NewInspectApp(args[0], rows).Run()
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No timestamp holders found.")
				return nil
			}
			fmt.Fprint(out, ui.InspectTable(rows).String())
			fmt.Fprintf(out, "\n%d holders: %d converted, %d fallbacks, %d skipped\n",
				stats.Holders, stats.Converted, stats.Fallbacks, stats.Skipped)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse holders in a terminal UI")
	return cmd
}

// inspectFile describes the holders of path before and after a pass.
func inspectFile(r *render.Renderer, path string) ([]ui.HolderRow, markup.Stats, error) {
	before, err := r.Describe(path)
	if err != nil {
		return nil, markup.Stats{}, err
	}
	doc, stats, err := r.Document(path)
	if err != nil {
		return nil, markup.Stats{}, err
	}
	return ui.Pair(before, r.Attrs().Describe(doc)), stats, nil
}
