package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// formatsCmd lists the display formats with a sample rendering.
func formatsCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List display formats with a sample rendering",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := newFormatter(cfg)
			if err != nil {
				return err
			}

			sample := f.Now().Add(-90 * time.Minute)
			if at != "" {
				sample, err = timefmt.Parse(at, f.Location())
				if err != nil {
					return err
				}
			}

			tbl := cli.NewTable("FORMAT", "SAMPLE")
			for _, format := range timefmt.Formats() {
				tbl.AddRow(format.String(), f.Instant(sample, format))
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, tbl.String())
			fmt.Fprintf(out, "\n%s %s, %s\n", cli.Dim("locale"), f.Locale().Tag, f.Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Timestamp to render (default: 90 minutes ago)")
	return cmd
}
