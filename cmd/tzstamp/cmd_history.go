package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/digest"
)

// timeJSON is the timestamp layout used in JSON output.
const timeJSON = time.RFC3339

func parseTimeJSON(s string) (time.Time, error) {
	return time.Parse(timeJSON, s)
}

// historyCmd lists recorded render runs, newest first.
func historyCmd() *cobra.Command {
	var jsonOutput bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded render runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			l, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer l.Close()

			runs, err := l.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				items := make([]map[string]any, len(runs))
				for i, run := range runs {
					items[i] = map[string]any{
						"id":          run.ID,
						"source":      run.Source,
						"output":      run.Output,
						"digest":      run.Digest,
						"holders":     run.Holders,
						"converted":   run.Converted,
						"fallbacks":   run.Fallbacks,
						"bytes":       run.Bytes,
						"rendered_at": run.RenderedAt.Format(timeJSON),
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"count": len(runs), "runs": items})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No renders have been recorded.")
				return nil
			}

			tbl := cli.NewTable("RUN", "SOURCE", "HOLDERS", "FALLBACKS", "SIZE", "DIGEST", "RENDERED")
			for _, run := range runs {
				tbl.AddRow(
					shortID(run.ID),
					displayPath(run.Source),
					strconv.Itoa(run.Holders),
					strconv.Itoa(run.Fallbacks),
					humanize.Bytes(uint64(run.Bytes)),
					digest.Short(run.Digest),
					humanize.Time(run.RenderedAt),
				)
			}
			fmt.Fprint(out, tbl.String())
			fmt.Fprintf(out, "\n%s %s\n", cli.Dim("ledger"), l.URL())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
