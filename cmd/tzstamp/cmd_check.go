package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/digest"
)

// Check statuses.
const (
	statusUnchanged = "unchanged"
	statusChanged   = "changed"
	statusNew       = "never rendered"
)

// checkResult is one source in check output.
type checkResult struct {
	Source     string `json:"source"`
	Digest     string `json:"digest"`
	LastDigest string `json:"last_digest,omitempty"`
	RenderedAt string `json:"rendered_at,omitempty"`
	Status     string `json:"status"`
}

// checkCmd compares source holders against the last recorded render.
func checkCmd() *cobra.Command {
	var jsonOutput bool
	var output string

	cmd := &cobra.Command{
		Use:   "check [src]",
		Short: "Compare sources against their last recorded render",
		Long: `Computes a digest over the timestamp holders of each source and compares it
with the digest recorded by the last render. Only timestamp values and
format selectors count; editing surrounding markup does not mark a source
as changed.

Exits with status 1 when any source changed since its last render.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			src := cfg.SourceDir
			if len(args) > 0 {
				src = args[0]
			}

			r, l, err := newRenderer(cmd, cfg, false)
			if err != nil {
				return err
			}
			defer l.Close()

			dst := cfg.OutputDir
			if output != "" {
				dst = output
			}
			sources, err := r.Sources(cmd.Context(), src, dst)
			if err != nil {
				return err
			}

			results := make([]checkResult, 0, len(sources))
			changed := 0
			for _, path := range sources {
				d, last, err := r.Check(cmd.Context(), path)
				if err != nil {
					return err
				}
				res := checkResult{Source: path, Digest: d.Root, Status: statusNew}
				if last != nil {
					res.LastDigest = last.Digest
					res.RenderedAt = last.RenderedAt.Format(timeJSON)
					res.Status = statusUnchanged
					if last.Digest != d.Root {
						res.Status = statusChanged
						changed++
					}
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				printCheck(cmd, results)
			}

			if changed > 0 {
				return fmt.Errorf("%d of %d sources changed since their last render", changed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Rendered output directory to skip (default: output_dir)")
	return cmd
}

func printCheck(cmd *cobra.Command, results []checkResult) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No HTML sources found.")
		return
	}

	tbl := cli.NewTable("SOURCE", "DIGEST", "LAST RENDER", "STATUS")
	for _, res := range results {
		when := "-"
		if t, err := parseTimeJSON(res.RenderedAt); err == nil {
			when = humanize.Time(t)
		}
		status := res.Status
		switch status {
		case statusChanged:
			status = cli.Warning(status)
		case statusUnchanged:
			status = cli.Success(status)
		default:
			status = cli.Dim(status)
		}
		tbl.AddRow(displayPath(res.Source), digest.Short(res.Digest), when, status)
	}
	fmt.Fprint(out, tbl.String())
}
