package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/ledger"
	"github.com/hlop3z/tzstamp/internal/render"
)

// renderCmd rewrites timestamps in a file or directory tree.
func renderCmd() *cobra.Command {
	var output string
	var noLedger bool

	cmd := &cobra.Command{
		Use:   "render [src]",
		Short: "Rewrite timestamps in an HTML file or directory",
		Example: `  tzstamp render site/ -o public/
  tzstamp render page.html -o page.out.html --tz America/New_York`,
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
			if src == "" {
				printHelp(cmd.ErrOrStderr(), "source_required")
				return alerr.New(alerr.ErrMarkupParse, "no source given")
			}
			dst := cfg.OutputDir
			if output != "" {
				dst = output
			}

			r, l, err := newRenderer(cmd, cfg, noLedger)
			if err != nil {
				return err
			}
			if l != nil {
				defer l.Close()
			}

			report, err := r.Path(cmd.Context(), src, dst)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default: output_dir)")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "Do not record the run in the ledger")
	return cmd
}

// newRenderer builds a renderer, opening the ledger unless disabled.
func newRenderer(cmd *cobra.Command, cfg *Config, noLedger bool) (*render.Renderer, *ledger.Ledger, error) {
	refresher, err := newRefresher(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []render.Option{render.WithLogger(slog.Default())}

	var l *ledger.Ledger
	if !noLedger {
		l, err = openLedger(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, render.WithLedger(l))
	}
	return render.New(refresher, opts...), l, nil
}

// printReport prints the per-file table and a summary line. Failed files are
// reported on errOut and make the command fail.
func printReport(out, errOut io.Writer, report render.Report) error {
	tbl := cli.NewTable("FILE", "HOLDERS", "CONVERTED", "FALLBACKS", "SIZE")
	for _, f := range report.Files {
		if f.Err != nil {
			continue
		}
		tbl.AddRow(
			displayPath(f.Output),
			strconv.Itoa(f.Stats.Holders),
			strconv.Itoa(f.Stats.Converted),
			strconv.Itoa(f.Stats.Fallbacks),
			humanize.Bytes(uint64(f.Bytes)),
		)
	}
	if tbl.Len() > 0 {
		fmt.Fprint(out, tbl.String())
		fmt.Fprintln(out)
	}

	totals := report.Totals()
	fmt.Fprintf(out, "%s %d files, %d holders (%d converted, %d fallbacks), %s\n",
		cli.Success("Rendered"),
		len(report.Files)-len(report.Failed()),
		totals.Holders, totals.Converted, totals.Fallbacks,
		humanize.Bytes(uint64(report.Bytes())),
	)

	failed := report.Failed()
	for _, f := range failed {
		fmt.Fprint(errOut, cli.FormatError(f.Err))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed to render", len(failed), len(report.Files))
	}
	return nil
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
