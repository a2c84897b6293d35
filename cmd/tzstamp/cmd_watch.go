package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/digest"
	"github.com/hlop3z/tzstamp/internal/live"
	"github.com/hlop3z/tzstamp/internal/render"
)

// watchCmd renders once, then re-renders files as they change.
func watchCmd() *cobra.Command {
	var output string
	var noLedger bool

	cmd := &cobra.Command{
		Use:   "watch [src]",
		Short: "Render, then re-render changed files until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			src := cfg.SourceDir
			if len(args) > 0 {
				src = args[0]
			}
			dst := cfg.OutputDir
			if output != "" {
				dst = output
			}

			if err := checkWatchPaths(src, dst); err != nil {
				return err
			}

			r, l, err := newRenderer(cmd, cfg, noLedger)
			if err != nil {
				return err
			}
			if l != nil {
				defer l.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			report, err := r.Path(ctx, src, dst)
			if err != nil {
				return err
			}
			if err := printReport(out, errOut, report); err != nil {
				fmt.Fprint(errOut, cli.FormatError(err))
			}

			w, err := newSourceWatcher(ctx, r, src, dst, report, out, errOut)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s %s (Ctrl+C to stop)\n", cli.Highlight("Watching"), src)
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default: output_dir)")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "Do not record runs in the ledger")
	return cmd
}

// newSourceWatcher re-renders a changed source into its mirrored output path.
// Removing a source removes its output. Each re-render is compared with the
// previous digest of that source to report holder changes.
func newSourceWatcher(ctx context.Context, r *render.Renderer, src, dst string, initial render.Report, out, errOut io.Writer) (*live.Watcher, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}

	if err := checkWatchPaths(src, dst); err != nil {
		return nil, err
	}

	root := src
	var exclude []string
	if live.Within(dst, src) {
		exclude = append(exclude, dst)
	}
	match := func(path string) bool {
		return render.IsHTML(path) && !live.Within(path, dst)
	}
	target := func(path string) string {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return ""
		}
		return filepath.Join(dst, rel)
	}
	if !info.IsDir() {
		root = filepath.Dir(src)
		abs, _ := filepath.Abs(src)
		match = func(path string) bool {
			p, _ := filepath.Abs(path)
			return p == abs
		}
		fileDst := dst
		if di, err := os.Stat(dst); err == nil && di.IsDir() {
			fileDst = filepath.Join(dst, filepath.Base(src))
		}
		target = func(string) string { return fileDst }
	}

	digests := make(map[string]*digest.Digest, len(initial.Files))
	for _, f := range initial.Files {
		if f.Err == nil {
			digests[filepath.Clean(f.Source)] = f.Digest
		}
	}

	onChange := func(e live.Event) {
		path := target(e.Path)
		if path == "" {
			return
		}
		key := filepath.Clean(e.Path)
		if e.Removed() {
			delete(digests, key)
			if err := os.Remove(path); err == nil {
				fmt.Fprintf(out, "%s %s\n", cli.Dim("removed"), displayPath(path))
			}
			return
		}
		report := r.File(ctx, e.Path, path)
		if report.Err != nil {
			fmt.Fprint(errOut, cli.FormatError(report.Err))
			return
		}
		diff := digest.Compare(digests[key], report.Digest)
		digests[key] = report.Digest
		fmt.Fprintf(out, "%s %s (%s)\n", cli.Success("rendered"), displayPath(path), describeDiff(report.Stats.Holders, diff))
	}

	return live.NewWatcher(root, match, onChange, nil, exclude...)
}

// checkWatchPaths rejects a directory rendered onto itself, where every
// output write would be picked up as a source change.
func checkWatchPaths(src, dst string) error {
	if info, err := os.Stat(src); err == nil && info.IsDir() && live.Within(src, dst) {
		return alerr.New(alerr.ErrConfigInvalid, "output directory contains the source directory").
			With("source", src).
			With("output", dst).
			WithHelp("choose an output directory outside the source, e.g. -o public")
	}
	return nil
}

// describeDiff summarizes a re-render for the watch log.
func describeDiff(holders int, diff digest.Diff) string {
	if !diff.Changed {
		return fmt.Sprintf("%d holders, timestamps unchanged", holders)
	}
	return fmt.Sprintf("%d holders, +%d -%d", holders, diff.Added, diff.Removed)
}
