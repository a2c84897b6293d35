// Package render runs the timestamp pass over HTML files on disk.
package render

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/digest"
	"github.com/hlop3z/tzstamp/internal/ledger"
	"github.com/hlop3z/tzstamp/internal/markup"
)

// FileReport is the outcome of rendering one file.
type FileReport struct {
	Source string
	Output string
	Digest *digest.Digest
	Bytes  int64
	Stats  markup.Stats
	Err    error
}

// Report is the outcome of a render run.
type Report struct {
	Files []FileReport
}

// Totals sums the stats of every file that rendered successfully.
func (r Report) Totals() markup.Stats {
	var total markup.Stats
	for _, f := range r.Files {
		if f.Err == nil {
			total.Add(f.Stats)
		}
	}
	return total
}

// Bytes is the total size of the written outputs.
func (r Report) Bytes() int64 {
	var n int64
	for _, f := range r.Files {
		if f.Err == nil {
			n += f.Bytes
		}
	}
	return n
}

// Failed returns the reports of files that did not render.
func (r Report) Failed() []FileReport {
	var failed []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Renderer reads HTML, refreshes its holders and writes the result.
type Renderer struct {
	refresher *markup.Refresher
	ledger    *ledger.Ledger
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLedger records every rendered file in l.
func WithLedger(l *ledger.Ledger) Option {
	return func(r *Renderer) {
		r.ledger = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Renderer.
func New(refresher *markup.Refresher, opts ...Option) *Renderer {
	r := &Renderer{refresher: refresher, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsHTML reports whether path names an HTML file.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Attrs returns the markup contract in use.
func (r *Renderer) Attrs() markup.Attrs {
	return r.refresher.Attrs()
}

func parseFile(src string) (*markup.Document, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMarkupParse, err, "failed to open source").
			With("file", src)
	}
	defer f.Close()

	doc, err := markup.Parse(f)
	if err != nil {
		if ae, ok := err.(*alerr.Error); ok {
			return nil, ae.With("file", src)
		}
		return nil, err
	}
	return doc, nil
}

// Describe lists the holders of src as written, without refreshing.
func (r *Renderer) Describe(src string) ([]markup.Holder, error) {
	doc, err := parseFile(src)
	if err != nil {
		return nil, err
	}
	return r.refresher.Attrs().Describe(doc), nil
}

// Document parses and refreshes src without writing anything.
func (r *Renderer) Document(src string) (*markup.Document, markup.Stats, error) {
	doc, err := parseFile(src)
	if err != nil {
		return nil, markup.Stats{}, err
	}
	return doc, r.refresher.RefreshAll(doc), nil
}

// File renders src into dst, creating parent directories as needed.
func (r *Renderer) File(ctx context.Context, src, dst string) FileReport {
	report := FileReport{Source: src, Output: dst}

	doc, stats, err := r.Document(src)
	if err != nil {
		report.Err = err
		return report
	}
	report.Stats = stats

	d, err := digest.Compute(doc, r.refresher.Attrs())
	if err != nil {
		report.Err = err
		return report
	}
	report.Digest = d

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		report.Err = err
		return report
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		report.Err = alerr.Wrap(alerr.ErrMarkupWrite, err, "failed to create output directory").
			With("path", filepath.Dir(dst))
		return report
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
		report.Err = alerr.Wrap(alerr.ErrMarkupWrite, err, "failed to write output").
			With("file", dst)
		return report
	}
	report.Bytes = int64(buf.Len())

	r.logger.Debug("rendered",
		"source", src,
		"output", dst,
		"holders", stats.Holders,
		"fallbacks", stats.Fallbacks,
	)

	if r.ledger != nil {
		run := &ledger.Run{
			Source:    SourceKey(src),
			Output:    SourceKey(dst),
			Digest:    d.Root,
			Holders:   stats.Holders,
			Converted: stats.Converted,
			Fallbacks: stats.Fallbacks,
			Bytes:     report.Bytes,
		}
		if err := r.ledger.Record(ctx, run); err != nil {
			report.Err = err
		}
	}
	return report
}

// Tree renders every HTML file under srcDir into the same relative path under
// dstDir. A file that fails is reported and the walk continues.
func (r *Renderer) Tree(ctx context.Context, srcDir, dstDir string) (Report, error) {
	var report Report

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != srcDir && sameDir(path, dstDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsHTML(path) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		report.Files = append(report.Files, r.File(ctx, path, filepath.Join(dstDir, rel)))
		return nil
	})
	if err != nil {
		return report, alerr.Wrap(alerr.ErrMarkupParse, err, "failed to walk source directory").
			With("path", srcDir)
	}
	return report, nil
}

// Sources returns src itself when it is a file, or the HTML files below it.
// The dst directory is skipped when it lies inside src, so rendered output is
// never taken for a source.
func Sources(src, dst string) ([]string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMarkupParse, err, "source not found").
			With("path", src)
	}
	if !info.IsDir() {
		return []string{src}, nil
	}

	var files []string
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != src && dst != "" && sameDir(path, dst) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsHTML(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMarkupParse, err, "failed to walk source directory").
			With("path", src)
	}
	return files, nil
}

// Sources is the package-level Sources with files the ledger records as
// render outputs removed, so output written anywhere under src is skipped.
func (r *Renderer) Sources(ctx context.Context, src, dst string) ([]string, error) {
	files, err := Sources(src, dst)
	if err != nil || r.ledger == nil {
		return files, err
	}
	kept := files[:0]
	for _, f := range files {
		out, err := r.ledger.IsOutput(ctx, SourceKey(f))
		if err != nil {
			return nil, err
		}
		if !out {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// Path renders a single file or a directory tree depending on what src is.
// A file rendered onto an existing directory keeps its base name.
func (r *Renderer) Path(ctx context.Context, src, dst string) (Report, error) {
	info, err := os.Stat(src)
	if err != nil {
		return Report{}, alerr.Wrap(alerr.ErrMarkupParse, err, "source not found").
			With("path", src)
	}
	if info.IsDir() {
		return r.Tree(ctx, src, dst)
	}
	if di, err := os.Stat(dst); err == nil && di.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	return Report{Files: []FileReport{r.File(ctx, src, dst)}}, nil
}

// Check compares the current digest of src against the last recorded run.
// The returned run is nil when src was never rendered.
func (r *Renderer) Check(ctx context.Context, src string) (*digest.Digest, *ledger.Run, error) {
	doc, _, err := r.Document(src)
	if err != nil {
		return nil, nil, err
	}
	d, err := digest.Compute(doc, r.refresher.Attrs())
	if err != nil {
		return nil, nil, err
	}
	if r.ledger == nil {
		return d, nil, nil
	}
	last, err := r.ledger.Last(ctx, SourceKey(src))
	if err != nil {
		return d, nil, err
	}
	return d, last, nil
}

// SourceKey is the form of a path recorded in the ledger: absolute and
// cleaned, so "./site/index.html" and "site/index.html" name the same run.
func SourceKey(src string) string {
	if abs, err := filepath.Abs(src); err == nil {
		return abs
	}
	return filepath.Clean(src)
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
