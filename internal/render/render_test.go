package render

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/ledger"
	"github.com/hlop3z/tzstamp/internal/markup"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

var fixedNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

const source = `<html><body>
<span data-timestamp="2024-01-10T12:00:00Z">raw</span>
<span data-timestamp="2024-01-10T10:00:00Z" data-time-format="relative">raw</span>
<span data-timestamp="nope">nope</span>
</body></html>`

func newTestRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	f := timefmt.New(
		timefmt.WithLocation(time.UTC),
		timefmt.WithClock(func() time.Time { return fixedNow }),
		timefmt.WithLogger(logger),
	)
	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(markup.NewRefresher(f, markup.Attrs{}), opts...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.html")
	dst := filepath.Join(dir, "out", "sub", "in.html")
	writeFile(t, src, source)

	r := newTestRenderer(t)
	report := r.File(context.Background(), src, dst)
	if report.Err != nil {
		t.Fatalf("File: %v", report.Err)
	}

	want := markup.Stats{Holders: 3, Converted: 2, Fallbacks: 1}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}
	if report.Digest == nil {
		t.Error("Digest should be set")
	}

	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if int64(len(out)) != report.Bytes {
		t.Errorf("Bytes = %d, file has %d", report.Bytes, len(out))
	}
	for _, s := range []string{"1/10/2024, 12:00:00 PM", "2 hours ago", ">nope<"} {
		if !strings.Contains(string(out), s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t)
	report := r.File(context.Background(), filepath.Join(dir, "missing.html"), filepath.Join(dir, "out.html"))
	if !alerr.Is(report.Err, alerr.ErrMarkupParse) {
		t.Errorf("Err = %v, want %s", report.Err, alerr.ErrMarkupParse)
	}
}

func TestTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "public")

	writeFile(t, filepath.Join(src, "index.html"), source)
	writeFile(t, filepath.Join(src, "blog", "post.htm"), source)
	writeFile(t, filepath.Join(src, "style.css"), "body{}")

	r := newTestRenderer(t)
	report, err := r.Tree(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(report.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(report.Files))
	}
	if len(report.Failed()) != 0 {
		t.Errorf("unexpected failures: %+v", report.Failed())
	}

	totals := report.Totals()
	if totals.Holders != 6 || totals.Fallbacks != 2 {
		t.Errorf("Totals = %+v", totals)
	}
	if report.Bytes() == 0 {
		t.Error("Bytes should be non-zero")
	}

	for _, rel := range []string{"index.html", filepath.Join("blog", "post.htm")} {
		if _, err := os.Stat(filepath.Join(dst, rel)); err != nil {
			t.Errorf("%s not written: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "style.css")); !os.IsNotExist(err) {
		t.Error("non-HTML files should not be copied")
	}
}

func TestPathFileIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.html")
	out := filepath.Join(dir, "out")
	writeFile(t, src, source)
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatal(err)
	}

	r := newTestRenderer(t)
	report, err := r.Path(context.Background(), src, out)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if len(report.Files) != 1 || report.Files[0].Output != filepath.Join(out, "page.html") {
		t.Errorf("report = %+v", report.Files)
	}
}

func TestLedgerRecordAndCheck(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l, err := ledger.Open(ctx, filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer l.Close()

	src := filepath.Join(dir, "page.html")
	writeFile(t, src, source)

	r := newTestRenderer(t, WithLedger(l))

	d, last, err := r.Check(ctx, src)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if last != nil {
		t.Errorf("expected no previous run, got %+v", last)
	}

	report := r.File(ctx, src, filepath.Join(dir, "out.html"))
	if report.Err != nil {
		t.Fatalf("File: %v", report.Err)
	}
	if report.Digest.Root != d.Root {
		t.Errorf("render digest %s != check digest %s", report.Digest.Root, d.Root)
	}

	_, last, err = r.Check(ctx, src)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if last == nil || last.Digest != d.Root || last.Holders != 3 {
		t.Errorf("last run = %+v", last)
	}

	writeFile(t, src, strings.Replace(source, "nope", "2024-01-01", 1))
	changed, _, err := r.Check(ctx, src)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if changed.Root == last.Digest {
		t.Error("digest should change when a holder value changes")
	}
}

func TestCheckMatchesEquivalentPaths(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	t.Chdir(dir)

	l, err := ledger.Open(ctx, "ledger.db")
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer l.Close()

	writeFile(t, filepath.Join(dir, "site", "page.html"), source)
	r := newTestRenderer(t, WithLedger(l))

	report, err := r.Path(ctx, "./site", "public")
	if err != nil || len(report.Failed()) != 0 {
		t.Fatalf("Path: %v %+v", err, report.Failed())
	}

	for _, src := range []string{
		"site/page.html",
		"./site/page.html",
		"site/../site/page.html",
		filepath.Join(dir, "site", "page.html"),
	} {
		d, last, err := r.Check(ctx, src)
		if err != nil {
			t.Fatalf("Check(%q): %v", src, err)
		}
		if last == nil {
			t.Errorf("Check(%q) found no run", src)
			continue
		}
		if last.Digest != d.Root || last.Source != filepath.Join(dir, "site", "page.html") {
			t.Errorf("Check(%q) = %+v", src, last)
		}
	}
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	site := filepath.Join(dir, "site")
	writeFile(t, filepath.Join(site, "index.html"), source)
	writeFile(t, filepath.Join(site, "blog", "post.htm"), source)
	writeFile(t, filepath.Join(site, "notes.txt"), "x")
	writeFile(t, filepath.Join(site, "public", "index.html"), source)
	writeFile(t, filepath.Join(site, "public", "blog", "post.htm"), source)

	tests := []struct {
		name string
		src  string
		dst  string
		want []string
	}{
		{
			name: "output inside source is skipped",
			src:  site,
			dst:  filepath.Join(site, "public"),
			want: []string{filepath.Join(site, "blog", "post.htm"), filepath.Join(site, "index.html")},
		},
		{
			name: "output elsewhere",
			src:  site,
			dst:  filepath.Join(dir, "public"),
			want: []string{
				filepath.Join(site, "blog", "post.htm"),
				filepath.Join(site, "index.html"),
				filepath.Join(site, "public", "blog", "post.htm"),
				filepath.Join(site, "public", "index.html"),
			},
		},
		{
			name: "single file",
			src:  filepath.Join(site, "index.html"),
			dst:  filepath.Join(site, "public"),
			want: []string{filepath.Join(site, "index.html")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sources(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("Sources: %v", err)
			}
			if strings.Join(got, "\n") != strings.Join(tt.want, "\n") {
				t.Errorf("Sources() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Sources(filepath.Join(dir, "missing"), ""); !alerr.Is(err, alerr.ErrMarkupParse) {
		t.Errorf("missing source: got %v", err)
	}
}

func TestRendererSourcesDropsRecordedOutputs(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	l, err := ledger.Open(ctx, filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	defer l.Close()

	site := filepath.Join(dir, "site")
	writeFile(t, filepath.Join(site, "index.html"), source)
	r := newTestRenderer(t, WithLedger(l))
	if _, err := r.Path(ctx, site, filepath.Join(site, "build")); err != nil {
		t.Fatalf("Path: %v", err)
	}

	// The output dir is not the one given, so only the ledger can tell.
	got, err := r.Sources(ctx, site, filepath.Join(dir, "public"))
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join(site, "index.html") {
		t.Errorf("Sources() = %v", got)
	}

	plain, err := newTestRenderer(t).Sources(ctx, site, filepath.Join(dir, "public"))
	if err != nil || len(plain) != 2 {
		t.Errorf("without a ledger Sources() = %v, %v", plain, err)
	}
}

func TestTreeSkipsNestedOutput(t *testing.T) {
	site := filepath.Join(t.TempDir(), "site")
	writeFile(t, filepath.Join(site, "index.html"), source)
	r := newTestRenderer(t)
	dst := filepath.Join(site, "public")

	for range 2 {
		report, err := r.Tree(context.Background(), site, dst)
		if err != nil {
			t.Fatalf("Tree: %v", err)
		}
		if len(report.Files) != 1 {
			t.Errorf("rendered %d files, want 1", len(report.Files))
		}
	}
	if _, err := os.Stat(filepath.Join(dst, "public")); !os.IsNotExist(err) {
		t.Errorf("output was rendered into itself: %v", err)
	}
}

func TestIsHTML(t *testing.T) {
	tests := map[string]bool{
		"a.html":      true,
		"b.HTM":       true,
		"c.css":       false,
		"index.html~": false,
	}
	for path, want := range tests {
		if got := IsHTML(path); got != want {
			t.Errorf("IsHTML(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDescribeAndDocument(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page.html")
	writeFile(t, src, source)

	r := newTestRenderer(t)
	before, err := r.Describe(src)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(before) != 3 || before[0].Text != "raw" {
		t.Errorf("before = %+v", before)
	}

	doc, stats, err := r.Document(src)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	after := r.Attrs().Describe(doc)
	if stats.Holders != 3 || after[1].Text != "2 hours ago" {
		t.Errorf("after = %+v, stats = %+v", after, stats)
	}
}
