package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), DefaultURL(t.TempDir()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(context.Background(), "sqlite://"+filepath.Join(dir, "nested", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(filepath.Join(dir, "nested", "runs.db")); err != nil {
		t.Errorf("database file was not created: %v", err)
	}
	if l.Dialect() != "sqlite" {
		t.Errorf("Dialect() = %q", l.Dialect())
	}
}

func TestRecordAndLast(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	first := &Run{Source: "site/index.html", Output: "out/index.html", Digest: "aaa", Holders: 3, Converted: 2, Fallbacks: 1, Bytes: 2048,
		RenderedAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	second := &Run{Source: "site/index.html", Output: "out/index.html", Digest: "bbb", Holders: 4, Converted: 4, Bytes: 4096,
		RenderedAt: time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC)}
	other := &Run{Source: "site/about.html", Output: "out/about.html", Digest: "ccc",
		RenderedAt: time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)}

	for _, run := range []*Run{first, second, other} {
		if err := l.Record(ctx, run); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if run.ID == "" {
			t.Error("Record should assign an ID")
		}
	}

	last, err := l.Last(ctx, "site/index.html")
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last == nil || last.Digest != "bbb" || last.Holders != 4 || last.Bytes != 4096 {
		t.Errorf("Last = %+v", last)
	}
	if !last.RenderedAt.Equal(second.RenderedAt) {
		t.Errorf("RenderedAt = %s, want %s", last.RenderedAt, second.RenderedAt)
	}

	missing, err := l.Last(ctx, "nope.html")
	if err != nil || missing != nil {
		t.Errorf("Last(missing) = %+v, %v", missing, err)
	}
}

func TestIsOutput(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	if err := l.Record(ctx, &Run{Source: "/site/index.html", Output: "/site/public/index.html", Digest: "aaa"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	tests := map[string]bool{
		"/site/public/index.html": true,
		"/site/index.html":        false,
		"/site/public/about.html": false,
	}
	for path, want := range tests {
		got, err := l.IsOutput(ctx, path)
		if err != nil {
			t.Fatalf("IsOutput(%q): %v", path, err)
		}
		if got != want {
			t.Errorf("IsOutput(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestHistory(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := &Run{Source: "a.html", Output: "b.html", Digest: "d", RenderedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := l.Record(ctx, run); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := l.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	if !all[0].RenderedAt.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("newest first expected, got %s", all[0].RenderedAt)
	}

	limited, err := l.History(ctx, 2)
	if err != nil {
		t.Fatalf("History(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}

func TestRecordDefaultsTime(t *testing.T) {
	l := openTestLedger(t)
	run := &Run{Source: "x.html", Output: "y.html", Digest: "z"}
	before := time.Now().Add(-time.Second)

	if err := l.Record(context.Background(), run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if run.RenderedAt.Before(before) {
		t.Errorf("RenderedAt = %s, want about now", run.RenderedAt)
	}
}

func TestDetectDialect(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost/db":    "postgres",
		"postgresql://localhost/db":      "postgres",
		"POSTGRES://localhost/db":        "postgres",
		"sqlite://./ledger.db":           "sqlite",
		"./.tzstamp/ledger.db":           "sqlite",
		"file:ledger.db?cache=shared":    "sqlite",
		"/var/lib/tzstamp/ledger.sqlite": "sqlite",
	}
	for url, want := range tests {
		if got := DetectDialect(url); got != want {
			t.Errorf("DetectDialect(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestRedactURL(t *testing.T) {
	tests := map[string]string{
		"postgres://admin:secret@db:5432/app": "postgres://admin:***@db:5432/app",
		"postgres://admin@db/app":             "postgres://admin@db/app",
		"./ledger.db":                         "./ledger.db",
	}
	for in, want := range tests {
		if got := RedactURL(in); got != want {
			t.Errorf("RedactURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	pg := &Ledger{dialect: "postgres"}
	if got := pg.placeholders(3); got != "$1, $2, $3" {
		t.Errorf("postgres placeholders = %q", got)
	}
	lite := &Ledger{dialect: "sqlite"}
	if got := lite.placeholders(2); got != "?, ?" {
		t.Errorf("sqlite placeholders = %q", got)
	}
}
