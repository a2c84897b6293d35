package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlop3z/tzstamp/internal/digest"
)

// run executes the CLI with args, keeping the config file chosen by resetGlobals.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", configFile, "--tz", "UTC"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const page = `<html><body>
<span data-timestamp="2024-01-10T12:00:00Z">raw</span>
<time data-timestamp="2024-03-05T21:45:00Z" data-time-format="time-only"></time>
<span data-timestamp="whenever">whenever</span>
</body></html>`

func TestConvertCommand(t *testing.T) {
	resetGlobals(t)

	out, _, err := run(t, "convert", "2024-01-10T12:00:00Z", "not a date")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != "1/10/2024, 12:00:00 PM\nnot a date\n" {
		t.Errorf("out = %q", out)
	}

	out, _, err = run(t, "convert", "--format", "time-only", "--locale", "en-GB", "2024-03-05T21:45:00Z")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != "21:45\n" {
		t.Errorf("en-GB time-only = %q", out)
	}
}

func TestConvertUnknownFormatWarns(t *testing.T) {
	resetGlobals(t)

	out, errOut, err := run(t, "convert", "--format", "shrt", "2024-01-10T12:00:00Z")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != "1/10/2024, 12:00:00 PM\n" {
		t.Errorf("should fall back to full, got %q", out)
	}
	if !strings.Contains(errOut, "did you mean 'short'?") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestConvertJSON(t *testing.T) {
	resetGlobals(t)

	out, _, err := run(t, "convert", "--json", "bad")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	var got []conversion
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(got) != 1 || !got[0].Fallback || got[0].Text != "bad" || got[0].Error == "" {
		t.Errorf("got %+v", got)
	}
}

func TestFormatsCommand(t *testing.T) {
	resetGlobals(t)

	out, _, err := run(t, "formats", "--at", "2024-01-10T12:00:00Z")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, want := range []string{"full", "1/10/2024, 12:00:00 PM", "short", "1/10/2024 12:00 PM", "time-only"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderCheckHistory(t *testing.T) {
	dir := resetGlobals(t)
	src := filepath.Join(dir, "site")
	dst := filepath.Join(dir, "public")
	ledgerURL := filepath.Join(dir, "ledger.db")

	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	index := filepath.Join(src, "index.html")
	if err := os.WriteFile(index, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "-d", ledgerURL, "render", src, "-o", dst)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "3 holders (2 converted, 1 fallbacks)") {
		t.Errorf("render summary:\n%s", out)
	}
	rendered, err := os.ReadFile(filepath.Join(dst, "index.html"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(rendered), ">09:45 PM</time>") {
		t.Errorf("rendered:\n%s", rendered)
	}

	out, _, err = run(t, "-d", ledgerURL, "check", src)
	if err != nil {
		t.Fatalf("check after render: %v\n%s", err, out)
	}
	if !strings.Contains(out, "unchanged") {
		t.Errorf("check:\n%s", out)
	}

	out, _, err = run(t, "-d", ledgerURL, "history", "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var hist struct {
		Count int              `json:"count"`
		Runs  []map[string]any `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if hist.Count != 1 || hist.Runs[0]["source"] != index {
		t.Errorf("history = %+v", hist)
	}

	if err := os.WriteFile(index, []byte(strings.Replace(page, "whenever", "2024-01-01", 1)), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, "-d", ledgerURL, "check", src); err == nil {
		t.Error("check should fail after a holder changed")
	}
}

func TestCheckSkipsNestedOutput(t *testing.T) {
	dir := resetGlobals(t)
	site := filepath.Join(dir, "site")
	ledgerURL := filepath.Join(dir, "ledger.db")
	if err := os.MkdirAll(site, 0755); err != nil {
		t.Fatal(err)
	}
	index := filepath.Join(site, "index.html")
	if err := os.WriteFile(index, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, "-d", ledgerURL, "render", site, "-o", filepath.Join(site, "public")); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, args := range [][]string{
		{"check", "--json", site},
		{"check", "--json", site, "-o", filepath.Join(site, "public")},
	} {
		out, _, err := run(t, append([]string{"-d", ledgerURL}, args...)...)
		if err != nil {
			t.Fatalf("%v: %v\n%s", args, err, out)
		}
		var results []checkResult
		if err := json.Unmarshal([]byte(out), &results); err != nil {
			t.Fatalf("decode: %v\n%s", err, out)
		}
		if len(results) != 1 || results[0].Source != index || results[0].Status != statusUnchanged {
			t.Errorf("%v: results = %+v", args, results)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	dir := resetGlobals(t)
	file := filepath.Join(dir, "page.html")
	if err := os.WriteFile(file, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "inspect", file)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"TIMESTAMP", "09:45 PM", "fallback", "3 holders: 2 converted, 1 fallbacks, 0 skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestEvalCommand(t *testing.T) {
	resetGlobals(t)

	out, _, err := run(t, "eval", "-e", `console.log(TimezoneUtils.formats.length); TimezoneUtils.convertToLocalTime("2024-01-10T12:00:00Z", "short")`)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "4\n1/10/2024 12:00 PM\n" {
		t.Errorf("out = %q", out)
	}

	if _, _, err := run(t, "eval"); err == nil {
		t.Error("eval without code should fail")
	}
}

func TestInitCommand(t *testing.T) {
	resetGlobals(t)

	out, _, err := run(t, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Errorf("out = %q", out)
	}
	data, err := os.ReadFile(configFile)
	if err != nil || !strings.Contains(string(data), "timestamp_attr: data-timestamp") {
		t.Fatalf("config not written: %v", err)
	}

	if _, _, err := run(t, "init"); err == nil {
		t.Error("init over an existing file should fail without --force")
	}
	if _, _, err := run(t, "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	if _, err := loadConfig(); err != nil {
		t.Errorf("generated config does not load: %v", err)
	}
}

func TestRootHelp(t *testing.T) {
	resetGlobals(t)
	out, _, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"convert", "render", "history", "--database-url"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestDescribeDiff(t *testing.T) {
	tests := []struct {
		diff digest.Diff
		want string
	}{
		{digest.Diff{}, "2 holders, timestamps unchanged"},
		{digest.Diff{Changed: true, Added: 1}, "2 holders, +1 -0"},
		{digest.Diff{Changed: true, Added: 1, Removed: 1}, "2 holders, +1 -1"},
	}
	for _, tt := range tests {
		if got := describeDiff(2, tt.diff); got != tt.want {
			t.Errorf("describeDiff(%+v) = %q, want %q", tt.diff, got, tt.want)
		}
	}
}
