package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// FormatError formats an error rustc-style. *alerr.Error values show their
// code, location, context, help lines and cause.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatStructured(ae)
	}
	return Error("error") + ": " + err.Error() + "\n"
}

func formatStructured(err *alerr.Error) string {
	var b strings.Builder

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.GetCode())))
	b.WriteString("]: ")
	b.WriteString(err.GetMessage())
	b.WriteString("\n")

	ctx := err.GetContext()
	if loc := location(ctx); loc != "" {
		fmt.Fprintf(&b, "  %s %s\n", Arrow(), FilePath(loc))
	}

	skip := map[string]bool{"file": true, "line": true, "helps": true}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		fmt.Fprintf(&b, "   %s\n", Pipe())
		for _, k := range keys {
			fmt.Fprintf(&b, "   %s %s: %v\n", Pipe(), k, ctx[k])
		}
	}

	if cause := err.GetCause(); cause != nil {
		fmt.Fprintf(&b, "   %s\n", Pipe())
		b.WriteString(Note("cause"))
		b.WriteString(": ")
		b.WriteString(cleanCause(cause.Error()))
		b.WriteString("\n")
	}

	for _, help := range err.Helps() {
		b.WriteString(Help("help"))
		b.WriteString(": ")
		b.WriteString(help)
		b.WriteString("\n")
	}
	return b.String()
}

func location(ctx map[string]any) string {
	file, _ := ctx["file"].(string)
	if file == "" {
		return ""
	}
	if line, _ := ctx["line"].(int); line > 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}

// cleanCause drops the Go stack suffix goja appends to native errors.
func cleanCause(msg string) string {
	if idx := strings.Index(msg, " at github.com"); idx != -1 {
		msg = strings.TrimSpace(msg[:idx])
	}
	return msg
}

// FormatWarning formats a warning with optional help lines.
func FormatWarning(msg string, helps ...string) string {
	var b strings.Builder
	b.WriteString(Warning("warning"))
	b.WriteString(": ")
	b.WriteString(msg)
	b.WriteString("\n")
	for _, h := range helps {
		if h == "" {
			continue
		}
		b.WriteString(Help("help"))
		b.WriteString(": ")
		b.WriteString(h)
		b.WriteString("\n")
	}
	return b.String()
}
