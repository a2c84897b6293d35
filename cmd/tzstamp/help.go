package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/hlop3z/tzstamp/internal/cli"
)

// CommandInfo is one line of the root help.
type CommandInfo struct {
	Name string
	Desc string
}

// CommandCategory groups commands in the root help.
type CommandCategory struct {
	Title    string
	Commands []CommandInfo
}

// renderCategoryHelp prints the root help grouped by category.
func renderCategoryHelp(w io.Writer, title, subtitle string, categories []CommandCategory, flags []struct{ flag, desc string }) {
	fmt.Fprintln(w, cli.Highlight(title))
	fmt.Fprintln(w, cli.Dim(subtitle))
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Header("Usage:")+" tzstamp <command> [flags]")

	width := 0
	for _, c := range categories {
		for _, cmd := range c.Commands {
			width = max(width, len(cmd.Name))
		}
	}
	for _, c := range categories {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.Header(c.Title+":"))
		for _, cmd := range c.Commands {
			fmt.Fprintf(w, "  %s%s  %s\n", cli.Success(cmd.Name), strings.Repeat(" ", width-len(cmd.Name)), cmd.Desc)
		}
	}

	flagWidth := 0
	for _, f := range flags {
		flagWidth = max(flagWidth, len(f.flag))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Header("Flags:"))
	for _, f := range flags {
		fmt.Fprintf(w, "  %s%s  %s\n", f.flag, strings.Repeat(" ", flagWidth-len(f.flag)), cli.Dim(f.desc))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Dim(`Run "tzstamp <command> --help" for command details.`))
}

// HelpMessage is a structured hint shown for a common mistake.
type HelpMessage struct {
	Title string
	Lines []string
}

var helpMessages = map[string]HelpMessage{
	"source_required": {
		Title: "No source given",
		Lines: []string{
			"Pass a file or directory, or set source_dir in tzstamp.yaml:",
			"",
			"  tzstamp render site/ -o public/",
			"  tzstamp render page.html -o out.html",
		},
	},
	"code_required": {
		Title: "No script given",
		Lines: []string{
			"Usage:",
			"  tzstamp eval script.js",
			`  tzstamp eval -e 'TimezoneUtils.convertToLocalTime("2024-01-10T12:00:00Z", "relative")'`,
		},
	},
}

// printHelp writes a help message by key.
func printHelp(w io.Writer, key string) {
	msg, ok := helpMessages[key]
	if !ok {
		return
	}
	fmt.Fprintln(w, cli.Error("error")+": "+msg.Title)
	fmt.Fprintln(w)
	for _, line := range msg.Lines {
		fmt.Fprintln(w, line)
	}
}
