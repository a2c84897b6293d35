package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hlop3z/tzstamp/internal/cli"
)

// Confirm asks a yes/no question on out and reads the answer from in.
func Confirm(in io.Reader, out io.Writer, message string, defaultYes bool) bool {
	suffix := " (y/N)"
	if defaultYes {
		suffix = " (Y/n)"
	}
	fmt.Fprint(out, cli.Warning("? ")+message+cli.Dim(suffix)+": ")

	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return defaultYes
	}
	return line == "y" || line == "yes"
}
