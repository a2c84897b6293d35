package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// conversion is one converted timestamp in --json output.
type conversion struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	Fallback  bool   `json:"fallback"`
	Error     string `json:"error,omitempty"`
}

// convertCmd converts timestamps given as arguments, or one per line on stdin.
func convertCmd() *cobra.Command {
	var formatName string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "convert [timestamp...]",
		Short: "Convert timestamps given as arguments or on stdin",
		Example: `  tzstamp convert 2024-01-10T12:00:00Z
  tzstamp convert --format relative 2024-01-10T11:55:00Z
  echo 2024-01-10T12:00:00Z | tzstamp convert --tz Europe/Berlin --locale de`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := newFormatter(cfg)
			if err != nil {
				return err
			}

			format, ok := timefmt.ParseFormat(formatName)
			if !ok && formatName != "" {
				warn := alerr.NewUnknownFormatError(formatName, timefmt.FormatNames())
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatWarning(warn.GetMessage(), warn.Helps()...))
			}

			inputs := args
			if len(inputs) == 0 {
				inputs, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			results := make([]conversion, 0, len(inputs))
			for _, raw := range inputs {
				res := f.Render(raw, format)
				c := conversion{Timestamp: raw, Text: res.Text, Fallback: res.Fallback}
				if res.Err != nil {
					c.Error = res.Err.Error()
				}
				results = append(results, c)
			}

			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, c := range results {
				fmt.Fprintln(out, c.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", string(timefmt.Full), "Display format: full, relative, short, time-only")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// readLines reads non-blank lines.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
