package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/script"
)

// evalCmd runs JavaScript with TimezoneUtils in scope.
func evalCmd() *cobra.Command {
	var code string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Run JavaScript with TimezoneUtils available",
		Long: `Runs a script in an embedded JavaScript runtime. The global TimezoneUtils
object exposes:

  convertToLocalTime(ts, format?)  formatted string
  getRelativeTime(ts)              relative string
  render(ts, format?)              {text, fallback, error}
  refreshAll(html)                 html with timestamps rewritten
  formats                          known format names
  locale                           resolved locale tag

console.log prints to stdout; the value of the last expression is printed.`,
		Example: `  tzstamp eval -e 'TimezoneUtils.getRelativeTime("2024-01-10T12:00:00Z")'
  tzstamp eval scripts/report.js`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" && len(args) == 0 {
				printHelp(cmd.ErrOrStderr(), "code_required")
				return alerr.New(alerr.ErrJSExecution, "no script given")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			refresher, err := newRefresher(cfg)
			if err != nil {
				return err
			}

			rt := script.New(refresher,
				script.WithTimeout(timeout),
				script.WithLogger(slog.Default()),
				script.WithOutput(cmd.OutOrStdout()),
			)

			var result string
			if code != "" {
				result, err = rt.Run(code)
			} else {
				result, err = rt.RunFile(args[0])
			}
			if err != nil {
				return err
			}
			if result != "" {
				fmt.Fprintln(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&code, "eval", "e", "", "Code to run instead of a file")
	cmd.Flags().DurationVar(&timeout, "timeout", script.DefaultTimeout, "Execution time limit")
	return cmd
}
