// Package main provides the tzstamp CLI.
// tzstamp rewrites UTC timestamps embedded in HTML into locale-formatted or
// relative strings.
//
// Usage:
//
//	tzstamp init                      # Create tzstamp.yaml
//	tzstamp convert <timestamp>...    # Convert timestamps on the command line
//	tzstamp render <src> -o <dst>     # Rewrite an HTML file or directory
//	tzstamp watch <src> -o <dst>      # Render, then re-render on change
//	tzstamp http [dir]                # Serve HTML with timestamps rewritten
//	tzstamp inspect <file>            # Show every timestamp holder in a page
//	tzstamp check <src>               # Compare sources against the last render
//	tzstamp history                   # Show recorded render runs
//	tzstamp eval -e <code>            # Run JavaScript against TimezoneUtils
//	tzstamp formats                   # List display formats
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	configFile  string
	databaseURL string
	localeFlag  string
	tzFlag      string
	verbose     bool
)

// customHelp displays a styled help message for the root command.
func customHelp(cmd *cobra.Command) {
	categories := []CommandCategory{
		{
			Title: "Setup",
			Commands: []CommandInfo{
				{"init", "Create tzstamp.yaml with default settings"},
				{"formats", "List display formats with a sample rendering"},
			},
		},
		{
			Title: "Conversion",
			Commands: []CommandInfo{
				{"convert", "Convert timestamps given as arguments or on stdin"},
				{"render", "Rewrite timestamps in an HTML file or directory"},
				{"inspect", "Show every timestamp holder in a page"},
				{"eval", "Run JavaScript with TimezoneUtils available"},
			},
		},
		{
			Title: "Development",
			Commands: []CommandInfo{
				{"watch", "Render, then re-render changed files"},
				{"http", "Serve HTML with timestamps rewritten and live reload"},
			},
		},
		{
			Title: "Ledger",
			Commands: []CommandInfo{
				{"check", "Compare sources against their last recorded render"},
				{"history", "Show recorded render runs"},
			},
		},
	}

	flags := []struct{ flag, desc string }{
		{"-c, --config", "Path to config file (default: tzstamp.yaml)"},
		{"-l, --locale", "Display locale, a BCP 47 tag (default: en-US)"},
		{"    --tz", "Display time zone, an IANA name (default: local)"},
		{"-d, --database-url", "Render ledger URL (default: .tzstamp/ledger.db)"},
		{"-v, --verbose", "Log debug output to stderr"},
		{"-h, --help", "Show help information"},
	}

	renderCategoryHelp(
		cmd.OutOrStdout(),
		"tzstamp - timestamp formatter",
		"Rewrites UTC timestamps in HTML into local, human-readable time",
		categories,
		flags,
	)
}

// setupLogger installs the default slog logger on stderr.
func setupLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tzstamp",
		Short:         "Rewrite UTC timestamps in HTML into local time",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger()
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		customHelp(cmd)
	})

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "tzstamp.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&databaseURL, "database-url", "d", "", "Render ledger URL")
	rootCmd.PersistentFlags().StringVarP(&localeFlag, "locale", "l", "", "Display locale (BCP 47 tag)")
	rootCmd.PersistentFlags().StringVar(&tzFlag, "tz", "", "Display time zone (IANA name)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(
		initCmd(),
		formatsCmd(),
		convertCmd(),
		renderCmd(),
		inspectCmd(),
		evalCmd(),
		watchCmd(),
		httpCmd(),
		checkCmd(),
		historyCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
