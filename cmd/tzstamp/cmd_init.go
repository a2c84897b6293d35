package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/ui"
)

// initCmd writes a default tzstamp.yaml.
func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create tzstamp.yaml with default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configFile); err == nil && !force {
				if !cli.IsInteractive() {
					return alerr.New(alerr.ErrConfigInvalid, "config file already exists").
						WithFile(configFile, 0).
						WithHelp("use --force to overwrite")
				}
				if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), configFile+" exists. Overwrite?", false) {
					return nil
				}
			}

			if err := os.WriteFile(configFile, []byte(defaultConfigYAML), 0644); err != nil {
				return alerr.Wrap(alerr.ErrConfigInvalid, err, "failed to write config file").
					WithFile(configFile, 0)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.Success("Created"), configFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
