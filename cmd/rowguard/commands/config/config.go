// Package config implements `rowguard config`.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd groups the configuration subcommands. It is attached to the root
// command, which owns the --config and --output flags they read.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the configuration file",
	Long: `Inspect and validate the rowguard configuration file.

Run 'rowguard init' first if no file exists yet. Environment variables
(ROWGUARD_*) override file values in every subcommand.

Examples:
  rowguard config validate
  rowguard config show -o json
  rowguard config schema -f rowguard.schema.json`,
}

func init() {
	Cmd.AddCommand(validateCmd, showCmd, schemaCmd)
}
