package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/internal/cli/output"
	"github.com/marmos91/rowguard/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective rowguard configuration, after defaults and
environment overrides. The JWT secret is redacted.

Examples:
  rowguard config show
  rowguard config show --output json`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}
	if cfg.API.JWT.Secret != "" {
		cfg.API.JWT.Secret = "<redacted>"
	}
	if cfg.Database.Postgres.Password != "" {
		cfg.Database.Postgres.Password = "<redacted>"
	}

	formatFlag, _ := cmd.Flags().GetString("output")
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
