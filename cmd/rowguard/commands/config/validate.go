package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the rowguard configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  rowguard config validate

  # Validate specific config file
  rowguard config validate --config /etc/rowguard/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if len(cfg.API.GetJWTSecret()) < 32 {
		warnings = append(warnings, fmt.Sprintf("JWT secret not configured - set api.jwt.secret or %s", config.EnvJWTSecret))
	}
	if !cfg.Engine.Audit {
		warnings = append(warnings, "Audit log disabled - policy decisions will not be recorded")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Database type:   %s\n", cfg.Database.Type)
	_, _ = fmt.Fprintf(out, "  API port:        %d\n", cfg.API.Port)
	_, _ = fmt.Fprintf(out, "  Pool size:       %d\n", cfg.Engine.PoolSize)
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	return nil
}
