package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample rowguard configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/rowguard/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  rowguard init

  # Initialize with custom path
  rowguard init --config /etc/rowguard/config.yaml

  # Force overwrite existing config
  rowguard init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()

	var err error
	if configPath != "" {
		err = config.InitConfigToPath(configPath, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the configuration file to choose the database")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: rowguard serve")
	_, _ = fmt.Fprintln(out, "\nSecurity note:")
	_, _ = fmt.Fprintln(out, "  A random JWT secret has been generated for development use.")
	_, _ = fmt.Fprintln(out, "  For production, provide the secret through the environment instead:")
	_, _ = fmt.Fprintf(out, "    export %s=$(openssl rand -hex 32)\n", config.EnvJWTSecret)
	return nil
}
