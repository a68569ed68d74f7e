package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/internal/cli/output"
	"github.com/marmos91/rowguard/internal/cli/prompt"
	"github.com/marmos91/rowguard/pkg/engine"
)

var principalCmd = &cobra.Command{
	Use:   "principal",
	Short: "Manage durable principals",
	Long: `Manage durable principals: named logins that act as the user who
created them, with whatever grants that user holds at each operation.

Every subcommand runs as --as, which is required. Its password is read from
ROWGUARD_PASSWORD or prompted for.

Examples:
  rowguard principal create cidz --as casey
  rowguard principal list --as casey
  rowguard principal disable cidz --as casey`,
}

var principalCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a principal acting as --as (prompts for its password)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUserConn(cmd, func(ctx context.Context, conn *engine.Conn) error {
			password, err := prompt.NewPassword(fmt.Sprintf("Password for principal %s", args[0]))
			if err != nil {
				return err
			}
			p, err := conn.CreateDurablePrincipal(ctx, args[0], password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Principal %s created (id %s)\n", p.Name, p.ID)
			return nil
		})
	},
}

var principalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the principals of --as",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUserConn(cmd, func(ctx context.Context, conn *engine.Conn) error {
			ps, err := conn.ListPrincipals(ctx)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return p.Print(output.PrincipalTable(ps))
		})
	},
}

var principalEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Re-enable a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUserConn(cmd, func(ctx context.Context, conn *engine.Conn) error {
			return conn.SetPrincipalEnabled(ctx, args[0], true)
		})
	},
}

var principalDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUserConn(cmd, func(ctx context.Context, conn *engine.Conn) error {
			return conn.SetPrincipalEnabled(ctx, args[0], false)
		})
	},
}

var principalAs string

func init() {
	principalCmd.PersistentFlags().StringVar(&principalAs, "as", "", "user the principal acts as (required)")
	_ = principalCmd.MarkPersistentFlagRequired("as")

	principalCmd.AddCommand(principalCreateCmd)
	principalCmd.AddCommand(principalListCmd)
	principalCmd.AddCommand(principalEnableCmd)
	principalCmd.AddCommand(principalDisableCmd)
}

func withUserConn(cmd *cobra.Command, fn func(ctx context.Context, conn *engine.Conn) error) error {
	_, eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := loginAs(ctx, eng, principalAs)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}
