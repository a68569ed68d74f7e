package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/internal/cli/output"
	"github.com/marmos91/rowguard/pkg/engine"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent policy decisions",
	Long: `Show the most recent allow and deny decisions, newest first.

Administrators see every identity's decisions; other accounts see their own.
Runs as the configured admin unless --as is given.

Examples:
  rowguard audit --limit 20
  rowguard audit --as casey -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminConn(cmd, func(ctx context.Context, eng *engine.Engine, conn *engine.Conn) error {
			entries, err := conn.ListAudit(ctx, auditLimit)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return p.Print(output.AuditTable(entries))
		})
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "number of entries to show")
	auditCmd.Flags().StringVar(&actAs, "as", "", "account to act as (default: the configured admin)")
}
