package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/rowguard/internal/cli/output"
	"github.com/marmos91/rowguard/internal/cli/prompt"
	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/models"
)

var (
	actAs       string
	newUserRole string
	newUserMail string
	newUserName string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and capabilities",
	Long: `Manage rowguard users.

Changes run through the engine as the account named by --as (the configured
admin by default), so they are checked and audited like API calls. The
password of --as is read from ROWGUARD_PASSWORD or prompted for.

Examples:
  rowguard user list
  rowguard user create casey --role user
  rowguard user disable casey
  rowguard user grant-capability janitor delete`,
}

// userListCmd reads the users table directly. It is an operator tool for
// whoever holds the database credentials; API callers only ever see their
// own row.
var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every account in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, eng, closeFn, err := openEngine()
		if err != nil {
			return err
		}
		defer closeFn()

		users, err := eng.Store().ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		p, err := newPrinter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return p.Print(output.UserTable(users))
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user (prompts for the new password)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := prompt.NewPassword(fmt.Sprintf("New password for %s", args[0]))
		if err != nil {
			return err
		}
		return withAdminConn(cmd, func(ctx context.Context, eng *engine.Engine, conn *engine.Conn) error {
			u, err := conn.CreateUser(ctx, engine.NewUser{
				Username:    args[0],
				Password:    password,
				Role:        models.UserRole(newUserRole),
				DisplayName: newUserName,
				Email:       newUserMail,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s created (id %s)\n", u.Username, u.ID)
			return nil
		})
	},
}

var userEnableCmd = &cobra.Command{
	Use:   "enable <username>",
	Short: "Re-enable a disabled user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserEnabled(cmd, args[0], true)
	},
}

var userDisableCmd = &cobra.Command{
	Use:   "disable <username>",
	Short: "Disable a user; open sessions lose access on their next operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserEnabled(cmd, args[0], false)
	},
}

var userGrantCapCmd = &cobra.Command{
	Use:   "grant-capability <username> <capability>",
	Short: "Grant a global capability (e.g. delete)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminConn(cmd, func(ctx context.Context, eng *engine.Engine, conn *engine.Conn) error {
			userID, err := resolveUserID(ctx, eng, args[0])
			if err != nil {
				return err
			}
			if err := conn.GrantCapability(ctx, userID, models.CapabilityName(args[1])); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s\n", args[1], args[0])
			return nil
		})
	},
}

var userRevokeCapCmd = &cobra.Command{
	Use:   "revoke-capability <username> <capability>",
	Short: "Revoke a global capability",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdminConn(cmd, func(ctx context.Context, eng *engine.Engine, conn *engine.Conn) error {
			userID, err := resolveUserID(ctx, eng, args[0])
			if err != nil {
				return err
			}
			if err := conn.RevokeCapability(ctx, userID, models.CapabilityName(args[1])); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s from %s\n", args[1], args[0])
			return nil
		})
	},
}

func init() {
	userCmd.PersistentFlags().StringVar(&actAs, "as", "", "account to act as (default: the configured admin)")
	userCreateCmd.Flags().StringVar(&newUserRole, "role", string(models.RoleUser), "role: user or admin")
	userCreateCmd.Flags().StringVar(&newUserMail, "email", "", "email address")
	userCreateCmd.Flags().StringVar(&newUserName, "display-name", "", "display name")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userEnableCmd)
	userCmd.AddCommand(userDisableCmd)
	userCmd.AddCommand(userGrantCapCmd)
	userCmd.AddCommand(userRevokeCapCmd)
}

// withAdminConn opens the engine, logs in as --as (or the configured
// admin) and runs fn.
func withAdminConn(cmd *cobra.Command, fn func(ctx context.Context, eng *engine.Engine, conn *engine.Conn) error) error {
	cfg, eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	username := actAs
	if username == "" {
		username = cfg.Admin.Username
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := loginAs(ctx, eng, username)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, eng, conn)
}

func setUserEnabled(cmd *cobra.Command, username string, enabled bool) error {
	return withAdminConn(cmd, func(ctx context.Context, eng *engine.Engine, conn *engine.Conn) error {
		userID, err := resolveUserID(ctx, eng, username)
		if err != nil {
			return err
		}
		if err := conn.SetUserEnabled(ctx, userID, enabled); err != nil {
			return err
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %s %s\n", username, state)
		return nil
	})
}

// resolveUserID maps a username to its id. Visibility does not apply: the
// operator names the account explicitly and the write itself is still
// checked by the engine.
func resolveUserID(ctx context.Context, eng *engine.Engine, username string) (string, error) {
	u, err := eng.Store().GetUser(ctx, username)
	if err != nil {
		return "", fmt.Errorf("user %q: %w", username, err)
	}
	return u.ID, nil
}
