package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/database"
)

func newMigrateCommand(withEnv envRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if err := database.Migrate(cmd.Context(), e.db.Pool()); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "schema is up to date") //nolint:errcheck
			return nil
		}),
	}
}

func newBootstrapAdminCommand(withEnv envRunner) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Ensure an administrator exists",
		Long: `Promote the given account to admin, creating it with the given password if
needed. Does nothing when an admin account already exists.

Examples:
  cafectl bootstrap-admin --email owner@example.com --password s3cret!`,
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if email == "" {
				email = e.cfg.BootstrapAdminEmail
			}
			if password == "" {
				password = e.cfg.BootstrapAdminPassword
			}
			if email == "" {
				return errors.New("--email is required")
			}

			changed, err := e.auth.BootstrapAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(out(cmd), "%s is now an administrator\n", email) //nolint:errcheck
			} else {
				fmt.Fprintln(out(cmd), "an administrator already exists; nothing changed") //nolint:errcheck
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (defaults to BOOTSTRAP_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "password used when the account must be created (defaults to BOOTSTRAP_ADMIN_PASSWORD)")
	return cmd
}

func newSetRoleCommand(withEnv envRunner) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change an account's role",
		Long: `Change the stored role of an account. Sessions already issued keep their
previous role until they are refreshed or expire.

Examples:
  cafectl set-role --email barista@example.com --role admin`,
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}
			if email == "" {
				return errors.New("--email is required")
			}

			a, err := e.auth.SetRoleByEmail(cmd.Context(), email, r)
			if err != nil {
				if errors.Is(err, auth.ErrNotFound) {
					return fmt.Errorf("no account with email %s", email)
				}
				return err
			}
			fmt.Fprintf(out(cmd), "%s role set to %s\n", a.Email, a.Role) //nolint:errcheck
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", "", "user or admin")
	return cmd
}

func newAccountsCommand(withEnv envRunner) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			accounts, err := e.accounts.List(cmd.Context())
			if err != nil {
				return err
			}
			return renderAccounts(out(cmd), accounts, format)
		}),
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func newIssueTokenCommand(withEnv envRunner) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue a session token for an account",
		Long: `Issue a session token carrying the account's current role, for calling the
API with an Authorization: Bearer header.`,
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			sess, err := e.auth.IssueSessionToken(cmd.Context(), auth.Snapshot{Email: email})
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					return fmt.Errorf("no account with email %s", email)
				}
				return err
			}
			fmt.Fprintln(out(cmd), sess.Token) //nolint:errcheck
			return nil
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func parseRole(s string) (account.Role, error) {
	r := account.Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("--role must be %q or %q", account.RoleUser, account.RoleAdmin)
	}
	return r, nil
}

type accountRow struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	Password  bool   `json:"password"`
	CreatedAt string `json:"createdAt"`
}

func renderAccounts(w io.Writer, accounts []account.Account, format string) error {
	rows := make([]accountRow, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		rows = append(rows, accountRow{
			ID:        a.ID,
			Email:     a.Email,
			Name:      a.DisplayName(),
			Role:      string(a.Role),
			Password:  a.HasPassword(),
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	switch format {
	case "yaml":
		b, err := yaml.Marshal(rows)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tLOGIN\tCREATED") //nolint:errcheck
		for _, r := range rows {
			login := "federated"
			if r.Password {
				login = "password"
			}
			name := r.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Email, name, r.Role, login, r.CreatedAt) //nolint:errcheck
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
