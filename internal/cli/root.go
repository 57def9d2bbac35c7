// Package cli implements cafectl, the operator command line for the cafe
// backend: schema migration, admin bootstrap, role changes and account listing.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kopiteras/cafe/internal/account"
	"github.com/kopiteras/cafe/internal/auth"
	"github.com/kopiteras/cafe/internal/config"
	"github.com/kopiteras/cafe/internal/database"
)

// env holds what a subcommand needs once configuration is loaded and the
// database is open.
type env struct {
	cfg      *config.Config
	db       *database.DB
	accounts account.Repository
	auth     *auth.Service
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

// opener builds an env. Tests replace it to avoid a database.
type opener func(ctx context.Context, envFile string) (*env, error)

func openEnv(ctx context.Context, envFile string) (*env, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.PoolOptions()...)
	if err != nil {
		return nil, err
	}

	accounts := account.NewRepository(db.Pool())
	tokens := auth.NewTokenManager([]byte(cfg.SessionSecret), cfg.SessionIssuer, cfg.SessionTTL)
	svc := auth.NewService(accounts, tokens, cfg.BcryptCost, auth.WithSuperOperator(cfg.SuperOperatorEmail))

	return &env{cfg: cfg, db: db, accounts: accounts, auth: svc}, nil
}

// NewRootCommand returns the cafectl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openEnv)
}

func newRootCommand(open opener) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "cafectl",
		Short:         "Operate the cafe backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file before reading configuration")

	withEnv := func(run func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context(), envFile)
			if err != nil {
				return err
			}
			defer e.close()
			return run(cmd, e, args)
		}
	}

	root.AddCommand(
		newMigrateCommand(withEnv),
		newBootstrapAdminCommand(withEnv),
		newSetRoleCommand(withEnv),
		newAccountsCommand(withEnv),
		newIssueTokenCommand(withEnv),
	)
	return root
}

type envRunner func(run func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
