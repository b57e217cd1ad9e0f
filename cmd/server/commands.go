package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/bookreviews-api/internal/config"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "server",
		Short: "Book review API server",
		Long: `Serves the book review HTTP API.

Configuration comes from config.yaml in the working directory (or --config)
and BOOKREVIEWS_* environment variables, e.g. BOOKREVIEWS_DATABASE_URL and
BOOKREVIEWS_AUTH_JWT_SECRET.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a config file")

	serve := newServeCmd(opts)
	root.AddCommand(serve, newMigrateCmd(opts), newAdminCmd(opts))

	// Running the bare binary starts the server.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

// bootstrap loads configuration and installs the JSON logger.
func (o *rootOptions) bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.Bool("redis_reset_tokens", cfg.Redis.Addr != ""))

	return cfg, log, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			if migrate {
				if err := postgres.Migrate(ctx, db, postgres.MigrateUp, log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")

	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run the embedded SQL migrations against the configured database.

Subcommands:
  up       - apply pending migrations
  down     - roll back the latest migration
  status   - list applied and pending migrations
  version  - print the current schema version
  reset    - roll back every migration`,
	}

	commands := []struct {
		name  string
		short string
	}{
		{postgres.MigrateUp, "Apply pending migrations"},
		{postgres.MigrateDown, "Roll back the latest migration"},
		{postgres.MigrateStatus, "Show migration status"},
		{postgres.MigrateVersion, "Print the current schema version"},
		{postgres.MigrateReset, "Roll back every migration"},
	}
	for _, c := range commands {
		command := c.name
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := opts.bootstrap()
				if err != nil {
					return err
				}
				return runMigration(cmd.Context(), cfg, command, log)
			},
		})
	}

	return cmd
}

func runMigration(ctx context.Context, cfg *config.Config, command string, log *slog.Logger) error {
	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return postgres.Migrate(ctx, db, command, log)
}

func newAdminCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative tasks",
	}

	var email, role string
	grant := &cobra.Command{
		Use:   "grant-role",
		Short: "Change the role of an existing account",
		Long: `Change the role of the account registered under --email.

Examples:
  server admin grant-role --email alice@example.com --role Admin
  server admin grant-role --email bob@example.com --role User`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseRole(role)
			if err != nil {
				return fmt.Errorf("invalid --role %q: %w", role, err)
			}

			cfg, log, err := opts.bootstrap()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := openDatabase(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, log, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.cleanup()

			user, err := app.identity.AssignRole(ctx, email, parsed)
			if err != nil {
				return fmt.Errorf("failed to assign role: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now %s\n", user.Username, user.Email, user.Role)
			return nil
		},
	}
	grant.Flags().StringVar(&email, "email", "", "email of the account to change")
	grant.Flags().StringVar(&role, "role", "", "role to grant (Admin or User)")
	_ = grant.MarkFlagRequired("email")
	_ = grant.MarkFlagRequired("role")

	cmd.AddCommand(grant)
	return cmd
}
