// Command migrate applies the study-search schema migrations.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	infraconfig "github.com/jonesrussell/quillglow/infrastructure/config"
	"github.com/jonesrussell/quillglow/internal/config"
)

// defaultMigrationsPath is used unless --path or MIGRATIONS_PATH is set.
const defaultMigrationsPath = "file://migrations"

type options struct {
	configPath     string
	migrationsPath string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the study-search database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config",
		infraconfig.GetConfigPath("config.yml"), "path to the service config file")
	root.PersistentFlags().StringVar(&opts.migrationsPath, "path",
		envOr("MIGRATIONS_PATH", defaultMigrationsPath), "migration source URL")

	root.AddCommand(upCommand(opts), downCommand(opts), versionCommand(opts), forceCommand(opts))
	return root
}

func upCommand(opts *options) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrate(opts, func(m *migrate.Migrate) error {
				if steps > 0 {
					return report(cmd, "up", m.Steps(steps))
				}
				return report(cmd, "up", m.Up())
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "apply at most this many migrations (0 applies all)")
	return cmd
}

func downCommand(opts *options) *cobra.Command {
	var (
		steps int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (one by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 && !all {
				return errors.New("--steps must be at least 1")
			}
			return withMigrate(opts, func(m *migrate.Migrate) error {
				if all {
					return report(cmd, "down", m.Down())
				}
				return report(cmd, "down", m.Steps(-steps))
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.Flags().BoolVar(&all, "all", false, "roll back every migration")
	return cmd
}

func versionCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrate(opts, func(m *migrate.Migrate) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					cmd.Println("No migrations applied")
					return nil
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				cmd.Printf("Version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	}
}

// forceCommand clears the dirty flag after a failed migration was fixed by hand.
func forceCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return withMigrate(opts, func(m *migrate.Migrate) error {
				if forceErr := m.Force(version); forceErr != nil {
					return fmt.Errorf("force version %d: %w", version, forceErr)
				}
				cmd.Printf("Forced version %d\n", version)
				return nil
			})
		},
	}
}

func withMigrate(opts *options, fn func(*migrate.Migrate) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m, err := migrate.New(opts.migrationsPath, cfg.Database.MigrateURL())
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	return fn(m)
}

func report(cmd *cobra.Command, direction string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		cmd.Println("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}
	cmd.Printf("Migration %s completed successfully\n", direction)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
