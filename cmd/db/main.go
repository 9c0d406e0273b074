package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/civicpulse/civicpulse/internal/database"
	"github.com/civicpulse/civicpulse/internal/database/migrations"
	"github.com/civicpulse/civicpulse/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var ErrNameRequired = errors.New("NAME argument required")

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewConnection(context.Background(), &cfg.Common.PostgreSQL, logger, false)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db.DB(), migrations.Migrations)

	app := &cli.Command{
		Name:  "db",
		Usage: "Database management tool",
		Commands: []*cli.Command{
			initCommand(migrator),
			migrateCommand(migrator, logger),
			rollbackCommand(migrator, logger),
			statusCommand(migrator, logger),
			createCommand(migrator, logger),
		},
	}

	return app.Run(context.Background(), os.Args)
}

func initCommand(migrator *migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize migration tables",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return migrator.Init(ctx)
		},
	}
}

func migrateCommand(migrator *migrate.Migrator, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run pending migrations",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withLock(ctx, migrator, func() error {
				group, err := migrator.Migrate(ctx)
				if err != nil {
					return err
				}

				if group.IsZero() {
					logger.Info("Database is up to date")
					return nil
				}

				logger.Info("Migrated", zap.String("group", group.String()))

				return nil
			})
		},
	}
}

func rollbackCommand(migrator *migrate.Migrator, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "rollback",
		Usage: "Rollback the last migration group",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return withLock(ctx, migrator, func() error {
				group, err := migrator.Rollback(ctx)
				if err != nil {
					return err
				}

				if group.IsZero() {
					logger.Info("No groups to roll back")
					return nil
				}

				logger.Info("Rolled back", zap.String("group", group.String()))

				return nil
			})
		},
	}
}

func statusCommand(migrator *migrate.Migrator, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show migration status",
		Action: func(ctx context.Context, _ *cli.Command) error {
			ms, err := migrator.MigrationsWithStatus(ctx)
			if err != nil {
				return err
			}

			logger.Info("Migration status",
				zap.String("migrations", ms.String()),
				zap.String("unapplied", ms.Unapplied().String()),
				zap.String("last_group", ms.LastGroup().String()),
			)

			return nil
		},
	}
}

func createCommand(migrator *migrate.Migrator, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new Go migration file",
		ArgsUsage: "NAME",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return ErrNameRequired
			}

			mf, err := migrator.CreateGoMigration(ctx, c.Args().First())
			if err != nil {
				return err
			}

			logger.Info("Created Go migration",
				zap.String("name", mf.Name),
				zap.String("path", mf.Path),
			)

			return nil
		},
	}
}

// withLock runs fn while holding the migration lock so concurrent
// invocations cannot interleave schema changes.
func withLock(ctx context.Context, migrator *migrate.Migrator, fn func() error) error {
	if err := migrator.Lock(ctx); err != nil {
		return err
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	return fn()
}
