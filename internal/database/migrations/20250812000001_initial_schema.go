package migrations

import (
	"context"
	"fmt"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []struct {
			model any
			name  string
		}{
			{(*types.User)(nil), "users"},
			{(*types.Post)(nil), "posts"},
			{(*types.ReportUpdate)(nil), "report_updates"},
			{(*types.Comment)(nil), "comments"},
			{(*types.Notification)(nil), "notifications"},
		}

		for _, m := range models {
			_, err := db.NewCreateTable().
				Model(m.model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %s: %w", m.name, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []string{"notifications", "comments", "report_updates", "posts", "users"}

		for _, table := range tables {
			_, err := db.NewDropTable().
				TableExpr(table).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}

		return nil
	})
}
