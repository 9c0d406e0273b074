package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_posts_type_created ON posts (type, created_at DESC)",
			"CREATE INDEX IF NOT EXISTS idx_posts_city_district ON posts (city, district)",
			"CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id)",
			"CREATE INDEX IF NOT EXISTS idx_posts_status ON posts (status) WHERE status IS NOT NULL",
			"CREATE INDEX IF NOT EXISTS idx_report_updates_post ON report_updates (post_id, created_at)",
			"CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id, created_at)",
			"CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id) WHERE parent_id IS NOT NULL",
			"CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)",
			"CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications (user_id) WHERE NOT read",
		}

		for _, idx := range indexes {
			if _, err := db.NewRaw(idx).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		return nil
	})
}
