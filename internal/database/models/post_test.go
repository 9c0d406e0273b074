package models

import (
	"database/sql"
	"testing"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap/zaptest"
)

// renderDB builds a bun.DB for rendering SQL. No connection is made; query
// formatting only needs the dialect.
func renderDB() *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr("localhost:5432"),
		pgdriver.WithInsecure(true),
	))

	return bun.NewDB(sqldb, pgdialect.New())
}

func TestGetPostQueryUsesModelAlias(t *testing.T) {
	t.Parallel()

	model := NewPost(renderDB(), zaptest.NewLogger(t))

	postID := uuid.New()
	rendered := model.getPostQuery(new(types.Post), postID).String()

	// The where clause must reference the alias bun derives for the posts
	// table, otherwise Postgres rejects the query at runtime.
	require.Contains(t, rendered, `FROM "posts" AS "post"`)
	assert.Contains(t, rendered, "post.id = ")
	assert.NotContains(t, rendered, "p.id")
}
