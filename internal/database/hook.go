package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// slowQueryThreshold marks queries worth surfacing at warn level.
const slowQueryThreshold = 250 * time.Millisecond

// queryLogger is a bun.QueryHook that reports query timing through zap.
// Failed queries log at error level, slow ones at warn, the rest at debug.
type queryLogger struct {
	logger *zap.Logger
}

func newQueryLogger(logger *zap.Logger) *queryLogger {
	return &queryLogger{logger: logger.Named("query")}
}

func (q *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (q *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	fields := []zap.Field{
		zap.String("operation", event.Operation()),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows):
		q.logger.Error("Query failed", append(fields, zap.String("query", event.Query), zap.Error(event.Err))...)
	case elapsed >= slowQueryThreshold:
		q.logger.Warn("Slow query", append(fields, zap.String("query", event.Query))...)
	default:
		q.logger.Debug("Query executed", fields...)
	}
}
