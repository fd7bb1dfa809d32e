package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var auditSchema = []string{
	`CREATE TABLE IF NOT EXISTS console_auth_events (
		id BIGSERIAL PRIMARY KEY,
		actor TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		meta JSONB,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS console_auth_events_occurred_at_idx ON console_auth_events (occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS console_auth_events_actor_idx ON console_auth_events (actor, occurred_at DESC)`,
}

// EnsureAuditSchema creates the auth audit table when it does not exist.
func EnsureAuditSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		return applyStatements(ctx, tx, auditSchema)
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func applyStatements(ctx context.Context, db execer, statements []string) error {
	for i, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
