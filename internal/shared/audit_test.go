package shared

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureExecer struct {
	sql  string
	args []any
}

func (c *captureExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.sql = sql
	c.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestAuditLoggerRecord(t *testing.T) {
	db := &captureExecer{}
	logger := NewAuditLogger(db)

	err := logger.Record(context.Background(), AuditLog{
		Actor:     "admin@vtms.local",
		Action:    AuditActionLogin,
		SessionID: "s1",
		Meta:      map[string]any{"designation": "ADMIN"},
	})
	require.NoError(t, err)
	assert.Contains(t, db.sql, "console_auth_events")
	require.Len(t, db.args, 5)
	assert.Equal(t, "admin@vtms.local", db.args[0])
	assert.Equal(t, AuditActionLogin, db.args[1])

	var meta map[string]string
	require.NoError(t, json.Unmarshal(db.args[3].([]byte), &meta))
	assert.Equal(t, "ADMIN", meta["designation"])
}

func TestAuditLoggerRequiresAction(t *testing.T) {
	assert.Error(t, NewAuditLogger(&captureExecer{}).Record(context.Background(), AuditLog{}))
}

func TestNilAuditLoggerDiscards(t *testing.T) {
	var logger *AuditLogger
	assert.NoError(t, logger.Record(context.Background(), AuditLog{Action: AuditActionLogout}))
	assert.NoError(t, NewAuditLogger(nil).Record(context.Background(), AuditLog{Action: AuditActionLogout}))
}
