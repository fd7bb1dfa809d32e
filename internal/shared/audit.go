package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Auth event actions recorded in the audit trail.
const (
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"
	AuditActionLogout      = "logout"
	AuditActionAutoLogout  = "auto_logout"
)

// AuditLog represents a record stored in console_auth_events.
type AuditLog struct {
	Actor     string
	Action    string
	SessionID string
	Meta      map[string]any
	At        time.Time
}

// Execer is the subset of pgxpool.Pool used by the audit logger.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditLogger writes authentication events into console_auth_events.
// A nil *AuditLogger discards every record.
type AuditLogger struct {
	db Execer
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(db Execer) *AuditLogger {
	return &AuditLogger{db: db}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil || l.db == nil {
		return nil
	}
	if log.Action == "" {
		return errors.New("audit log requires action")
	}
	if log.At.IsZero() {
		log.At = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `INSERT INTO console_auth_events (actor, action, session_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5)`, log.Actor, log.Action, log.SessionID, metaJSON, log.At)
	return err
}
