package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// Authenticator exchanges employee credentials with the upstream API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (vtmsapi.LoginResult, error)
}

// Observer receives authentication counters.
type Observer interface {
	ObserveLogin(success bool)
	ObserveAutoLogout()
}

// Service wraps the login and logout flows of a browser session.
type Service struct {
	api      Authenticator
	audit    *shared.AuditLogger
	logger   *slog.Logger
	observer Observer
}

// NewService constructs a new Service. audit may be nil.
func NewService(api Authenticator, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, audit: audit, logger: logger}
}

// WithObserver attaches an Observer and returns the service.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Login authenticates the employee and stores the credentials in store.
// A later login always replaces whatever the store held before.
func (s *Service) Login(ctx context.Context, store *Store, email, password string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	result, err := s.api.Login(ctx, email, password)
	if s.observer != nil {
		s.observer.ObserveLogin(err == nil)
	}
	if err != nil {
		s.record(ctx, shared.AuditLog{
			Actor:     email,
			Action:    shared.AuditActionLoginFailed,
			SessionID: shared.SessionIDFromContext(ctx),
			Meta:      map[string]any{"reason": vtmsapi.UserMessage(err, vtmsapi.LoginFailedMessage)},
		})
		return Credentials{}, err
	}
	store.SetCredentials(ctx, result.Token, result.Employee)
	s.record(ctx, shared.AuditLog{
		Actor:     email,
		Action:    shared.AuditActionLogin,
		SessionID: shared.SessionIDFromContext(ctx),
		Meta:      designationMeta(result.Employee),
	})
	return store.Snapshot(), nil
}

// Logout clears the credentials held by store.
func (s *Service) Logout(ctx context.Context, store *Store) {
	actor := actorOf(store.Employee())
	store.Logout(ctx)
	s.record(ctx, shared.AuditLog{
		Actor:     actor,
		Action:    shared.AuditActionLogout,
		SessionID: shared.SessionIDFromContext(ctx),
	})
}

// RecordAutoLogout notes a logout forced by an upstream 401. It is registered
// as the REST client's unauthorized hook.
func (s *Service) RecordAutoLogout(ctx context.Context) {
	s.logger.Info("session logged out by upstream", slog.String("session", shared.SessionIDFromContext(ctx)))
	if s.observer != nil {
		s.observer.ObserveAutoLogout()
	}
	s.record(ctx, shared.AuditLog{
		Action:    shared.AuditActionAutoLogout,
		SessionID: shared.SessionIDFromContext(ctx),
	})
}

func (s *Service) record(ctx context.Context, entry shared.AuditLog) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit auth event", slog.String("action", entry.Action), slog.Any("error", err))
	}
}

func actorOf(e *vtmsapi.Employee) string {
	if e == nil {
		return ""
	}
	return e.Email
}

func designationMeta(e *vtmsapi.Employee) map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{"designation": e.DesignationCode}
}
