package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// Store owns the credentials of one browser session. Mutations replace the
// token and employee together and are persisted best-effort; the in-memory
// value stays authoritative when the repository fails. A nil *Store reads as
// logged out and ignores mutations.
type Store struct {
	mu     sync.RWMutex
	creds  Credentials
	repo   Repository
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore returns an empty store persisting under key.
func NewStore(repo Repository, key string, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{repo: repo, key: key, ttl: ttl, logger: logger}
}

// Hydrate builds a store from the durable record under key. Missing,
// malformed or token-less records yield an empty store.
func Hydrate(ctx context.Context, repo Repository, key string, ttl time.Duration, logger *slog.Logger) *Store {
	s := NewStore(repo, key, ttl, logger)
	if repo == nil || key == "" {
		return s
	}
	raw, err := repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			s.logger.Debug("auth record load", slog.Any("error", err))
		}
		return s
	}
	creds, ok := decodeRecord(raw)
	if !ok {
		s.logger.Debug("auth record discarded", slog.String("key", key))
		if err := repo.Delete(ctx, key); err != nil {
			s.logger.Debug("auth record delete", slog.Any("error", err))
		}
		return s
	}
	s.creds = creds
	return s
}

// Snapshot returns a copy of the current credentials.
func (s *Store) Snapshot() Credentials {
	if s == nil {
		return Credentials{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.clone()
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}

// Authenticated reports whether the store holds a token.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Employee returns a copy of the employee profile, or nil.
func (s *Store) Employee() *vtmsapi.Employee {
	return s.Snapshot().Employee
}

// Identity returns the permission identity of the current employee.
func (s *Store) Identity() rbac.Identity {
	return s.Snapshot().Identity()
}

// SetCredentials replaces the session with token and employee and persists it.
// An empty token clears the session like Logout.
func (s *Store) SetCredentials(ctx context.Context, token string, employee *vtmsapi.Employee) {
	if s == nil {
		return
	}
	if token == "" {
		s.Logout(ctx)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{Token: token, Employee: cloneEmployee(employee)}
	s.persistLocked(ctx)
}

// Logout clears the session and deletes the durable record.
func (s *Store) Logout(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.removeLocked(ctx)
}

// Rebind moves the store to key, deleting the record under the previous key
// and persisting the current credentials, if any, under the new one.
func (s *Store) Rebind(ctx context.Context, key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.key {
		return
	}
	s.removeLocked(ctx)
	s.key = key
	if s.creds.Authenticated() {
		s.persistLocked(ctx)
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.repo == nil || s.key == "" {
		return
	}
	ttl, live := recordTTL(s.creds.Token, s.ttl, time.Now())
	if !live {
		s.removeLocked(ctx)
		return
	}
	payload, err := json.Marshal(s.creds)
	if err != nil {
		s.logger.Debug("auth record encode", slog.Any("error", err))
		return
	}
	if err := s.repo.Save(ctx, s.key, payload, ttl); err != nil {
		s.logger.Debug("auth record save", slog.Any("error", err))
	}
}

func (s *Store) removeLocked(ctx context.Context) {
	if s.repo == nil || s.key == "" {
		return
	}
	if err := s.repo.Delete(ctx, s.key); err != nil {
		s.logger.Debug("auth record delete", slog.Any("error", err))
	}
}

// recordTTL caps base by the token's exp claim when the token is a JWT.
// The second result is false when the token has already expired.
func recordTTL(token string, base time.Duration, now time.Time) (time.Duration, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return base, true
	}
	remaining := claims.ExpiresAt.Time.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	if base <= 0 || remaining < base {
		return remaining, true
	}
	return base, true
}

func decodeRecord(raw []byte) (Credentials, bool) {
	var record Credentials
	if err := json.Unmarshal(raw, &record); err != nil {
		return Credentials{}, false
	}
	if record.Token == "" {
		return Credentials{}, false
	}
	return record, true
}

var _ vtmsapi.Session = (*Store)(nil)
