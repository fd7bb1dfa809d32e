package auth

import (
	"context"
	"net/http"

	"github.com/vtms/admin-console/internal/rbac"
)

type storeContextKey struct{}

// ContextWithStore stores the session credentials store in context.
func ContextWithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// StoreFromContext extracts the credentials store from context. The result
// may be nil, which reads as logged out.
func StoreFromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey{}).(*Store)
	return store
}

// RequestIdentity returns the identity bound to r and whether it carries a token.
func RequestIdentity(r *http.Request) (rbac.Identity, bool) {
	creds := StoreFromContext(r.Context()).Snapshot()
	return creds.Identity(), creds.Authenticated()
}
