package rbac

import (
	"log/slog"
	"net/http"

	"github.com/vtms/admin-console/internal/platform/httpx"
)

// IdentityResolver returns the identity bound to the request and whether the
// request carries an authenticated session.
type IdentityResolver func(r *http.Request) (Identity, bool)

// DecisionObserver receives every guard outcome.
type DecisionObserver interface {
	ObserveGuardDecision(outcome string)
}

// Middleware wires route guards for HTTP handlers.
type Middleware struct {
	Evaluator *Evaluator
	Identity  IdentityResolver
	// DeniedPage renders the access denied notice. It must write a 403.
	DeniedPage http.Handler
	Observer   DecisionObserver
	Logger     *slog.Logger
}

// DeniedMessage is the notice shown when a guarded page cannot be opened and
// no other page is reachable.
const DeniedMessage = "Access denied. Please contact an administrator."

// RequireAuth redirects requests without a session token to the login page.
// JSON clients get a 401 problem response instead.
func (m Middleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := m.identity(r); ok {
				next.ServeHTTP(w, r)
				return
			}
			if httpx.WantsJSON(r) {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
				return
			}
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
		})
	}
}

// RequirePermission guards the wrapped handler with requirement. Denied
// identities are sent to their default route, or shown the denied page when
// that route is the one being requested.
func (m Middleware) RequirePermission(requirement Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := m.identity(r)
			decision := m.Evaluator.Decide(identity, requirement, r.URL.Path)
			m.observe(decision)
			switch decision.Outcome {
			case OutcomeAllowed:
				next.ServeHTTP(w, r)
			case OutcomeRedirect:
				if m.Logger != nil {
					m.Logger.Debug("rbac redirect",
						slog.String("path", r.URL.Path),
						slog.String("requirement", requirement.String()),
						slog.String("location", decision.Location))
				}
				http.Redirect(w, r, decision.Location, http.StatusSeeOther)
			default:
				m.deny(w, r)
			}
		})
	}
}

// RequireRoute guards the wrapped handler with the rule registered for
// routePath. Unregistered paths are treated as admin-only.
func (m Middleware) RequireRoute(routePath string) func(http.Handler) http.Handler {
	requirement, ok := m.Evaluator.Requirement(routePath)
	if !ok {
		requirement = AdminOnly()
	}
	return m.RequirePermission(requirement)
}

// RequireAny is a shorthand for RequirePermission(RequireAny(keys...)).
func (m Middleware) RequireAny(keys ...string) func(http.Handler) http.Handler {
	return m.RequirePermission(RequireAny(keys...))
}

func (m Middleware) identity(r *http.Request) (Identity, bool) {
	if m.Identity == nil {
		return Identity{}, false
	}
	return m.Identity(r)
}

func (m Middleware) observe(decision Decision) {
	if m.Observer != nil {
		m.Observer.ObserveGuardDecision(decision.Outcome.String())
	}
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", DeniedMessage)
		return
	}
	if m.DeniedPage != nil {
		m.DeniedPage.ServeHTTP(w, r)
		return
	}
	http.Error(w, DeniedMessage, http.StatusForbidden)
}
