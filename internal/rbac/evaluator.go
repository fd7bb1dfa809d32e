package rbac

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vtms/admin-console/internal/shared"
)

// Evaluator decides page access for identities. It holds the admin-class
// designation set and the ordered route rules used for fallback resolution.
// A nil *Evaluator behaves like the default evaluator.
type Evaluator struct {
	admins map[string]struct{}
	rules  []RouteRule
}

var defaultEvaluator = NewEvaluator(shared.DefaultAdminDesignations, DefaultRouteRules())

// NewEvaluator constructs an Evaluator. Admin codes are compared upper-cased;
// rules are scanned in the given order.
func NewEvaluator(adminCodes []string, rules []RouteRule) *Evaluator {
	admins := make(map[string]struct{}, len(adminCodes))
	for _, code := range adminCodes {
		code = normalizeDesignation(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		admins[code] = struct{}{}
	}
	copied := make([]RouteRule, len(rules))
	copy(copied, rules)
	return &Evaluator{admins: admins, rules: copied}
}

// Default returns the evaluator configured with the built-in admin codes and route rules.
func Default() *Evaluator {
	return defaultEvaluator
}

// CanAccess reports whether identity satisfies requirement using the default evaluator.
func CanAccess(identity Identity, requirement Requirement) bool {
	return defaultEvaluator.CanAccess(identity, requirement)
}

// ResolveDefaultRoute returns the default landing route using the default evaluator.
func ResolveDefaultRoute(identity Identity) string {
	return defaultEvaluator.ResolveDefaultRoute(identity)
}

// IsAdmin reports whether the designation code belongs to the admin class.
func (e *Evaluator) IsAdmin(designationCode string) bool {
	e = e.orDefault()
	_, ok := e.admins[normalizeDesignation(designationCode)]
	return ok
}

// CanAccess reports whether identity satisfies requirement. Admin-class
// designations pass every requirement.
func (e *Evaluator) CanAccess(identity Identity, requirement Requirement) bool {
	if e.IsAdmin(identity.DesignationCode) {
		return true
	}
	switch requirement.kind {
	case KindAdminOnly:
		return false
	case KindRequireAny:
		return hasAnyPermission(identity.PagePermissions, requirement.keys)
	default:
		return true
	}
}

// ResolveDefaultRoute returns the path of the first rule identity satisfies,
// or the login route when none does.
func (e *Evaluator) ResolveDefaultRoute(identity Identity) string {
	e = e.orDefault()
	for _, rule := range e.rules {
		if e.CanAccess(identity, rule.Requirement) {
			return rule.Path
		}
	}
	return RouteLogin
}

// Decide computes the guard outcome for identity navigating to currentPath.
// A denied identity whose fallback is the current path gets OutcomeDenied so
// it is never redirected to the page that rejected it.
func (e *Evaluator) Decide(identity Identity, requirement Requirement, currentPath string) Decision {
	if e.CanAccess(identity, requirement) {
		return Decision{Outcome: OutcomeAllowed}
	}
	fallback := e.ResolveDefaultRoute(identity)
	if normalizePath(fallback) == normalizePath(currentPath) {
		return Decision{Outcome: OutcomeDenied}
	}
	return Decision{Outcome: OutcomeRedirect, Location: fallback}
}

// Requirement returns the requirement of the rule registered for routePath.
func (e *Evaluator) Requirement(routePath string) (Requirement, bool) {
	e = e.orDefault()
	target := normalizePath(routePath)
	for _, rule := range e.rules {
		if normalizePath(rule.Path) == target {
			return rule.Requirement, true
		}
	}
	return Requirement{}, false
}

func (e *Evaluator) orDefault() *Evaluator {
	if e == nil {
		return defaultEvaluator
	}
	return e
}

func normalizeDesignation(code string) string {
	if code == "" {
		return ""
	}
	return cases.Upper(language.Und).String(code)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + strings.TrimSpace(p))
	if cleaned != "/" {
		cleaned = strings.TrimSuffix(cleaned, "/")
	}
	return cleaned
}

func hasAnyPermission(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(granted) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
