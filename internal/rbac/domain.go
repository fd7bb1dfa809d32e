package rbac

import "strings"

// Identity describes the authenticated principal as seen by the permission checks.
// The zero value is a principal with no designation and no page permissions.
type Identity struct {
	DesignationCode string
	PagePermissions []string
}

// RequirementKind enumerates the shapes a page requirement can take.
type RequirementKind uint8

const (
	// KindUnconditional grants access to every identity.
	KindUnconditional RequirementKind = iota
	// KindRequireAny grants access when any listed key is held.
	KindRequireAny
	// KindAdminOnly grants access to admin-class designations only.
	KindAdminOnly
)

func (k RequirementKind) String() string {
	switch k {
	case KindRequireAny:
		return "require_any"
	case KindAdminOnly:
		return "admin_only"
	default:
		return "unconditional"
	}
}

// Requirement is the access predicate attached to a page. The zero value is Unconditional.
type Requirement struct {
	kind RequirementKind
	keys []string
}

// RequireAny builds a requirement satisfied by holding at least one of keys.
// An empty key list places no restriction.
func RequireAny(keys ...string) Requirement {
	return Requirement{kind: KindRequireAny, keys: append([]string(nil), keys...)}
}

// AdminOnly builds a requirement satisfied by admin-class designations only.
func AdminOnly() Requirement {
	return Requirement{kind: KindAdminOnly}
}

// Unconditional builds a requirement every identity satisfies.
func Unconditional() Requirement {
	return Requirement{kind: KindUnconditional}
}

// Kind reports the requirement shape.
func (r Requirement) Kind() RequirementKind {
	return r.kind
}

// Keys returns a copy of the capability keys of a RequireAny requirement.
func (r Requirement) Keys() []string {
	if len(r.keys) == 0 {
		return nil
	}
	return append([]string(nil), r.keys...)
}

func (r Requirement) String() string {
	if r.kind != KindRequireAny {
		return r.kind.String()
	}
	return r.kind.String() + "(" + strings.Join(r.keys, ",") + ")"
}

// RouteRule pairs a console route with the requirement guarding it.
type RouteRule struct {
	Path        string
	Requirement Requirement
}

// Outcome is the result of a guard decision.
type Outcome uint8

const (
	// OutcomeAllowed renders the protected view.
	OutcomeAllowed Outcome = iota
	// OutcomeRedirect sends the browser to the identity's fallback route.
	OutcomeRedirect
	// OutcomeDenied renders the access denied notice in place.
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirect:
		return "redirect"
	case OutcomeDenied:
		return "denied"
	default:
		return "allowed"
	}
}

// Decision is the route guard verdict for a single navigation.
type Decision struct {
	Outcome  Outcome
	Location string
}
