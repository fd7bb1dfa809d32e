package rbac_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
)

var allKeys = append(shared.PageScopes(), "UNKNOWN_PAGE")

func identities() []rbac.Identity {
	out := []rbac.Identity{
		{},
		{DesignationCode: "ADMIN"},
		{DesignationCode: "admin"},
		{DesignationCode: "Vtms_Officer"},
		{DesignationCode: "CLERK"},
	}
	for _, key := range allKeys {
		out = append(out, rbac.Identity{DesignationCode: "CLERK", PagePermissions: []string{key}})
	}
	out = append(out, rbac.Identity{DesignationCode: "CLERK", PagePermissions: allKeys})
	return out
}

func requirements() []rbac.Requirement {
	out := []rbac.Requirement{rbac.Unconditional(), rbac.AdminOnly(), rbac.RequireAny()}
	for _, key := range allKeys {
		out = append(out, rbac.RequireAny(key))
	}
	out = append(out, rbac.RequireAny(shared.OperationPageScopes()...))
	return out
}

func TestZeroRequirementIsUnconditional(t *testing.T) {
	var req rbac.Requirement
	assert.Equal(t, rbac.KindUnconditional, req.Kind())
	assert.True(t, rbac.CanAccess(rbac.Identity{}, req))
}

func TestAdminShortCircuit(t *testing.T) {
	for _, code := range []string{"ADMIN", "admin", "VTMS_OFFICER", "vtms_officer"} {
		for _, req := range requirements() {
			assert.True(t, rbac.CanAccess(rbac.Identity{DesignationCode: code}, req), "%s %s", code, req)
		}
	}
}

func TestAdminOnlyRejectsNonAdmins(t *testing.T) {
	identity := rbac.Identity{DesignationCode: "CLERK", PagePermissions: allKeys}
	assert.False(t, rbac.CanAccess(identity, rbac.AdminOnly()))
	assert.False(t, rbac.CanAccess(rbac.Identity{}, rbac.AdminOnly()))
}

func TestRequireAnySemantics(t *testing.T) {
	clerk := rbac.Identity{DesignationCode: "CLERK", PagePermissions: []string{shared.PermBinPage}}

	assert.True(t, rbac.CanAccess(clerk, rbac.RequireAny()))
	assert.True(t, rbac.CanAccess(rbac.Identity{}, rbac.RequireAny()))
	assert.True(t, rbac.CanAccess(clerk, rbac.RequireAny(shared.PermUsersPage, shared.PermBinPage)))
	assert.False(t, rbac.CanAccess(clerk, rbac.RequireAny(shared.PermUsersPage)))
	assert.False(t, rbac.CanAccess(clerk, rbac.RequireAny("bin_page")), "keys are case sensitive")
}

func TestCanAccessIsTotalAndDeterministic(t *testing.T) {
	for _, identity := range identities() {
		for _, req := range requirements() {
			first := rbac.CanAccess(identity, req)
			for i := 0; i < 3; i++ {
				require.Equal(t, first, rbac.CanAccess(identity, req))
			}
		}
	}
}

func TestResolveDefaultRouteExamples(t *testing.T) {
	cases := []struct {
		name     string
		identity rbac.Identity
		want     string
	}{
		{"admin lands on dashboard", rbac.Identity{DesignationCode: "ADMIN"}, rbac.RouteDashboard},
		{"no permissions", rbac.Identity{DesignationCode: "CLERK"}, rbac.RouteLogin},
		{"zero identity", rbac.Identity{}, rbac.RouteLogin},
		{"bin clerk", rbac.Identity{DesignationCode: "CLERK", PagePermissions: []string{shared.PermBinPage}}, rbac.RouteBins},
		{"operations key", rbac.Identity{PagePermissions: []string{shared.PermGateOperationPage}}, rbac.RouteOperations},
		{"earlier rule wins", rbac.Identity{PagePermissions: []string{shared.PermLocationPage, shared.PermManagementPage}}, rbac.RouteManagement},
		{"unknown key", rbac.Identity{PagePermissions: []string{"UNKNOWN_PAGE"}}, rbac.RouteLogin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rbac.ResolveDefaultRoute(tc.identity))
		})
	}
}

func TestResolveDefaultRouteIsReachable(t *testing.T) {
	ev := rbac.Default()
	for _, identity := range identities() {
		got := ev.ResolveDefaultRoute(identity)
		if got == rbac.RouteLogin {
			continue
		}
		req, ok := ev.Requirement(got)
		require.True(t, ok, got)
		assert.True(t, ev.CanAccess(identity, req), "%+v -> %s", identity, got)
	}
}

func TestResolveNeverPicksAdminOnlyForNonAdmins(t *testing.T) {
	ev := rbac.NewEvaluator([]string{"ADMIN"}, []rbac.RouteRule{
		{Path: "/admin/vehicles", Requirement: rbac.AdminOnly()},
		{Path: "/admin/bins", Requirement: rbac.RequireAny(shared.PermBinPage)},
	})
	for _, identity := range identities() {
		if ev.IsAdmin(identity.DesignationCode) {
			continue
		}
		assert.NotEqual(t, "/admin/vehicles", ev.ResolveDefaultRoute(identity))
	}
	assert.Equal(t, "/admin/vehicles", ev.ResolveDefaultRoute(rbac.Identity{DesignationCode: "ADMIN"}))
}

func TestRulePriorityFollowsOrder(t *testing.T) {
	rules := []rbac.RouteRule{
		{Path: "/a", Requirement: rbac.RequireAny("A")},
		{Path: "/b", Requirement: rbac.RequireAny("B")},
		{Path: "/c", Requirement: rbac.RequireAny("C")},
		{Path: "/d", Requirement: rbac.RequireAny("D")},
		{Path: "/e", Requirement: rbac.RequireAny("E")},
	}
	ev := rbac.NewEvaluator(nil, rules)
	assert.Equal(t, "/b", ev.ResolveDefaultRoute(rbac.Identity{PagePermissions: []string{"E", "B"}}))
	assert.Equal(t, "/e", ev.ResolveDefaultRoute(rbac.Identity{PagePermissions: []string{"E"}}))
}

func TestCustomAdminCodes(t *testing.T) {
	ev := rbac.NewEvaluator([]string{" supervisor ", ""}, rbac.DefaultRouteRules())
	assert.True(t, ev.IsAdmin("SUPERVISOR"))
	assert.False(t, ev.IsAdmin("ADMIN"))
	assert.False(t, ev.IsAdmin(""))
	assert.True(t, ev.CanAccess(rbac.Identity{DesignationCode: "Supervisor"}, rbac.AdminOnly()))
}

func TestDecide(t *testing.T) {
	ev := rbac.Default()
	clerk := rbac.Identity{DesignationCode: "CLERK", PagePermissions: []string{shared.PermBinPage}}
	nobody := rbac.Identity{DesignationCode: "CLERK"}
	usersReq, _ := ev.Requirement(rbac.RouteUsers)
	binsReq, _ := ev.Requirement(rbac.RouteBins)

	assert.Equal(t, rbac.Decision{Outcome: rbac.OutcomeAllowed}, ev.Decide(clerk, binsReq, rbac.RouteBins))
	assert.Equal(t, rbac.Decision{Outcome: rbac.OutcomeRedirect, Location: rbac.RouteBins}, ev.Decide(clerk, usersReq, rbac.RouteUsers))
	assert.Equal(t, rbac.Decision{Outcome: rbac.OutcomeRedirect, Location: rbac.RouteLogin}, ev.Decide(nobody, usersReq, rbac.RouteUsers))
	assert.Equal(t, rbac.Decision{Outcome: rbac.OutcomeDenied}, ev.Decide(nobody, usersReq, rbac.RouteLogin))
}

func TestDecideNeverRedirectsToCurrentPath(t *testing.T) {
	// The only rule is unconditional, so a clerk's fallback is the page
	// that just rejected them.
	ev := rbac.NewEvaluator(nil, []rbac.RouteRule{
		{Path: "/admin/one", Requirement: rbac.Unconditional()},
	})
	clerk := rbac.Identity{DesignationCode: "CLERK"}
	d := ev.Decide(clerk, rbac.RequireAny("MISSING"), "/admin/one/")
	assert.Equal(t, rbac.OutcomeDenied, d.Outcome)

	for _, identity := range identities() {
		for _, rule := range rbac.DefaultRouteRules() {
			d := rbac.Default().Decide(identity, rule.Requirement, rule.Path)
			if d.Outcome == rbac.OutcomeRedirect {
				assert.NotEqual(t, rule.Path, d.Location, fmt.Sprintf("%+v", identity))
			}
		}
	}
}

func TestUnregisteredRequirement(t *testing.T) {
	_, ok := rbac.Default().Requirement("/admin/unknown")
	assert.False(t, ok)
	req, ok := rbac.Default().Requirement(rbac.RouteUsers + "/")
	require.True(t, ok)
	assert.Equal(t, []string{shared.PermUsersPage}, req.Keys())
}

func TestNilEvaluatorUsesDefault(t *testing.T) {
	var ev *rbac.Evaluator
	assert.True(t, ev.IsAdmin("ADMIN"))
	assert.Equal(t, rbac.RouteBins, ev.ResolveDefaultRoute(rbac.Identity{PagePermissions: []string{shared.PermBinPage}}))
	_, ok := ev.Requirement(rbac.RouteUsers)
	assert.True(t, ok)
}

func TestRequirementKeysAreCopied(t *testing.T) {
	keys := []string{"A"}
	req := rbac.RequireAny(keys...)
	keys[0] = "B"
	got := req.Keys()
	got[0] = "C"
	assert.Equal(t, []string{"A"}, req.Keys())
	assert.Equal(t, "require_any(A)", req.String())
}

func TestVisibleMenuMatchesCanAccess(t *testing.T) {
	ev := rbac.Default()
	for _, identity := range identities() {
		visible := map[string]bool{}
		for _, item := range ev.VisibleMenu(identity) {
			visible[item.Path] = true
		}
		for _, item := range rbac.DefaultMenu() {
			assert.Equal(t, ev.CanAccess(identity, item.Requirement), visible[item.Path], "%+v %s", identity, item.Name)
		}
	}
}

func TestNavMarksActiveItem(t *testing.T) {
	nav := rbac.Default().Nav(rbac.Identity{DesignationCode: "ADMIN"}, rbac.RouteUsers+"/new")
	names := make([]string, 0, len(nav))
	active := ""
	for _, item := range nav {
		names = append(names, item.Name)
		if item.Active {
			active = item.Name
		}
	}
	assert.Equal(t, []string{"Dashboard", "Vehicles", "Users", "Locations", "Operations", "Attendance", "Management", "Bins"}, names)
	assert.Equal(t, "Users", active)

	dash := rbac.Default().Nav(rbac.Identity{DesignationCode: "ADMIN"}, rbac.RouteDashboard)
	assert.True(t, dash[0].Active)
	assert.False(t, dash[1].Active)
}
