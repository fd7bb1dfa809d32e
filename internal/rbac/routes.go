package rbac

import "github.com/vtms/admin-console/internal/shared"

// Console routes.
const (
	RouteLogin      = "/login"
	RouteDashboard  = "/admin"
	RouteManagement = "/admin/manage-management"
	RouteUsers      = "/admin/manage-users"
	RouteOperations = "/admin/manage-operations"
	RouteAttendance = "/admin/manage-attendance"
	RouteLocations  = "/admin/manage-locations"
	RouteBins       = "/admin/manage-bins"
	RouteVehicles   = "/admin/manage-vehicles"
)

// DefaultRouteRules returns the route rules in landing priority order.
func DefaultRouteRules() []RouteRule {
	return []RouteRule{
		{Path: RouteDashboard, Requirement: RequireAny(shared.PermDashboard)},
		{Path: RouteManagement, Requirement: RequireAny(shared.PermManagementPage)},
		{Path: RouteUsers, Requirement: RequireAny(shared.PermUsersPage)},
		{Path: RouteOperations, Requirement: RequireAny(shared.OperationPageScopes()...)},
		{Path: RouteAttendance, Requirement: RequireAny(shared.PermAttendancePage)},
		{Path: RouteLocations, Requirement: RequireAny(shared.PermLocationPage)},
		{Path: RouteBins, Requirement: RequireAny(shared.PermBinPage)},
		{Path: RouteVehicles, Requirement: AdminOnly()},
	}
}
