package rbac

import (
	"strings"

	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/view"
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	Name        string
	Path        string
	Exact       bool
	Requirement Requirement
}

// DefaultMenu returns the sidebar entries in display order.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{Name: "Dashboard", Path: RouteDashboard, Exact: true, Requirement: RequireAny(shared.PermDashboard)},
		{Name: "Vehicles", Path: RouteVehicles, Requirement: AdminOnly()},
		{Name: "Users", Path: RouteUsers, Requirement: RequireAny(shared.PermUsersPage)},
		{Name: "Locations", Path: RouteLocations, Requirement: RequireAny(shared.PermLocationPage)},
		{Name: "Operations", Path: RouteOperations, Requirement: RequireAny(shared.OperationPageScopes()...)},
		{Name: "Attendance", Path: RouteAttendance, Requirement: RequireAny(shared.PermAttendancePage)},
		{Name: "Management", Path: RouteManagement, Requirement: RequireAny(shared.PermManagementPage)},
		{Name: "Bins", Path: RouteBins, Requirement: RequireAny(shared.PermBinPage)},
	}
}

// VisibleMenu filters the default menu down to the entries identity can open.
func (e *Evaluator) VisibleMenu(identity Identity) []MenuItem {
	items := DefaultMenu()
	visible := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if e.CanAccess(identity, item.Requirement) {
			visible = append(visible, item)
		}
	}
	return visible
}

// Nav converts the visible menu into template navigation links for currentPath.
func (e *Evaluator) Nav(identity Identity, currentPath string) []view.NavItem {
	items := e.VisibleMenu(identity)
	current := normalizePath(currentPath)
	nav := make([]view.NavItem, 0, len(items))
	for _, item := range items {
		target := normalizePath(item.Path)
		active := current == target
		if !item.Exact && !active {
			active = strings.HasPrefix(current, target+"/")
		}
		nav = append(nav, view.NavItem{Name: item.Name, Path: item.Path, Active: active})
	}
	return nav
}
