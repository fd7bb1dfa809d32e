package shared

// Console page permissions.
const (
	PermDashboard      = "DASHBOARD"
	PermManagementPage = "MANAGEMENT_PAGE"
	PermUsersPage      = "USERS_PAGE"
	PermAttendancePage = "ATTENDANCE_PAGE"
	PermLocationPage   = "LOCATION_PAGE"
	PermBinPage        = "BIN_PAGE"
)

// Operation sub-pages. Any of them grants the operations screen.
const (
	PermForkOperationPage      = "FORK_OPERATION_PAGE"
	PermFlapOperationPage      = "FLAP_OPERATION_PAGE"
	PermBulkOperationPage      = "BULK_OPERATION_PAGE"
	PermArmRollerOperationPage = "ARM_ROLLER_OPERATION_PAGE"
	PermGateOperationPage      = "GATE_OPERATION_PAGE"
	PermGTSOperationPage       = "GTS_OPERATION_PAGE"
	PermLFSOperationPage       = "LFS_OPERATION_PAGE"
)

// DefaultAdminDesignations are the designation codes that bypass page permissions.
var DefaultAdminDesignations = []string{"ADMIN", "VTMS_OFFICER"}

// OperationPageScopes lists the operation sub-page permissions.
func OperationPageScopes() []string {
	return []string{
		PermForkOperationPage,
		PermFlapOperationPage,
		PermBulkOperationPage,
		PermArmRollerOperationPage,
		PermGateOperationPage,
		PermGTSOperationPage,
		PermLFSOperationPage,
	}
}

// PageScopes lists every page permission known to the console.
func PageScopes() []string {
	scopes := []string{
		PermDashboard,
		PermManagementPage,
		PermUsersPage,
		PermAttendancePage,
		PermLocationPage,
		PermBinPage,
	}
	return append(scopes, OperationPageScopes()...)
}
