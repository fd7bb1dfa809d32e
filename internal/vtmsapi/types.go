package vtmsapi

// Employee is a staff member as returned by the login and employees endpoints.
type Employee struct {
	ID              string   `json:"_id,omitempty"`
	Name            string   `json:"name,omitempty"`
	FatherName      string   `json:"fatherName,omitempty"`
	NicNumber       string   `json:"nicNumber,omitempty"`
	HRNumber        string   `json:"hrNumber,omitempty"`
	Email           string   `json:"email,omitempty"`
	DesignationID   string   `json:"designationId,omitempty"`
	DesignationCode string   `json:"designationCode,omitempty"`
	PagePermissions []string `json:"pagePermissions,omitempty"`
	IsActive        bool     `json:"isActive"`
}

// Designation is a staff role.
type Designation struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name"`
	Code           string   `json:"code,omitempty"`
	PermissionKeys []string `json:"permissionKeys,omitempty"`
	IsActive       bool     `json:"isActive"`
}

// DesignationInput is the create/update payload for designations.
// IsActive is omitted on create.
type DesignationInput struct {
	Name           string   `json:"name"`
	PermissionKeys []string `json:"permissionKeys"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

// EmployeeInput is the create/update payload for employees.
// Password is only sent when set; IsActive only on update.
type EmployeeInput struct {
	Name            string   `json:"name"`
	FatherName      string   `json:"fatherName"`
	NicNumber       string   `json:"nicNumber"`
	HRNumber        string   `json:"hrNumber"`
	Email           string   `json:"email"`
	Password        string   `json:"password,omitempty"`
	DesignationID   string   `json:"designationId"`
	PagePermissions []string `json:"pagePermissions"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// PermissionCatalog lists the keys assignable to designations and employees.
type PermissionCatalog struct {
	DesignationPermissions []string `json:"designationPermissions"`
	PagePermissions        []string `json:"pagePermissions"`
}

// PageMeta is the pagination block of list responses.
type PageMeta struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
}

// EmployeeQuery filters the employee listing.
type EmployeeQuery struct {
	Page    int
	PerPage int
	Q       string
}

// EmployeePage is one page of employees.
type EmployeePage struct {
	Items []Employee
	Meta  PageMeta
}

// LoginResult carries the credentials returned by a successful login.
type LoginResult struct {
	Token    string    `json:"token"`
	Employee *Employee `json:"employee"`
}

type envelope[T any] struct {
	Data T         `json:"data"`
	Meta *PageMeta `json:"meta,omitempty"`
}

type itemList[T any] struct {
	Items []T `json:"items"`
}
