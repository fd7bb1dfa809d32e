package auth

import (
	"slices"

	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

const recordKeyPrefix = "vtms_admin_auth:"

// RecordKey returns the durable record key for a browser session.
func RecordKey(sessionID string) string {
	return recordKeyPrefix + sessionID
}

// Credentials is the authenticated session value. The zero value means logged out.
type Credentials struct {
	Token    string            `json:"token"`
	Employee *vtmsapi.Employee `json:"employee"`
}

// Authenticated reports whether a token is present.
func (c Credentials) Authenticated() bool {
	return c.Token != ""
}

// Identity derives the permission identity from the employee profile.
func (c Credentials) Identity() rbac.Identity {
	if c.Employee == nil {
		return rbac.Identity{}
	}
	return rbac.Identity{
		DesignationCode: c.Employee.DesignationCode,
		PagePermissions: slices.Clone(c.Employee.PagePermissions),
	}
}

func (c Credentials) clone() Credentials {
	return Credentials{Token: c.Token, Employee: cloneEmployee(c.Employee)}
}

func cloneEmployee(e *vtmsapi.Employee) *vtmsapi.Employee {
	if e == nil {
		return nil
	}
	copied := *e
	copied.PagePermissions = slices.Clone(e.PagePermissions)
	return &copied
}
