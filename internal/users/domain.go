package users

import (
	"net/url"
	"strconv"

	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// Page sizes offered by the listing.
var perPageOptions = []int{10, 20, 50, 100}

// employeeForm is the create/update form of an employee.
type employeeForm struct {
	ID              string
	Name            string `validate:"required"`
	FatherName      string
	NicNumber       string `validate:"required"`
	HRNumber        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"omitempty,min=6"`
	DesignationID   string `validate:"required"`
	PagePermissions []string
	IsActive        bool
}

func (f employeeForm) input() vtmsapi.EmployeeInput {
	in := vtmsapi.EmployeeInput{
		Name:            f.Name,
		FatherName:      f.FatherName,
		NicNumber:       f.NicNumber,
		HRNumber:        f.HRNumber,
		Email:           f.Email,
		Password:        f.Password,
		DesignationID:   f.DesignationID,
		PagePermissions: f.PagePermissions,
	}
	if f.ID != "" {
		active := f.IsActive
		in.IsActive = &active
	}
	return in
}

func formFromEmployee(e vtmsapi.Employee) employeeForm {
	return employeeForm{
		ID:              e.ID,
		Name:            e.Name,
		FatherName:      e.FatherName,
		NicNumber:       e.NicNumber,
		HRNumber:        e.HRNumber,
		Email:           e.Email,
		DesignationID:   e.DesignationID,
		PagePermissions: e.PagePermissions,
		IsActive:        e.IsActive,
	}
}

// Listing is one page of the employee screen.
type Listing struct {
	Employees    []vtmsapi.Employee
	Designations []vtmsapi.Designation
	Catalog      vtmsapi.PermissionCatalog
	Pagination   shared.Pagination
	Query        string
}

// Find returns the employee with id on the current page.
func (l Listing) Find(id string) (vtmsapi.Employee, bool) {
	for _, e := range l.Employees {
		if e.ID == id {
			return e, true
		}
	}
	return vtmsapi.Employee{}, false
}

// PageURL links to page n keeping the search and page size.
func (l Listing) PageURL(n int) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(n))
	params.Set("perPage", strconv.Itoa(l.Pagination.PerPage))
	if l.Query != "" {
		params.Set("q", l.Query)
	}
	return "?" + params.Encode()
}

// PerPageOptions lists the selectable page sizes.
func (l Listing) PerPageOptions() []int {
	return perPageOptions
}

type usersData struct {
	Listing
	Form   employeeForm
	Errors map[string]string
}
