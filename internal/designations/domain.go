package designations

import "github.com/vtms/admin-console/internal/vtmsapi"

// designationForm is the create/update form of a designation.
type designationForm struct {
	ID             string
	Name           string   `validate:"required,max=64"`
	PermissionKeys []string
	IsActive       bool
}

func (f designationForm) input(includeActive bool) vtmsapi.DesignationInput {
	in := vtmsapi.DesignationInput{Name: f.Name, PermissionKeys: f.PermissionKeys}
	if includeActive {
		active := f.IsActive
		in.IsActive = &active
	}
	return in
}

func formFromDesignation(d vtmsapi.Designation) designationForm {
	return designationForm{
		ID:             d.ID,
		Name:           d.Name,
		PermissionKeys: d.PermissionKeys,
		IsActive:       d.IsActive,
	}
}

// Overview is everything the management screen shows.
type Overview struct {
	Designations []vtmsapi.Designation
	Catalog      vtmsapi.PermissionCatalog
	Employees    vtmsapi.EmployeePage
}

// Find returns the designation with id.
func (o Overview) Find(id string) (vtmsapi.Designation, bool) {
	for _, d := range o.Designations {
		if d.ID == id {
			return d, true
		}
	}
	return vtmsapi.Designation{}, false
}

type managementData struct {
	Overview
	Form   designationForm
	Errors map[string]string
}
