package designations

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vtms/admin-console/internal/vtmsapi"
)

// overviewEmployeesPerPage bounds the employee preview of the management screen.
const overviewEmployeesPerPage = 10

// API is the slice of the VTMS client the management screen uses.
type API interface {
	ListDesignations(ctx context.Context, sess vtmsapi.Session) ([]vtmsapi.Designation, error)
	CreateDesignation(ctx context.Context, sess vtmsapi.Session, in vtmsapi.DesignationInput) error
	UpdateDesignation(ctx context.Context, sess vtmsapi.Session, id string, in vtmsapi.DesignationInput) error
	DeleteDesignation(ctx context.Context, sess vtmsapi.Session, id string) error
	PermissionKeys(ctx context.Context, sess vtmsapi.Session) (vtmsapi.PermissionCatalog, error)
	ListEmployees(ctx context.Context, sess vtmsapi.Session, q vtmsapi.EmployeeQuery) (vtmsapi.EmployeePage, error)
}

// Service handles designation management.
type Service struct {
	api API
}

// NewService builds Service instance.
func NewService(api API) *Service {
	return &Service{api: api}
}

// Overview loads designations, the permission catalog and an employee
// preview concurrently. The first failure cancels the others.
func (s *Service) Overview(ctx context.Context, sess vtmsapi.Session) (Overview, error) {
	var out Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.api.ListDesignations(gctx, sess)
		out.Designations = items
		return err
	})
	g.Go(func() error {
		catalog, err := s.api.PermissionKeys(gctx, sess)
		out.Catalog = catalog
		return err
	})
	g.Go(func() error {
		page, err := s.api.ListEmployees(gctx, sess, vtmsapi.EmployeeQuery{Page: 1, PerPage: overviewEmployeesPerPage})
		out.Employees = page
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// PermissionKeys returns the assignable permission catalog.
func (s *Service) PermissionKeys(ctx context.Context, sess vtmsapi.Session) (vtmsapi.PermissionCatalog, error) {
	return s.api.PermissionKeys(ctx, sess)
}

// Create adds a designation.
func (s *Service) Create(ctx context.Context, sess vtmsapi.Session, form designationForm) error {
	return s.api.CreateDesignation(ctx, sess, form.input(false))
}

// Update replaces the name, keys and active flag of a designation.
func (s *Service) Update(ctx context.Context, sess vtmsapi.Session, form designationForm) error {
	return s.api.UpdateDesignation(ctx, sess, form.ID, form.input(true))
}

// Delete removes a designation.
func (s *Service) Delete(ctx context.Context, sess vtmsapi.Session, id string) error {
	return s.api.DeleteDesignation(ctx, sess, id)
}
