package users

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// API is the slice of the VTMS client the users screen uses.
type API interface {
	ListEmployees(ctx context.Context, sess vtmsapi.Session, q vtmsapi.EmployeeQuery) (vtmsapi.EmployeePage, error)
	CreateEmployee(ctx context.Context, sess vtmsapi.Session, in vtmsapi.EmployeeInput) error
	UpdateEmployee(ctx context.Context, sess vtmsapi.Session, id string, in vtmsapi.EmployeeInput) error
	ListDesignations(ctx context.Context, sess vtmsapi.Session) ([]vtmsapi.Designation, error)
	PermissionKeys(ctx context.Context, sess vtmsapi.Session) (vtmsapi.PermissionCatalog, error)
}

// ListQuery selects a page of the employee listing.
type ListQuery struct {
	Page    int
	PerPage int
	Q       string
}

// Service handles employee management.
type Service struct {
	api API
}

// NewService builds Service instance.
func NewService(api API) *Service {
	return &Service{api: api}
}

// List loads one page of employees with the designations and permission
// catalog the form needs.
func (s *Service) List(ctx context.Context, sess vtmsapi.Session, q ListQuery) (Listing, error) {
	q = normalizeQuery(q)
	var (
		page         vtmsapi.EmployeePage
		designations []vtmsapi.Designation
		catalog      vtmsapi.PermissionCatalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		page, err = s.api.ListEmployees(gctx, sess, vtmsapi.EmployeeQuery{Page: q.Page, PerPage: q.PerPage, Q: q.Q})
		return err
	})
	g.Go(func() (err error) {
		designations, err = s.api.ListDesignations(gctx, sess)
		return err
	})
	g.Go(func() (err error) {
		catalog, err = s.api.PermissionKeys(gctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{Pagination: shared.NewPagination(q.Page, q.PerPage, 0), Query: q.Q}, err
	}

	current := page.Meta.Page
	if current <= 0 {
		current = q.Page
	}
	pagination := shared.NewPagination(current, q.PerPage, page.Meta.Total)
	if page.Meta.TotalPages > 0 {
		pagination.TotalPages = page.Meta.TotalPages
	}
	return Listing{
		Employees:    page.Items,
		Designations: designations,
		Catalog:      catalog,
		Pagination:   pagination,
		Query:        q.Q,
	}, nil
}

// Create adds an employee account.
func (s *Service) Create(ctx context.Context, sess vtmsapi.Session, form employeeForm) error {
	return s.api.CreateEmployee(ctx, sess, form.input())
}

// Update saves changes to an existing employee.
func (s *Service) Update(ctx context.Context, sess vtmsapi.Session, form employeeForm) error {
	return s.api.UpdateEmployee(ctx, sess, form.ID, form.input())
}

func normalizeQuery(q ListQuery) ListQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if !slices.Contains(perPageOptions, q.PerPage) {
		q.PerPage = shared.DefaultPerPage
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}
