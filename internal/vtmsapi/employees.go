package vtmsapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultEmployeesPerPage = 20

// ListEmployees returns one page of employees. The listing always goes
// upstream so edits made elsewhere show up immediately.
func (c *Client) ListEmployees(ctx context.Context, sess Session, q EmployeeQuery) (EmployeePage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultEmployeesPerPage
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("perPage", strconv.Itoa(q.PerPage))
	if search := strings.TrimSpace(q.Q); search != "" {
		params.Set("q", search)
	}

	var resp envelope[itemList[Employee]]
	if err := c.do(ctx, sess, call{method: http.MethodGet, path: "/admin/employees", query: params}, &resp); err != nil {
		return EmployeePage{}, err
	}
	page := EmployeePage{Items: resp.Data.Items}
	if page.Items == nil {
		page.Items = []Employee{}
	}
	if resp.Meta != nil {
		page.Meta = *resp.Meta
	} else {
		page.Meta = PageMeta{Total: len(page.Items), TotalPages: 1, Page: q.Page}
	}
	return page, nil
}

// CreateEmployee creates an employee account. The create payload never carries isActive.
func (c *Client) CreateEmployee(ctx context.Context, sess Session, in EmployeeInput) error {
	in.IsActive = nil
	return c.do(ctx, sess, call{method: http.MethodPost, path: "/admin/employees", body: normalizeEmployeeInput(in)}, nil)
}

// UpdateEmployee patches the employee id.
func (c *Client) UpdateEmployee(ctx context.Context, sess Session, id string, in EmployeeInput) error {
	return c.do(ctx, sess, call{method: http.MethodPatch, path: "/admin/employees/" + url.PathEscape(id), body: normalizeEmployeeInput(in)}, nil)
}

func normalizeEmployeeInput(in EmployeeInput) EmployeeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.FatherName = strings.TrimSpace(in.FatherName)
	in.NicNumber = strings.TrimSpace(in.NicNumber)
	in.HRNumber = strings.TrimSpace(in.HRNumber)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.PagePermissions == nil {
		in.PagePermissions = []string{}
	}
	return in
}
