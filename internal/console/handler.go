package console

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/platform/httpx"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
)

// Handler serves the dashboard, the section screens and the identity API.
type Handler struct {
	layout Layout
	rbac   rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(layout Layout, rbac rbac.Middleware) *Handler {
	return &Handler{layout: layout, rbac: rbac}
}

type section struct {
	route   string
	title   string
	summary string
}

var sections = []section{
	{rbac.RouteVehicles, "Vehicles", "Fleet registry and vehicle assignments."},
	{rbac.RouteLocations, "Locations", "Collection points, depots and transfer stations."},
	{rbac.RouteAttendance, "Attendance", "Shift attendance of field staff."},
	{rbac.RouteBins, "Bins", "Bin inventory and placement."},
}

type sectionData struct {
	Summary string
	Items   []string
}

// MountRoutes registers console routes on a router mounted at /admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireRoute(rbac.RouteDashboard)).Get("/", h.dashboard)
	for _, s := range sections {
		r.With(h.rbac.RequireRoute(s.route)).Get(relative(s.route), h.sectionPage(s))
	}
	r.With(h.rbac.RequireRoute(rbac.RouteOperations)).Get(relative(rbac.RouteOperations), h.operations)
}

// MountAPIRoutes registers the JSON endpoints on a router mounted at /admin/api.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	h.layout.Render(w, r, http.StatusOK, "pages/dashboard.html", "Dashboard", nil)
}

func (h *Handler) sectionPage(s section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.layout.Render(w, r, http.StatusOK, "pages/section.html", s.title, sectionData{Summary: s.summary})
	}
}

// operations lists the operation screens the employee may run.
func (h *Handler) operations(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.RequestIdentity(r)
	var held []string
	for _, key := range shared.OperationPageScopes() {
		if h.layout.Evaluator.CanAccess(identity, rbac.RequireAny(key)) {
			held = append(held, key)
		}
	}
	h.layout.Render(w, r, http.StatusOK, "pages/section.html", "Operations", sectionData{
		Summary: "Fork, flap, bulk, arm roller, gate, GTS and LFS operations.",
		Items:   held,
	})
}

type menuEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type meResponse struct {
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	DesignationCode string      `json:"designationCode"`
	PagePermissions []string    `json:"pagePermissions"`
	IsAdmin         bool        `json:"isAdmin"`
	DefaultRoute    string      `json:"defaultRoute"`
	Menu            []menuEntry `json:"menu"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	creds := auth.StoreFromContext(r.Context()).Snapshot()
	if !creds.Authenticated() {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	identity := creds.Identity()
	ev := h.layout.Evaluator
	resp := meResponse{
		DesignationCode: identity.DesignationCode,
		PagePermissions: slices.Clone(identity.PagePermissions),
		IsAdmin:         ev.IsAdmin(identity.DesignationCode),
		DefaultRoute:    ev.ResolveDefaultRoute(identity),
		Menu:            []menuEntry{},
	}
	if resp.PagePermissions == nil {
		resp.PagePermissions = []string{}
	}
	if creds.Employee != nil {
		resp.Name = creds.Employee.Name
		resp.Email = creds.Employee.Email
	}
	for _, item := range ev.VisibleMenu(identity) {
		resp.Menu = append(resp.Menu, menuEntry{Name: item.Name, Path: item.Path})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func relative(route string) string {
	return route[len(rbac.RouteDashboard):]
}
