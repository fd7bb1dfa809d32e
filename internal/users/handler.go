package users

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/console"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// Handler serves the employee management screen.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	layout    console.Layout
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, layout console.Layout, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, layout: layout, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers user routes on a router mounted at /admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/manage-users", func(r chi.Router) {
		r.Use(h.rbac.RequireRoute(rbac.RouteUsers))
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Post("/{id}", h.updateUser)
	})
}

type formErrors map[string]string

var fieldMessages = map[string]string{
	"Name.required":          "Name is required.",
	"NicNumber.required":     "NIC number is required.",
	"HRNumber.required":      "HR number is required.",
	"Email.required":         "Email is required.",
	"Email.email":            "Please enter a valid email address.",
	"Password.min":           "Password must be at least 6 characters.",
	"DesignationID.required": "Please select a designation.",
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, listQuery(r), employeeForm{IsActive: true}, formErrors{}, r.URL.Query().Get("edit"))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	errs := h.validate(form)
	if form.Password == "" {
		errs["Password"] = "Password is required."
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusBadRequest, listQuery(r), form, errs, "")
		return
	}
	if err := h.service.Create(r.Context(), auth.StoreFromContext(r.Context()), form); err != nil {
		h.mutationFailed(w, r, form, err)
		return
	}
	h.layout.RedirectWithFlash(w, r, rbac.RouteUsers, "success", "Employee created successfully.")
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	form.ID = chi.URLParam(r, "id")
	if errs := h.validate(form); len(errs) > 0 {
		h.render(w, r, http.StatusBadRequest, listQuery(r), form, errs, "")
		return
	}
	if err := h.service.Update(r.Context(), auth.StoreFromContext(r.Context()), form); err != nil {
		h.mutationFailed(w, r, form, err)
		return
	}
	h.layout.RedirectWithFlash(w, r, rbac.RouteUsers, "success", "Employee updated successfully.")
}

func (h *Handler) mutationFailed(w http.ResponseWriter, r *http.Request, form employeeForm, err error) {
	if h.layout.SessionEnded(w, r, err) {
		return
	}
	status := http.StatusBadGateway
	var apiErr *vtmsapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		status = http.StatusBadRequest
	} else {
		h.logger.Warn("employee mutation", slog.String("id", form.ID), slog.Any("error", err))
	}
	form.Password = ""
	h.render(w, r, status, listQuery(r), form, formErrors{"general": vtmsapi.UserMessage(err, "Unable to save employee.")}, "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, q ListQuery, form employeeForm, errs formErrors, editID string) {
	listing, err := h.service.List(r.Context(), auth.StoreFromContext(r.Context()), q)
	if err != nil {
		if h.layout.SessionEnded(w, r, err) {
			return
		}
		h.logger.Warn("list employees", slog.Any("error", err))
		if _, seen := errs["general"]; !seen {
			errs["general"] = console.UpstreamMessage(err)
		}
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
	}
	if editID != "" {
		if e, ok := listing.Find(editID); ok {
			form = formFromEmployee(e)
		}
	}
	h.layout.Render(w, r, status, "pages/users.html", "Users", usersData{
		Listing: listing,
		Form:    form,
		Errors:  errs,
	})
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (employeeForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return employeeForm{}, false
	}
	return employeeForm{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		FatherName:      strings.TrimSpace(r.PostFormValue("fatherName")),
		NicNumber:       strings.TrimSpace(r.PostFormValue("nicNumber")),
		HRNumber:        strings.TrimSpace(r.PostFormValue("hrNumber")),
		Email:           strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password:        r.PostFormValue("password"),
		DesignationID:   strings.TrimSpace(r.PostFormValue("designationId")),
		PagePermissions: cleanKeys(r.PostForm["pagePermissions"]),
		IsActive:        r.PostFormValue("isActive") != "",
	}, true
}

func (h *Handler) validate(form employeeForm) formErrors {
	errs := formErrors{}
	err := h.validator.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["general"] = err.Error()
		return errs
	}
	for _, fieldErr := range fieldErrs {
		msg, ok := fieldMessages[fieldErr.Field()+"."+fieldErr.Tag()]
		if !ok {
			msg = fieldErr.Error()
		}
		errs[fieldErr.Field()] = msg
	}
	return errs
}

// listQuery reads page, perPage and q from the URL.
func listQuery(r *http.Request) ListQuery {
	values := r.URL.Query()
	page, _ := strconv.Atoi(values.Get("page"))
	perPage, _ := strconv.Atoi(values.Get("perPage"))
	return normalizeQuery(ListQuery{Page: page, PerPage: perPage, Q: values.Get("q")})
}

func cleanKeys(raw []string) []string {
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" || slices.Contains(keys, k) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
