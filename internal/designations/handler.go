package designations

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/console"
	"github.com/vtms/admin-console/internal/platform/httpx"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// Handler manages the designation management screen.
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

// MountRoutes registers management routes on a router mounted at /admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/manage-management", func(r chi.Router) {
		r.Use(h.rbac.RequireRoute(rbac.RouteManagement))
		r.Get("/", h.showManagement)
		r.Post("/designations", h.createDesignation)
		r.Post("/designations/{id}", h.updateDesignation)
		r.Post("/designations/{id}/delete", h.deleteDesignation)
	})
	r.With(h.rbac.RequireAny(shared.PermManagementPage)).Get("/permissions", h.listPermissions)
}

type formErrors map[string]string

var fieldMessages = map[string]string{
	"Name.required": "Designation name is required.",
	"Name.max":      "Designation name must be at most 64 characters.",
}

func (h *Handler) showManagement(w http.ResponseWriter, r *http.Request) {
	form := designationForm{IsActive: true}
	h.renderManagement(w, r, http.StatusOK, form, formErrors{}, r.URL.Query().Get("edit"))
}

func (h *Handler) createDesignation(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if errs := h.validate(form); len(errs) > 0 {
		h.renderManagement(w, r, http.StatusBadRequest, form, errs, "")
		return
	}
	if err := h.service.Create(r.Context(), auth.StoreFromContext(r.Context()), form); err != nil {
		h.mutationFailed(w, r, form, err)
		return
	}
	h.layout.RedirectWithFlash(w, r, rbac.RouteManagement, "success", "Designation created successfully.")
}

func (h *Handler) updateDesignation(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	form.ID = chi.URLParam(r, "id")
	if errs := h.validate(form); len(errs) > 0 {
		h.renderManagement(w, r, http.StatusBadRequest, form, errs, "")
		return
	}
	if err := h.service.Update(r.Context(), auth.StoreFromContext(r.Context()), form); err != nil {
		h.mutationFailed(w, r, form, err)
		return
	}
	h.layout.RedirectWithFlash(w, r, rbac.RouteManagement, "success", "Designation updated successfully.")
}

func (h *Handler) deleteDesignation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), auth.StoreFromContext(r.Context()), id); err != nil {
		if h.layout.SessionEnded(w, r, err) {
			return
		}
		h.logger.Warn("delete designation", slog.String("id", id), slog.Any("error", err))
		h.layout.RedirectWithFlash(w, r, rbac.RouteManagement, "error", vtmsapi.UserMessage(err, "Unable to delete designation. Try again."))
		return
	}
	h.layout.RedirectWithFlash(w, r, rbac.RouteManagement, "success", "Designation deleted successfully.")
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.PermissionKeys(r.Context(), auth.StoreFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, vtmsapi.ErrUnauthorized) {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		h.logger.Warn("list permissions", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUpstream)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog)
}

func (h *Handler) mutationFailed(w http.ResponseWriter, r *http.Request, form designationForm, err error) {
	if h.layout.SessionEnded(w, r, err) {
		return
	}
	status := http.StatusBadGateway
	var apiErr *vtmsapi.APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		status = http.StatusBadRequest
	} else {
		h.logger.Warn("designation mutation", slog.Any("error", err))
	}
	h.renderManagement(w, r, status, form, formErrors{"general": console.UpstreamMessage(err)}, "")
}

// renderManagement loads the screen data and renders it. editID preloads
// the form with an existing designation.
func (h *Handler) renderManagement(w http.ResponseWriter, r *http.Request, status int, form designationForm, errs formErrors, editID string) {
	overview, err := h.service.Overview(r.Context(), auth.StoreFromContext(r.Context()))
	if err != nil {
		if h.layout.SessionEnded(w, r, err) {
			return
		}
		h.logger.Warn("management overview", slog.Any("error", err))
		if _, seen := errs["general"]; !seen {
			errs["general"] = console.UpstreamMessage(err)
		}
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
	}
	if editID != "" {
		if d, ok := overview.Find(editID); ok {
			form = formFromDesignation(d)
		}
	}
	h.layout.Render(w, r, status, "pages/management.html", "Management", managementData{
		Overview: overview,
		Form:     form,
		Errors:   errs,
	})
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (designationForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return designationForm{}, false
	}
	return designationForm{
		Name:           strings.TrimSpace(r.PostFormValue("name")),
		PermissionKeys: cleanKeys(r.PostForm["permissionKeys"]),
		IsActive:       r.PostFormValue("isActive") != "",
	}, true
}

func (h *Handler) validate(form designationForm) formErrors {
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
