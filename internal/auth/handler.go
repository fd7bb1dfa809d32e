package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/view"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	sessions  *shared.SessionManager
	csrf      *shared.CSRFManager
	evaluator *rbac.Evaluator
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, evaluator *rbac.Evaluator) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		sessions:  sessions,
		csrf:      csrf,
		evaluator: evaluator,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

var loginFieldMessages = map[string]map[string]string{
	"Email": {
		"required": "Email is required",
		"email":    "Enter a valid email address",
	},
	"Password": {
		"required": "Password is required",
	},
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	if store.Authenticated() {
		h.enterConsole(w, r, store)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	errs := h.validate(form)
	if len(errs) > 0 {
		h.renderLogin(w, r, http.StatusBadRequest, loginPageData{Form: form, Errors: errs})
		return
	}

	store := StoreFromContext(r.Context())
	if store == nil {
		h.logger.Error("auth store missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	// The credentials record is keyed by the session ID, so an ID known
	// before login must never carry the new credentials.
	h.renewSession(r, sess, store, false)
	if _, err := h.service.Login(r.Context(), store, form.Email, form.Password); err != nil {
		status := http.StatusBadRequest
		var apiErr *vtmsapi.APIError
		if !errors.As(err, &apiErr) && !errors.Is(err, vtmsapi.ErrTokenMissing) {
			h.logger.Warn("login upstream", slog.Any("error", err))
			status = http.StatusBadGateway
		}
		errs = map[string]string{"general": vtmsapi.UserMessage(err, vtmsapi.LoginFailedMessage)}
		h.renderLogin(w, r, status, loginPageData{Form: form, Errors: errs})
		return
	}

	h.csrf.Rotate(r.Context(), sess)
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back"})
	}
	h.enterConsole(w, r, store)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	h.service.Logout(r.Context(), store)
	sess := shared.SessionFromContext(r.Context())
	h.renewSession(r, sess, store, true)
	h.csrf.Rotate(r.Context(), sess)
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "info", Message: "You have been logged out"})
	}
	http.Redirect(w, r, rbac.RouteLogin, http.StatusSeeOther)
}

// renewSession moves the browser session to a fresh ID and rebinds store to
// it. destroy drops the session values as well.
func (h *Handler) renewSession(r *http.Request, sess *shared.Session, store *Store, destroy bool) {
	if sess == nil || h.sessions == nil {
		return
	}
	if destroy {
		h.sessions.Destroy(sess)
	} else {
		h.sessions.Renew(sess)
	}
	store.Rebind(r.Context(), RecordKey(sess.ID))
}

// enterConsole sends an authenticated employee to their first reachable
// page. When none exists the login page stays put with a denial notice so
// /login and the guarded pages never bounce between each other.
func (h *Handler) enterConsole(w http.ResponseWriter, r *http.Request, store *Store) {
	dest := h.evaluator.ResolveDefaultRoute(store.Identity())
	if dest != rbac.RouteLogin {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusForbidden, loginPageData{
		Errors: map[string]string{"general": rbac.DeniedMessage},
	})
}

func (h *Handler) validate(form loginForm) map[string]string {
	errs := make(map[string]string)
	err := h.validator.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["general"] = vtmsapi.LoginFailedMessage
		return errs
	}
	for _, fieldErr := range fieldErrs {
		if _, seen := errs[fieldErr.Field()]; seen {
			continue
		}
		msg := loginFieldMessages[fieldErr.Field()][fieldErr.Tag()]
		if msg == "" {
			msg = fieldErr.Error()
		}
		errs[fieldErr.Field()] = msg
	}
	return errs
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	viewData := view.TemplateData{
		Title:       "Login",
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
