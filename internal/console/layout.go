// Package console renders the authenticated admin shell and the simple
// console screens that need no upstream data.
package console

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/platform/httpx"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/view"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

// SessionExpiredMessage is flashed when the upstream rejected the session token.
const SessionExpiredMessage = "Your session has expired. Please log in again."

// Layout fills the shared template data of console pages.
type Layout struct {
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Evaluator *rbac.Evaluator
	Logger    *slog.Logger
}

// Render writes template name with status inside the admin shell.
func (l Layout) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := l.CSRF.EnsureToken(r.Context(), sess)
	creds := auth.StoreFromContext(r.Context()).Snapshot()

	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if creds.Authenticated() {
		viewData.Nav = l.Evaluator.Nav(creds.Identity(), r.URL.Path)
		viewData.UserName = displayName(creds)
	}
	if err := l.Templates.RenderStatus(w, status, name, viewData); err != nil {
		l.logger().Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// RedirectWithFlash queues a flash message and redirects with 303.
func (l Layout) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// SessionEnded redirects to the login page when err is an upstream 401. The
// credentials store has already been cleared by the client at that point.
func (l Layout) SessionEnded(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, vtmsapi.ErrUnauthorized) {
		return false
	}
	l.RedirectWithFlash(w, r, rbac.RouteLogin, "error", SessionExpiredMessage)
	return true
}

// UpstreamMessage is the text shown for a failed upstream call.
func UpstreamMessage(err error) string {
	return vtmsapi.UserMessage(err, "The VTMS service is unavailable. Please try again.")
}

// DeniedPage renders the access denied notice with 403.
func (l Layout) DeniedPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.Render(w, r, http.StatusForbidden, "pages/denied.html", "Access denied", nil)
	})
}

// NotFound renders the 404 page.
func (l Layout) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if httpx.WantsJSON(r) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		l.Render(w, r, http.StatusNotFound, "pages/notfound.html", "Not found", nil)
	}
}

func (l Layout) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func displayName(creds auth.Credentials) string {
	if creds.Employee == nil {
		return ""
	}
	if creds.Employee.Name != "" {
		return creds.Employee.Name
	}
	return creds.Employee.Email
}
