package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/console"
	"github.com/vtms/admin-console/internal/designations"
	"github.com/vtms/admin-console/internal/observability"
	"github.com/vtms/admin-console/internal/platform/httpx"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/users"
	"github.com/vtms/admin-console/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	SessionManager      *shared.SessionManager
	CSRFManager         *shared.CSRFManager
	AuthRepository      auth.Repository
	Layout              console.Layout
	RBACMiddleware      rbac.Middleware
	AuthHandler         *auth.Handler
	ConsoleHandler      *console.Handler
	DesignationsHandler *designations.Handler
	UsersHandler        *users.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router of the admin console.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		AuthRepository: params.AuthRepository,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, rbac.RouteLogin, http.StatusSeeOther)
	})

	loginLimit := 10
	if params.Config != nil && params.Config.LoginRateLimit > 0 {
		loginLimit = params.Config.LoginRateLimit
	}
	r.Group(func(r chi.Router) {
		r.Use(limitLogin(LoginRateLimit(loginLimit)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Route(rbac.RouteDashboard, func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			// Preflights carry no cookie, so CORS answers before the auth guard.
			if origins := allowedOrigins(params.Config); len(origins) > 0 {
				r.Use(cors.Handler(cors.Options{
					AllowedOrigins:   origins,
					AllowedMethods:   []string{http.MethodGet},
					AllowedHeaders:   []string{"Accept", "Content-Type", shared.CSRFHeader},
					AllowCredentials: true,
					MaxAge:           300,
				}))
			}
			r.Use(params.RBACMiddleware.RequireAuth())
			if params.ConsoleHandler != nil {
				params.ConsoleHandler.MountAPIRoutes(r)
			}
		})
		r.Group(func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireAuth())
			if params.ConsoleHandler != nil {
				params.ConsoleHandler.MountRoutes(r)
			}
			if params.DesignationsHandler != nil {
				params.DesignationsHandler.MountRoutes(r)
			}
			if params.UsersHandler != nil {
				params.UsersHandler.MountRoutes(r)
			}
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(params.Layout.NotFound())
	return r
}

// limitLogin applies mw to login form submissions only.
func limitLogin(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && r.URL.Path == rbac.RouteLogin {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowedOrigins(cfg *Config) []string {
	if cfg == nil {
		return nil
	}
	return cfg.CORSAllowedOrigins
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
