package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtms/admin-console/internal/app"
	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/console"
	"github.com/vtms/admin-console/internal/designations"
	"github.com/vtms/admin-console/internal/observability"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/users"
	"github.com/vtms/admin-console/internal/view"
	"github.com/vtms/admin-console/internal/vtmsapi"
	_ "github.com/vtms/admin-console/testing"
)

// upstream is a minimal VTMS API. Accounts maps email to the employee
// returned on login; the token is "tok-" + email.
type upstream struct {
	accounts     map[string]vtmsapi.Employee
	revoked      atomic.Bool
	employeeHits atomic.Int32
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/auth/employee/login":
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		employee, ok := u.accounts[body.Email]
		if !ok || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid email or password"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"token": "tok-" + body.Email, "employee": employee}})
	case u.revoked.Load():
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"jwt expired"}`)
	case r.URL.Path == "/api/v1/admin/employees":
		u.employeeHits.Add(1)
		_, _ = io.WriteString(w, `{"data":{"items":[{"_id":"e1","name":"Bilal","email":"bilal@vtms.local"}]},"meta":{"total":1,"totalPages":1,"page":1}}`)
	case r.URL.Path == "/api/v1/admin/designations":
		_, _ = io.WriteString(w, `{"data":{"items":[{"_id":"d1","name":"Driver","isActive":true}]}}`)
	case r.URL.Path == "/api/v1/admin/permissions":
		_, _ = io.WriteString(w, `{"data":{"designationPermissions":["BIN_PAGE"],"pagePermissions":["BIN_PAGE"]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	}
}

type consoleServer struct {
	*httptest.Server
	upstream *upstream
	metrics  *observability.Metrics
}

func newConsoleServer(t *testing.T, configure ...func(*app.Config)) *consoleServer {
	t.Helper()
	up := &upstream{accounts: map[string]vtmsapi.Employee{
		"admin@vtms.local": {Name: "Admin", Email: "admin@vtms.local", DesignationCode: "ADMIN"},
		"clerk@vtms.local": {Name: "Clerk", Email: "clerk@vtms.local", DesignationCode: "CLERK", PagePermissions: []string{shared.PermBinPage}},
	}}
	apiServer := httptest.NewServer(up)
	t.Cleanup(apiServer.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &app.Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second, LoginRateLimit: 3}
	for _, fn := range configure {
		fn(cfg)
	}
	templates, err := view.NewEngine()
	require.NoError(t, err)
	metrics := observability.NewMetrics()
	evaluator := rbac.Default()
	csrf := shared.NewCSRFManager("csrf-secret")
	sessions := shared.NewSessionManager(client, "vtms_console_session", "session-secret", time.Hour, false)

	var authService *auth.Service
	api := vtmsapi.NewClient(apiServer.URL+"/api/v1",
		vtmsapi.WithCache(vtmsapi.NewCache(client, time.Minute, nil)),
		vtmsapi.WithUnauthorizedHook(func(ctx context.Context) { authService.RecordAutoLogout(ctx) }),
	)
	authService = auth.NewService(api, nil, nil).WithObserver(metrics)

	layout := console.Layout{Templates: templates, CSRF: csrf, Evaluator: evaluator}
	guard := rbac.Middleware{Evaluator: evaluator, Identity: auth.RequestIdentity, DeniedPage: layout.DeniedPage(), Observer: metrics}
	router := app.NewRouter(app.RouterParams{
		Logger:              nil,
		Config:              cfg,
		SessionManager:      sessions,
		CSRFManager:         csrf,
		AuthRepository:      auth.NewRepository(client),
		Layout:              layout,
		RBACMiddleware:      guard,
		AuthHandler:         auth.NewHandler(nil, authService, templates, sessions, csrf, evaluator),
		ConsoleHandler:      console.NewHandler(layout, guard),
		DesignationsHandler: designations.NewHandler(nil, designations.NewService(api), layout, guard),
		UsersHandler:        users.NewHandler(nil, users.NewService(api), layout, guard),
		Metrics:             metrics,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &consoleServer{Server: srv, upstream: up, metrics: metrics}
}

type browser struct {
	t      *testing.T
	base   string
	jar    http.CookieJar
	client *http.Client
}

func (s *consoleServer) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: s.URL, jar: jar, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return resp, readBody(b.t, resp)
}

func (b *browser) sessionID() string {
	b.t.Helper()
	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	for _, c := range b.jar.Cookies(u) {
		if c.Name == "vtms_console_session" {
			return c.Value
		}
	}
	return ""
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func (b *browser) csrfToken(path string) string {
	b.t.Helper()
	_, body := b.get(path)
	match := csrfPattern.FindStringSubmatch(body)
	require.Len(b.t, match, 2, "csrf token on %s", path)
	return match[1]
}

func (b *browser) login(email string) *http.Response {
	b.t.Helper()
	token := b.csrfToken("/login")
	resp, _ := b.post("/login", url.Values{"email": {email}, "password": {"secret"}, "csrf_token": {token}})
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestRootRedirectsToLogin(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)

	resp, _ := b.get("/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteLogin, resp.Header.Get("Location"))

	resp, _ = b.get("/admin/manage-users")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteLogin, resp.Header.Get("Location"))
}

func TestClerkLandsOnFirstReachablePage(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)

	resp := b.login("clerk@vtms.local")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteBins, resp.Header.Get("Location"))

	resp, body := b.get("/admin/manage-bins")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome back")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, _ = b.get("/admin/manage-users")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteBins, resp.Header.Get("Location"))

	resp, _ = b.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteBins, resp.Header.Get("Location"))
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)
	b.csrfToken("/login")

	resp, _ := b.post("/login", url.Values{"email": {"admin@vtms.local"}, "password": {"secret"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpstreamUnauthorizedLogsOut(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)
	require.Equal(t, http.StatusSeeOther, b.login("admin@vtms.local").StatusCode)

	resp, body := b.get("/admin/manage-users")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Bilal")

	srv.upstream.revoked.Store(true)
	resp, _ = b.get("/admin/manage-users")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteLogin, resp.Header.Get("Location"))

	resp, body = b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, console.SessionExpiredMessage)

	resp, _ = b.get("/admin/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, metrics := b.get("/metrics")
	assert.Contains(t, metrics, "vtms_console_auto_logouts_total 1")
	assert.Contains(t, metrics, `vtms_console_login_attempts_total{result="success"} 1`)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)
	require.Equal(t, http.StatusSeeOther, b.login("admin@vtms.local").StatusCode)

	token := b.csrfToken("/admin/")
	resp, _ := b.post("/logout", url.Values{"csrf_token": {token}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteLogin, resp.Header.Get("Location"))

	resp, body := b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You have been logged out")
}

func TestLoginAndLogoutIssueFreshSessionIDs(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)

	token := b.csrfToken("/login")
	anonymous := b.sessionID()
	require.NotEmpty(t, anonymous)

	resp, _ := b.post("/login", url.Values{"email": {"admin@vtms.local"}, "password": {"secret"}, "csrf_token": {token}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	authenticated := b.sessionID()
	assert.NotEqual(t, anonymous, authenticated)

	// A second browser replaying the pre-login cookie gets no access.
	replay := srv.browser(t)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	replay.jar.SetCookies(u, []*http.Cookie{{Name: "vtms_console_session", Value: anonymous, Path: "/"}})
	resp, _ = replay.get("/admin/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteLogin, resp.Header.Get("Location"))

	resp, _ = b.get("/admin/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token = b.csrfToken("/admin/")
	resp, _ = b.post("/logout", url.Values{"csrf_token": {token}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.NotEqual(t, authenticated, b.sessionID())

	stale := srv.browser(t)
	stale.jar.SetCookies(u, []*http.Cookie{{Name: "vtms_console_session", Value: authenticated, Path: "/"}})
	resp, _ = stale.get("/admin/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, rbac.RouteLogin, resp.Header.Get("Location"))
}

func TestCORSPreflightOnIdentityAPI(t *testing.T) {
	const origin = "https://ops.vtms.local"
	srv := newConsoleServer(t, func(cfg *app.Config) {
		cfg.CORSAllowedOrigins = []string{origin}
	})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/admin/api/me", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", shared.CSRFHeader)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Less(t, resp.StatusCode, 300)
	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	b := srv.browser(t)
	require.Equal(t, http.StatusSeeOther, b.login("admin@vtms.local").StatusCode)

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/admin/api/me", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	resp, err = b.client.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/admin/", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	resp, err = b.client.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)
	token := b.csrfToken("/login")

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		resp, _ := b.post("/login", url.Values{"email": {"admin@vtms.local"}, "password": {"wrong"}, "csrf_token": {token}})
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)

	resp, _ := b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMeEndpointAndHealth(t *testing.T) {
	srv := newConsoleServer(t)
	b := srv.browser(t)
	require.Equal(t, http.StatusSeeOther, b.login("clerk@vtms.local").StatusCode)

	resp, body := b.get("/admin/api/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"defaultRoute":"/admin/manage-bins"`)

	resp, body = b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, `"status":"ok"`))
}

func TestUnknownPathIsNotFound(t *testing.T) {
	srv := newConsoleServer(t)
	resp, _ := srv.browser(t).get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
