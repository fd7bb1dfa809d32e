package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vtms/admin-console/internal/app"
	"github.com/vtms/admin-console/internal/auth"
	"github.com/vtms/admin-console/internal/console"
	"github.com/vtms/admin-console/internal/designations"
	"github.com/vtms/admin-console/internal/observability"
	"github.com/vtms/admin-console/internal/platform/cache"
	"github.com/vtms/admin-console/internal/platform/db"
	"github.com/vtms/admin-console/internal/rbac"
	"github.com/vtms/admin-console/internal/shared"
	"github.com/vtms/admin-console/internal/users"
	"github.com/vtms/admin-console/internal/view"
	"github.com/vtms/admin-console/internal/vtmsapi"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var auditLogger *shared.AuditLogger
	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.EnsureAuditSchema(ctx, pool); err != nil {
			logger.Error("prepare audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		auditLogger = shared.NewAuditLogger(pool)
	} else {
		logger.Info("PG_DSN not set, auth audit trail disabled")
	}

	sessionManager := shared.NewSessionManager(redisClient, "vtms_console_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	evaluator := rbac.NewEvaluator(cfg.AdminDesignationCodes, rbac.DefaultRouteRules())

	authRepo := auth.NewRepository(redisClient)
	var authService *auth.Service
	api := vtmsapi.NewClient(cfg.APIBaseURL,
		vtmsapi.WithTimeout(cfg.APITimeout),
		vtmsapi.WithCache(vtmsapi.NewCache(redisClient, cfg.APICacheTTL, logger)),
		vtmsapi.WithLogger(logger),
		vtmsapi.WithUnauthorizedHook(func(ctx context.Context) {
			authService.RecordAutoLogout(ctx)
		}),
	)
	authService = auth.NewService(api, auditLogger, logger).WithObserver(metrics)

	layout := console.Layout{Templates: templates, CSRF: csrfManager, Evaluator: evaluator, Logger: logger}
	rbacMiddleware := rbac.Middleware{
		Evaluator:  evaluator,
		Identity:   auth.RequestIdentity,
		DeniedPage: layout.DeniedPage(),
		Observer:   metrics,
		Logger:     logger,
	}

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthRepository:      authRepo,
		Layout:              layout,
		RBACMiddleware:      rbacMiddleware,
		AuthHandler:         auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, evaluator),
		ConsoleHandler:      console.NewHandler(layout, rbacMiddleware),
		DesignationsHandler: designations.NewHandler(logger, designations.NewService(api), layout, rbacMiddleware),
		UsersHandler:        users.NewHandler(logger, users.NewService(api), layout, rbacMiddleware),
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
