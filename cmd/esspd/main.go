package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/essp-platform/essp/internal/app"
	"github.com/essp-platform/essp/internal/auth"
	"github.com/essp-platform/essp/internal/authz"
	"github.com/essp-platform/essp/internal/nav"
	"github.com/essp-platform/essp/internal/observability"
	"github.com/essp-platform/essp/internal/platform/cache"
	"github.com/essp-platform/essp/internal/platform/db"
	"github.com/essp-platform/essp/internal/roles"
	"github.com/essp-platform/essp/internal/shared"
	"github.com/essp-platform/essp/internal/users"
	"github.com/essp-platform/essp/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "essp_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	table := authz.DefaultTable(authz.WithUnknownRoleObserver(metrics.ObserveUnknownRole))
	if cfg.RoleTablePath != "" {
		table, err = authz.LoadTable(cfg.RoleTablePath, authz.WithUnknownRoleObserver(metrics.ObserveUnknownRole))
		if err != nil {
			logger.Error("load role table", slog.Any("error", err))
			os.Exit(1)
		}
	}
	resolver := authz.NewResolver(table)

	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authMiddleware := auth.Middleware{
		Service:  authService,
		Sessions: sessionManager,
		Resolver: resolver,
		Logger:   logger,
		Audit:    auditLogger,
		Observe:  metrics.ObserveDecision,
	}
	authHandler := auth.NewHandler(logger, resolver, csrfManager, auditLogger)

	navHandler := nav.NewHandler(nav.NewService(resolver, nav.DefaultEntries()))

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, resolver, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService, authMiddleware)

	rolesHandler := roles.NewHandler(logger, roles.NewService(resolver), authMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		NavHandler:     navHandler,
		UsersHandler:   usersHandler,
		RolesHandler:   rolesHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
