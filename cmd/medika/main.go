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

	"github.com/medika-erp/medika-erp/internal/app"
	"github.com/medika-erp/medika-erp/internal/auth"
	"github.com/medika-erp/medika-erp/internal/dashboard"
	"github.com/medika-erp/medika-erp/internal/inventory"
	"github.com/medika-erp/medika-erp/internal/invoices"
	"github.com/medika-erp/medika-erp/internal/masterdata/categories"
	"github.com/medika-erp/medika-erp/internal/masterdata/products"
	"github.com/medika-erp/medika-erp/internal/masterdata/warehouses"
	"github.com/medika-erp/medika-erp/internal/observability"
	"github.com/medika-erp/medika-erp/internal/partners"
	"github.com/medika-erp/medika-erp/internal/platform/cache"
	"github.com/medika-erp/medika-erp/internal/platform/db"
	"github.com/medika-erp/medika-erp/internal/printout"
	"github.com/medika-erp/medika-erp/internal/proposals"
	"github.com/medika-erp/medika-erp/internal/rbac"
	"github.com/medika-erp/medika-erp/internal/roles"
	"github.com/medika-erp/medika-erp/internal/shared"
	"github.com/medika-erp/medika-erp/internal/users"
	"github.com/medika-erp/medika-erp/internal/waybills"
	"github.com/medika-erp/medika-erp/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "medika_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	rbacMiddleware := rbac.Middleware{Logger: logger}
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	productRepo := products.NewRepository(dbpool)
	productService := products.NewService(productRepo)
	productHandler := products.NewHandler(logger, productService, rbacMiddleware)

	categoryRepo := categories.NewRepository(dbpool)
	categoryService := categories.NewService(categoryRepo)
	categoryHandler := categories.NewHandler(logger, categoryService, rbacMiddleware)

	warehouseRepo := warehouses.NewRepository(dbpool)
	warehouseService := warehouses.NewService(warehouseRepo)
	warehouseHandler := warehouses.NewHandler(logger, warehouseService, rbacMiddleware)

	partnerRepo := partners.NewRepository(dbpool)
	partnerService := partners.NewService(partnerRepo)
	partnerHandler := partners.NewHandler(logger, partnerService, rbacMiddleware)

	invoiceRepo := invoices.NewRepository(dbpool)
	invoiceService := invoices.NewService(logger, invoiceRepo, auditLogger)
	invoiceHandler := invoices.NewHandler(logger, invoiceService, rbacMiddleware)

	waybillRepo := waybills.NewRepository(dbpool)
	waybillService := waybills.NewService(waybillRepo)
	waybillHandler := waybills.NewHandler(logger, waybillService, rbacMiddleware)

	proposalRepo := proposals.NewRepository(dbpool)
	proposalService := proposals.NewService(proposalRepo, invoiceService)
	proposalHandler := proposals.NewHandler(logger, proposalService, rbacMiddleware)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(logger, inventoryRepo, auditLogger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(logger, dashboardRepo, redisClient, cfg.DashboardCacheTTL)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, rbacMiddleware)

	renderer := printout.NewRenderer()
	printoutHandler := printout.NewHandler(logger, renderer, invoiceService, waybillService, rbacMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, rbacMiddleware)

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
		Metrics:        metrics,

		AuthHandler:      authHandler,
		ProductHandler:   productHandler,
		CategoryHandler:  categoryHandler,
		WarehouseHandler: warehouseHandler,
		PartnerHandler:   partnerHandler,
		InvoiceHandler:   invoiceHandler,
		WaybillHandler:   waybillHandler,
		ProposalHandler:  proposalHandler,
		InventoryHandler: inventoryHandler,
		DashboardHandler: dashboardHandler,
		PrintoutHandler:  printoutHandler,
		UsersHandler:     usersHandler,
		RolesHandler:     rolesHandler,
		JobHandler:       jobHandler,
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
