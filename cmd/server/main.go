package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"

	"auditflow/application"
	"auditflow/database"
	"auditflow/domain/contracts"
	"auditflow/infrastructure/config"
	"auditflow/infrastructure/repositories"
	"auditflow/interfaces/web/handlers"
	"auditflow/logging"
	"auditflow/platform/events"
)

func main() {
	// Create app-wide context for graceful shutdown
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Initialize configuration
	loadEnvironment()
	cfg := config.LoadAppConfigFromEnv()

	// Initialize logging
	logger := initializeLogging(cfg)

	// Initialize database
	db := initializeDatabase(cfg, logger)
	defer db.Close()

	// Build dependencies with app context
	deps := buildDependencies(db, cfg, logger)

	// Run the reconciliation loop alongside the server
	go runReconciliationLoop(appCtx, deps.Services.ScheduleService, cfg.Scheduling.ReconcileInterval, logger)

	// Setup routes and start server
	router := setupRoutes(deps, cfg)
	startServer(router, cfg.HTTPAddr, logger, appCancel)
}

// ApplicationServices holds application services.
type ApplicationServices struct {
	TemplateService application.TemplateService
	AuditService    application.AuditService
	ActionService   application.ActionService
	ScheduleService application.ScheduleService
	ReportService   application.ReportService
	EventBus        *events.AuditEventBus
}

// PresentationLayer groups all presentation components
type PresentationLayer struct {
	TemplateHandlers *handlers.TemplateHandlers
	AuditHandlers    *handlers.AuditHandlers
	ActionHandlers   *handlers.ActionHandlers
	ScheduleHandlers *handlers.ScheduleHandlers
	ReportHandlers   *handlers.ReportHandlers
}

// Dependencies holds all application dependencies organized by layer
type Dependencies struct {
	// Infrastructure
	DB     *database.Database
	Logger *logging.Logger

	// Application Layer
	Services *ApplicationServices

	// Presentation Layer
	Presentation *PresentationLayer
}

func loadEnvironment() {
	if err := godotenv.Load(); err != nil {
		println("No .env file found, using environment variables")
	} else {
		println("Loaded configuration from .env file")
	}
}

func initializeLogging(cfg *config.AppConfig) *logging.Logger {
	logger := logging.NewLogger(cfg.Logging)
	logging.SetDefault(logger)

	logger.Info("Application starting",
		"version", "1.0.0",
		"log_level", cfg.Logging.Level,
		"log_format", cfg.Logging.Format,
		"db_path", cfg.Database.Path,
	)

	return logger
}

func initializeDatabase(cfg *config.AppConfig, logger *logging.Logger) *database.Database {
	db, err := database.New(*cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	return db
}

// RepositoryBundle holds all repository implementations
type RepositoryBundle struct {
	TemplateRepo contracts.TemplateRepository
	AuditRepo    contracts.AuditRepository
	ActionRepo   contracts.ActionRepository
	ScheduleRepo contracts.ScheduleRepository
}

// buildRepositories creates all repository implementations with read/write database separation
func buildRepositories(db *database.Database) *RepositoryBundle {
	return &RepositoryBundle{
		TemplateRepo: repositories.NewSqliteTemplateRepository(db),
		AuditRepo:    repositories.NewSqliteAuditRepository(db),
		ActionRepo:   repositories.NewSqliteActionRepository(db),
		ScheduleRepo: repositories.NewSqliteScheduleRepository(db),
	}
}

// buildApplicationServices creates application services with dependency injection.
func buildApplicationServices(cfg *config.AppConfig, repos *RepositoryBundle) *ApplicationServices {
	// Create event bus for audit lifecycle events
	eventBus := events.NewAuditEventBus()

	auditService := application.NewAuditService(
		repos.AuditRepo,
		repos.TemplateRepo,
		repos.ActionRepo,
		repos.ScheduleRepo,
		eventBus,
	)
	scheduleService := application.NewScheduleService(
		repos.ScheduleRepo,
		cfg.Scheduling.Window(),
		eventBus,
	)

	return &ApplicationServices{
		TemplateService: application.NewTemplateService(repos.TemplateRepo),
		AuditService:    auditService,
		ActionService:   application.NewActionService(repos.ActionRepo),
		ScheduleService: scheduleService,
		ReportService:   application.NewReportService(repos.AuditRepo),
		EventBus:        eventBus,
	}
}

// buildPresentationLayer creates all handlers
func buildPresentationLayer(services *ApplicationServices) *PresentationLayer {
	return &PresentationLayer{
		TemplateHandlers: handlers.NewTemplateHandlers(services.TemplateService),
		AuditHandlers:    handlers.NewAuditHandlers(services.AuditService),
		ActionHandlers:   handlers.NewActionHandlers(services.ActionService),
		ScheduleHandlers: handlers.NewScheduleHandlers(services.ScheduleService),
		ReportHandlers:   handlers.NewReportHandlers(services.ReportService),
	}
}

// buildDependencies creates all application dependencies
func buildDependencies(db *database.Database, cfg *config.AppConfig, logger *logging.Logger) *Dependencies {
	repos := buildRepositories(db)
	services := buildApplicationServices(cfg, repos)
	presentation := buildPresentationLayer(services)

	setupEventHandlers(services, logger)

	return &Dependencies{
		DB:           db,
		Services:     services,
		Presentation: presentation,
		Logger:       logger,
	}
}

// runReconciliationLoop materializes scheduled audit instances on a fixed
// interval until the app context is cancelled. A pass runs immediately on
// startup so a restarted server catches up without waiting a full interval.
func runReconciliationLoop(ctx context.Context, svc application.ScheduleService, interval time.Duration, logger *logging.Logger) {
	runOnce := func() {
		if _, err := svc.RunReconciliation(ctx, time.Now()); err != nil {
			logger.Error("Reconciliation pass failed", "error", err)
		}
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Reconciliation loop stopped")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func setupRoutes(deps *Dependencies, cfg *config.AppConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	setupHTTPLogging(r, deps, cfg)
	r.Use(middleware.Recoverer)

	// System endpoints
	setupSystemRoutes(r, deps)

	// Main application routes
	setupTemplateRoutes(r, deps)
	setupAuditRoutes(r, deps)
	setupActionRoutes(r, deps)
	setupScheduleRoutes(r, deps)
	setupReportRoutes(r, deps)

	return r
}

func setupHTTPLogging(r *chi.Mux, deps *Dependencies, cfg *config.AppConfig) {
	if cfg.HTTPLogPath == "" {
		// No HTTP logging configured, skip
		return
	}

	logFile, err := os.OpenFile(cfg.HTTPLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		deps.Logger.Error("Failed to open HTTP log file", "error", err, "path", cfg.HTTPLogPath)
		return
	}
	// Note: logFile is not closed here as it needs to stay open for the server lifetime

	httpLogger := httplog.NewLogger("auditflow", httplog.Options{
		Writer: logFile,
		JSON:   true,
	})
	r.Use(httplog.RequestLogger(httpLogger))

	deps.Logger.Info("HTTP request logging enabled", "path", cfg.HTTPLogPath)
}

func setupSystemRoutes(r *chi.Mux, deps *Dependencies) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.DB.Health()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		response := map[string]interface{}{
			"status":   "ok",
			"database": stats,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})
}

func setupTemplateRoutes(r *chi.Mux, deps *Dependencies) {
	h := deps.Presentation.TemplateHandlers

	r.Get("/api/templates", h.ListTemplates)
	r.Post("/api/templates", h.SaveTemplate)
	r.Get("/api/templates/{templateID}", h.GetTemplate)
}

func setupAuditRoutes(r *chi.Mux, deps *Dependencies) {
	h := deps.Presentation.AuditHandlers

	r.Post("/api/audits", h.StartAudit)
	r.Get("/api/audits/{auditID}", h.GetAudit)
	r.Put("/api/audits/{auditID}/results", h.RecordResult)
	r.Post("/api/audits/{auditID}/complete", h.CompleteAudit)
	r.Post("/api/audits/{auditID}/cancel", h.CancelAudit)
}

func setupActionRoutes(r *chi.Mux, deps *Dependencies) {
	h := deps.Presentation.ActionHandlers

	r.Get("/api/actions", h.ListOpenActions)
	r.Get("/api/actions/{actionID}", h.GetAction)
	r.Post("/api/actions/{actionID}/start", h.StartAction)
	r.Post("/api/actions/{actionID}/respond", h.SubmitResponse)
	r.Post("/api/actions/{actionID}/verify", h.VerifyAction)
	r.Post("/api/actions/{actionID}/reject", h.RejectAction)
	r.Get("/api/audits/{auditID}/actions", h.ListAuditActions)
}

func setupScheduleRoutes(r *chi.Mux, deps *Dependencies) {
	h := deps.Presentation.ScheduleHandlers

	r.Post("/api/schedules", h.CreateSchedule)
	r.Get("/api/schedules/{ruleID}", h.GetSchedule)
	r.Get("/api/schedules/{ruleID}/occurrences", h.PreviewOccurrences)
	r.Post("/api/schedules/reconcile", h.Reconcile)
}

func setupReportRoutes(r *chi.Mux, deps *Dependencies) {
	h := deps.Presentation.ReportHandlers

	r.Get("/api/reports/pass-rate", h.PassRate)
	r.Get("/api/reports/score-trend", h.ScoreTrend)
	r.Get("/api/reports/benchmark", h.BenchmarkLocations)
}

func startServer(router *chi.Mux, addr string, logger *logging.Logger, appCancel context.CancelFunc) {
	server := &http.Server{Addr: addr, Handler: router}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sig
		logger.Info("Shutdown signal received")

		// Cancel app-wide context first to stop the reconciliation loop
		appCancel()

		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				logger.Error("Graceful shutdown timed out, forcing exit")
				os.Exit(1)
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			os.Exit(1)
		}
		serverStopCtx()
	}()

	logger.Info("Server starting", "address", addr)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-serverCtx.Done()
	logger.Info("Server stopped")
}

// setupEventHandlers wires audit lifecycle observers onto the event bus.
func setupEventHandlers(services *ApplicationServices, logger *logging.Logger) {
	notificationHandlers := events.NewNotificationEventHandlers(logger)
	notificationHandlers.RegisterHandlers(services.EventBus)
}
