package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/educrm-api/api/swagger"
	"github.com/noah-isme/educrm-api/internal/handler"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/repository"
	"github.com/noah-isme/educrm-api/internal/router"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/internal/workflow"
	"github.com/noah-isme/educrm-api/pkg/cache"
	"github.com/noah-isme/educrm-api/pkg/config"
	"github.com/noah-isme/educrm-api/pkg/database"
	"github.com/noah-isme/educrm-api/pkg/export"
	"github.com/noah-isme/educrm-api/pkg/logger"
	"github.com/noah-isme/educrm-api/pkg/storage"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

// @title EduCRM API
// @version 1.0.0
// @description Lead, student and admission tracking for education consultancies
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Strings("versions", applied))
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return database.VerifySchema(ctx, db)
		},
	}

	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
			checks["redis"] = redisRepo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	handlers, authSvc, err := buildHandlers(cfg, db, cacheSvc, metrics, logr, checks)
	if err != nil {
		logr.Fatal("failed to build handlers", zap.Error(err))
	}

	engine := router.New(router.Options{
		APIPrefix:        cfg.APIPrefix,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		UploadDir:        cfg.Uploads.Dir,
		UploadPublicPath: cfg.Uploads.PublicPath,
		EnableDocs:       cfg.Env != config.EnvProduction,
	}, logr, metrics, authSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, cacheSvc *service.CacheService, metrics *service.MetricsService, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (router.Handlers, *service.AuthService, error) {
	validate := validation.New()

	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	dropdownRepo := repository.NewDropdownRepository(db)
	universityRepo := repository.NewUniversityRepository(db)
	eventRepo := repository.NewEventRepository(db)
	pipelineRepo := repository.NewPipelineRepository(db)

	checker := workflow.NewChecker(cfg.Workflow.TransitionMode, logr)

	lookups := map[string]service.EntityLookup{
		models.EntityLead:        lookup(leadRepo.FindByID),
		models.EntityStudent:     lookup(studentRepo.FindByID),
		models.EntityApplication: lookup(applicationRepo.FindByID),
		models.EntityAdmission:   lookup(admissionRepo.FindByID),
	}
	activitySvc := service.NewActivityService(service.ActivityServiceParams{
		Repo:      activityRepo,
		Lookups:   lookups,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	})

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)

	leadSvc := service.NewLeadService(service.LeadServiceParams{
		Repo:       leadRepo,
		Activities: activitySvc,
		Checker:    checker,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})
	studentSvc := service.NewStudentService(service.StudentServiceParams{
		Repo:       studentRepo,
		Leads:      leadRepo,
		Activities: activitySvc,
		Tx:         db,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})
	applicationSvc := service.NewApplicationService(service.ApplicationServiceParams{
		Repo:       applicationRepo,
		Students:   studentRepo,
		Activities: activitySvc,
		Checker:    checker,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})
	admissionSvc := service.NewAdmissionService(service.AdmissionServiceParams{
		Repo:         admissionRepo,
		Applications: applicationRepo,
		Students:     studentRepo,
		Activities:   activitySvc,
		Checker:      checker,
		Cache:        cacheSvc,
		Metrics:      metrics,
		Validator:    validate,
		Logger:       logr,
	})
	eventSvc := service.NewEventService(service.EventServiceParams{
		Repo:       eventRepo,
		Leads:      leadRepo,
		Activities: activitySvc,
		Tx:         db,
		Cache:      cacheSvc,
		Metrics:    metrics,
		Validator:  validate,
		Logger:     logr,
	})
	lookups[models.EntityEvent] = eventSvc.Lookup

	dropdownSvc := service.NewDropdownService(dropdownRepo, cacheSvc, cfg.Dropdowns.CacheTTL, validate, logr)
	checker.UseStates(dropdownSvc)
	workflowSvc := service.NewWorkflowService(dropdownSvc, checker)
	universitySvc := service.NewUniversityService(universityRepo, validate, logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Pipeline: pipelineRepo,
		Cache:    cacheSvc,
		Logger:   logr,
		Config:   service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	exportSvc := service.NewExportService(service.ExportConfig{Title: cfg.Reports.Title}, logr, export.NewCSVExporter(), export.NewPDFExporter())
	reportSvc := service.NewReportService(pipelineRepo, exportSvc, logr)

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		return router.Handlers{}, nil, err
	}
	uploadSvc := service.NewUploadService(store, metrics, service.UploadConfig{
		PublicPath:   cfg.Uploads.PublicPath,
		MaxBytes:     cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
	}, logr)

	return router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc),
		Leads:        handler.NewLeadHandler(leadSvc),
		Students:     handler.NewStudentHandler(studentSvc),
		Applications: handler.NewApplicationHandler(applicationSvc),
		Admissions:   handler.NewAdmissionHandler(admissionSvc),
		Search:       handler.NewSearchHandler(leadSvc, studentSvc),
		Activities:   handler.NewActivityHandler(activitySvc),
		Dropdowns:    handler.NewDropdownHandler(dropdownSvc),
		Workflow:     handler.NewWorkflowHandler(workflowSvc),
		Universities: handler.NewUniversityHandler(universitySvc),
		Events:       handler.NewEventHandler(eventSvc),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Reports:      handler.NewReportHandler(reportSvc),
		Uploads:      handler.NewUploadHandler(uploadSvc),
		Metrics:      handler.NewMetricsHandler(metrics, checks),
	}, authSvc, nil
}

// lookup adapts a typed FindByID into the activity visibility lookup.
func lookup[T models.Assigned](find func(context.Context, string) (T, error)) service.EntityLookup {
	return func(ctx context.Context, id string) (models.Assigned, error) {
		row, err := find(ctx, id)
		if err != nil {
			return nil, err
		}
		return row, nil
	}
}
