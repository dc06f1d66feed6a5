// Command crm-admin runs operator tasks against the CRM database.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/educrm-api/internal/repository"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/config"
	"github.com/noah-isme/educrm-api/pkg/database"
	"github.com/noah-isme/educrm-api/pkg/export"
	"github.com/noah-isme/educrm-api/pkg/logger"
	"github.com/noah-isme/educrm-api/pkg/validation"
)

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

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	pipeline := repository.NewPipelineRepository(db)
	exporter := service.NewExportService(service.ExportConfig{Title: cfg.Reports.Title}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	cli := &commandLine{
		out: os.Stdout,
		migrate: func(ctx context.Context) ([]string, error) {
			return database.Migrate(ctx, db)
		},
		users:   service.NewUserService(repository.NewUserRepository(db), validation.New(), logr),
		reports: service.NewReportService(pipeline, exporter, logr),
	}

	if err := cli.run(ctx, os.Args); err != nil {
		closeAndExit(db, err)
	}
}

func closeAndExit(db *sqlx.DB, err error) {
	_ = db.Close()
	if errors.Is(err, errHelp) {
		os.Exit(2)
	}
	log.Printf("error: %v", err)
	os.Exit(1)
}
