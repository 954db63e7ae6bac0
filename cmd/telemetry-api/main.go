package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	telemetry "github.com/polarishealth/telemetry"
	"github.com/polarishealth/telemetry/api"
	"github.com/polarishealth/telemetry/config"
	"github.com/polarishealth/telemetry/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	var dialector gorm.Dialector
	if cfg.Database.SqliteFile != "" {
		dialector = db.GetSqliteDialector(cfg.Database.SqliteFile)
	} else {
		dialector = db.GetPostgresDialector(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Database,
			cfg.Database.SSLMode,
		)
	}

	sqlLogLevel := logger.Error
	if !cfg.IsProduction() {
		sqlLogLevel = logger.Warn
	}

	registries, err := telemetry.New(dialector, sqlLogLevel)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize telemetry registries")
	}

	// Outside production the schema is managed in-process; production deployments
	// apply versioned migrations instead.
	if !cfg.IsProduction() {
		if err := registries.Persistence.RunSQLInTransaction(ctx, db.DefineTables); err != nil {
			log.WithError(err).Fatal("Failed to prepare database tables")
		}
	}

	router, err := api.BuildAPIRouter(api.ServerParams{
		Registries:      registries,
		JWTSecret:       cfg.JWTSecret,
		EnableDevRoutes: !cfg.IsProduction(),
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to assemble API router")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.WithField("port", cfg.Port).Info("Telemetry API listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("API server failed")
	}
}
