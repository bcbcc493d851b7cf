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

	"github.com/senyabanana/marketplace-service/internal/db"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/pkg/logger"
	"github.com/senyabanana/marketplace-service/internal/pkg/token"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/router"
	"github.com/senyabanana/marketplace-service/internal/router/config"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	databaseURL, err := cfg.DatabaseURL()
	if err != nil {
		log.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}
	if err := runDBMigration(cfg.MigrationURL, databaseURL); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("db migrated successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.InitDb(ctx, cfg)
	if err != nil {
		log.Error("error initializing database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	projectRepo := repository.NewPostgresProjectRepository(dbPool)
	bidRepo := repository.NewPostgresBidRepository(dbPool)

	projectService := services.NewProjectService(projectRepo)
	bidService := services.NewBidService(bidRepo, projectRepo)
	awardService := services.NewAwardService(projectRepo, bidRepo)

	projectHandler := handlers.NewProjectHandler(projectService, awardService, log, cfg.RequestTimeout, cfg.IsDevelopment())
	bidHandler := handlers.NewBidHandler(bidService, awardService, log, cfg.RequestTimeout, cfg.IsDevelopment())

	tokens := token.New(cfg.JWTSecret, 0)
	routes := router.InitRoutes(projectHandler, bidHandler, tokens)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server is listening", "address", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) error {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		return err
	}
	defer migration.Close()

	if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
