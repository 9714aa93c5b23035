package main

import (
	"capacity-bknd/internal/config"
	"capacity-bknd/internal/database"
	"capacity-bknd/internal/logger"
	"capacity-bknd/internal/metrics"
	"capacity-bknd/internal/routes"
	"capacity-bknd/internal/services"
	"capacity-bknd/internal/sources"
	"context"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	if err := cfg.Validate(); err != nil {
		logr.Fatal("invalid configuration", zap.Error(err))
	}

	var (
		db     *bun.DB
		source services.TableSource
	)
	if cfg.HasDatabase() {
		var err error
		db, err = database.New(cfg)
		if err != nil {
			logr.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		source = sources.NewPostgresSource(db)
	} else {
		logr.Info("no DATABASE_URL set, database reconciliation disabled")
	}

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
	r := routes.NewRouter(source, cfg, logr, reg, prometheus.DefaultGatherer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.Int("max_upload_mb", cfg.MaxUploadMB))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	if db != nil {
		_ = db.Close()
	}
	logr.Info("server exited gracefully")
}
