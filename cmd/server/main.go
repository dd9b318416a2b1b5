package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/api"
	"github.com/andresuchdata/bestandsanalyse/internal/cache"
	"github.com/andresuchdata/bestandsanalyse/internal/config"
	"github.com/andresuchdata/bestandsanalyse/internal/service"
	"github.com/andresuchdata/bestandsanalyse/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	datasets, err := cache.NewDatasetStore(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize dataset store")
	}

	reports, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Report cache unavailable, continuing without it")
		reports = cache.NewNoopReportCache()
	}

	movementService := service.NewMovementService(datasets, reports, service.Options{
		MaxConcurrentImports: int(cfg.App.MaxConcurrentImports),
		MaxUploadBytes:       cfg.App.MaxUploadBytes,
	})

	router := api.NewRouter(&api.Services{MovementService: movementService}, api.Options{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		RequestBurst:      cfg.Server.RequestBurst,
		UploadDir:         cfg.App.UploadDir,
		MaxUploadBytes:    cfg.App.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("cache", cfg.Cache.Backend).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// in-flight requests get five seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
